package catalog

import (
	"testing"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

func TestMonthlyCostBaseUnchangedForOneMonth(t *testing.T) {
	monthly, err := MonthlyCost(199, enums.TariffDurationMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if monthly != 199 {
		t.Fatalf("expected 199, got %d", monthly)
	}

	total, err := TotalCost(199, enums.TariffDurationMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 199 {
		t.Fatalf("expected total 199, got %d", total)
	}
}

func TestMonthlyCostAnnualDiscount(t *testing.T) {
	// 199 * 0.8^3 = 101.888, floored to 101.
	monthly, err := MonthlyCost(199, enums.TariffDurationAnnual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if monthly != 101 {
		t.Fatalf("expected 101, got %d", monthly)
	}

	total, err := TotalCost(199, enums.TariffDurationAnnual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1212 {
		t.Fatalf("expected total 1212, got %d", total)
	}
}

func TestMonthlyCostNonIncreasingInDuration(t *testing.T) {
	durations := []enums.TariffDuration{
		enums.TariffDurationMonthly,
		enums.TariffDurationQuarterly,
		enums.TariffDurationSemiannual,
		enums.TariffDurationAnnual,
	}
	bases := []int64{1, 99, 199, 450, 1500}

	for _, base := range bases {
		previous := int64(-1)
		for i, duration := range durations {
			monthly, err := MonthlyCost(base, duration)
			if err != nil {
				t.Fatalf("base %d duration %d: %v", base, duration, err)
			}
			if i > 0 && monthly > previous {
				t.Fatalf("base %d: monthly cost increased from %d to %d at duration %d", base, previous, monthly, duration)
			}
			previous = monthly

			total, err := TotalCost(base, duration)
			if err != nil {
				t.Fatalf("base %d duration %d: %v", base, duration, err)
			}
			if total != monthly*int64(duration.Months()) {
				t.Fatalf("base %d duration %d: total %d != monthly %d * months", base, duration, total, monthly)
			}
		}
	}
}

func TestMonthlyCostRejectsInvalidInput(t *testing.T) {
	if _, err := MonthlyCost(199, enums.TariffDuration(5)); err == nil {
		t.Fatal("expected error for invalid duration")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := MonthlyCost(-1, enums.TariffDurationMonthly); err == nil {
		t.Fatal("expected error for negative base")
	}
}
