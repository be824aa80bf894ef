package catalog

import (
	"math"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

// discountFactor is applied per billing period for multi-month plans. Longer
// commitments buy whole months at a geometrically lower rate.
const discountFactor = 0.8

// MonthlyCost returns the effective per-month price for a plan of the given
// duration. One-month plans pay the base price; quarterly and semiannual
// plans discount by 0.8^(months/3); annual plans discount by 0.8^(months/4).
// Fractional results round down.
func MonthlyCost(base int64, duration enums.TariffDuration) (int64, error) {
	if base < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "base price must be non-negative")
	}
	switch duration {
	case enums.TariffDurationMonthly:
		return base, nil
	case enums.TariffDurationQuarterly, enums.TariffDurationSemiannual:
		exponent := float64(duration.Months()) / 3
		return int64(math.Floor(float64(base) * math.Pow(discountFactor, exponent))), nil
	case enums.TariffDurationAnnual:
		exponent := float64(duration.Months()) / 4
		return int64(math.Floor(float64(base) * math.Pow(discountFactor, exponent))), nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid tariff duration")
	}
}

// TotalCost is the full price of the plan: effective monthly cost times the
// number of months.
func TotalCost(base int64, duration enums.TariffDuration) (int64, error) {
	monthly, err := MonthlyCost(base, duration)
	if err != nil {
		return 0, err
	}
	return monthly * int64(duration.Months()), nil
}
