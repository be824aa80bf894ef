package enums

import "fmt"

// TariffDuration is the length of a tariff billing plan in months.
type TariffDuration int

const (
	TariffDurationMonthly    TariffDuration = 1
	TariffDurationQuarterly  TariffDuration = 3
	TariffDurationSemiannual TariffDuration = 6
	TariffDurationAnnual     TariffDuration = 12
)

var validTariffDurations = []TariffDuration{
	TariffDurationMonthly,
	TariffDurationQuarterly,
	TariffDurationSemiannual,
	TariffDurationAnnual,
}

// Months returns the duration as a plain month count.
func (d TariffDuration) Months() int {
	return int(d)
}

// IsValid reports whether the value is a supported plan length.
func (d TariffDuration) IsValid() bool {
	for _, candidate := range validTariffDurations {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseTariffDuration converts a raw month count into a TariffDuration.
func ParseTariffDuration(months int) (TariffDuration, error) {
	for _, candidate := range validTariffDurations {
		if int(candidate) == months {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid tariff duration %d", months)
}
