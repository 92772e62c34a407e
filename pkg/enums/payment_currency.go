package enums

import "fmt"

// PaymentCurrencyRegime classifies which currency/volatility bucket a
// supplier's payment instruments imply for downstream pricing.
type PaymentCurrencyRegime string

const (
	RegimeUSDStable       PaymentCurrencyRegime = "USD_STABLE"
	RegimeUSDVolatile     PaymentCurrencyRegime = "USD_VOLATILE"
	RegimeLocalCurrency   PaymentCurrencyRegime = "LOCAL_CURRENCY"
	RegimeEUR             PaymentCurrencyRegime = "EUR"
	RegimeUSDOfficialRate PaymentCurrencyRegime = "USD_OFFICIAL_RATE"
	RegimeCustom          PaymentCurrencyRegime = "CUSTOM"
)

var validPaymentCurrencyRegimes = []PaymentCurrencyRegime{
	RegimeUSDStable,
	RegimeUSDVolatile,
	RegimeLocalCurrency,
	RegimeEUR,
	RegimeUSDOfficialRate,
	RegimeCustom,
}

// String implements fmt.Stringer.
func (r PaymentCurrencyRegime) String() string {
	return string(r)
}

// IsValid reports whether the regime is recognized.
func (r PaymentCurrencyRegime) IsValid() bool {
	for _, candidate := range validPaymentCurrencyRegimes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePaymentCurrencyRegime converts raw input into a PaymentCurrencyRegime.
func ParsePaymentCurrencyRegime(value string) (PaymentCurrencyRegime, error) {
	for _, candidate := range validPaymentCurrencyRegimes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment currency regime %q", value)
}

// AllPaymentCurrencyRegimes returns the regimes in display order for grouped
// projections.
func AllPaymentCurrencyRegimes() []PaymentCurrencyRegime {
	out := make([]PaymentCurrencyRegime, len(validPaymentCurrencyRegimes))
	copy(out, validPaymentCurrencyRegimes)
	return out
}
