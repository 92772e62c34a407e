package paymentmethods

import (
	"strings"

	"github.com/smartkubik/foodinventory-backend/pkg/config"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// Classification is the inferred currency regime for a payment-method tag.
type Classification struct {
	Regime           enums.PaymentCurrencyRegime
	UsesVolatileRate bool
}

// Classifier maps free-text payment-method tags to a currency regime. The
// known-tag table is fixed; only the fallback for unrecognized tags is
// configurable, since that default is market policy rather than structure.
type Classifier struct {
	fallback Classification
}

var knownTags = map[string]Classification{
	// Instruments priced against the volatile parallel dollar.
	"p2p_usd":     {Regime: enums.RegimeUSDVolatile, UsesVolatileRate: true},
	"cash_usd":    {Regime: enums.RegimeUSDVolatile, UsesVolatileRate: true},
	"crypto_usdt": {Regime: enums.RegimeUSDVolatile, UsesVolatileRate: true},
	"crypto_btc":  {Regime: enums.RegimeUSDVolatile, UsesVolatileRate: true},
	"payoneer":    {Regime: enums.RegimeUSDVolatile, UsesVolatileRate: true},
	"paypal":      {Regime: enums.RegimeUSDVolatile, UsesVolatileRate: true},

	// Domestic instruments settled in local currency.
	"mobile_transfer":       {Regime: enums.RegimeLocalCurrency, UsesVolatileRate: false},
	"bank_transfer_local":   {Regime: enums.RegimeLocalCurrency, UsesVolatileRate: false},
	"cash_local":            {Regime: enums.RegimeLocalCurrency, UsesVolatileRate: false},
	"bank_transfer_central": {Regime: enums.RegimeLocalCurrency, UsesVolatileRate: false},

	// USD instruments settled through official channels at the official rate.
	"bank_transfer_official": {Regime: enums.RegimeUSDOfficialRate, UsesVolatileRate: false},
	"cash_usd_official":      {Regime: enums.RegimeUSDOfficialRate, UsesVolatileRate: false},
}

// NewClassifier builds a classifier whose unknown-tag fallback comes from
// configuration. An invalid configured regime degrades to USD_VOLATILE.
func NewClassifier(cfg config.ClassifierConfig) *Classifier {
	fallback := Classification{
		Regime:           enums.RegimeUSDVolatile,
		UsesVolatileRate: cfg.DefaultVolatile,
	}
	if regime, err := enums.ParsePaymentCurrencyRegime(cfg.DefaultRegime); err == nil {
		fallback.Regime = regime
	}
	return &Classifier{fallback: fallback}
}

// Classify returns the regime and volatile-rate flag for the given tag. Empty
// and unrecognized tags both resolve to the configured fallback; the method
// never fails.
func (c *Classifier) Classify(tag string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return c.fallback
	}
	if classification, ok := knownTags[normalized]; ok {
		return classification
	}
	return c.fallback
}

// KnownTags returns the recognized tag set, sorted order not guaranteed.
func KnownTags() []string {
	tags := make([]string, 0, len(knownTags))
	for tag := range knownTags {
		tags = append(tags, tag)
	}
	return tags
}
