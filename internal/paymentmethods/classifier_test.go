package paymentmethods

import (
	"testing"

	"github.com/smartkubik/foodinventory-backend/pkg/config"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

func defaultClassifier() *Classifier {
	return NewClassifier(config.ClassifierConfig{
		DefaultRegime:   "USD_VOLATILE",
		DefaultVolatile: true,
	})
}

func TestClassifyKnownTags(t *testing.T) {
	classifier := defaultClassifier()

	cases := []struct {
		tag      string
		regime   enums.PaymentCurrencyRegime
		volatile bool
	}{
		{"p2p_usd", enums.RegimeUSDVolatile, true},
		{"cash_usd", enums.RegimeUSDVolatile, true},
		{"crypto_usdt", enums.RegimeUSDVolatile, true},
		{"crypto_btc", enums.RegimeUSDVolatile, true},
		{"payoneer", enums.RegimeUSDVolatile, true},
		{"paypal", enums.RegimeUSDVolatile, true},
		{"mobile_transfer", enums.RegimeLocalCurrency, false},
		{"bank_transfer_local", enums.RegimeLocalCurrency, false},
		{"cash_local", enums.RegimeLocalCurrency, false},
		{"bank_transfer_central", enums.RegimeLocalCurrency, false},
		{"bank_transfer_official", enums.RegimeUSDOfficialRate, false},
		{"cash_usd_official", enums.RegimeUSDOfficialRate, false},
	}

	for _, tc := range cases {
		got := classifier.Classify(tc.tag)
		if got.Regime != tc.regime || got.UsesVolatileRate != tc.volatile {
			t.Errorf("classify(%q) = %s/%v, want %s/%v",
				tc.tag, got.Regime, got.UsesVolatileRate, tc.regime, tc.volatile)
		}
	}
}

func TestClassifyIsTotal(t *testing.T) {
	classifier := defaultClassifier()

	for _, tag := range append(KnownTags(), "", "unknown-tag", "  ", "ZELLE-ish") {
		got := classifier.Classify(tag)
		if !got.Regime.IsValid() {
			t.Errorf("classify(%q) returned invalid regime %q", tag, got.Regime)
		}
	}
}

func TestClassifyFallbackDefaults(t *testing.T) {
	classifier := defaultClassifier()

	for _, tag := range []string{"", "unknown-tag"} {
		got := classifier.Classify(tag)
		if got.Regime != enums.RegimeUSDVolatile || !got.UsesVolatileRate {
			t.Errorf("classify(%q) = %s/%v, want USD_VOLATILE/true", tag, got.Regime, got.UsesVolatileRate)
		}
	}
}

func TestClassifyNormalizesCase(t *testing.T) {
	classifier := defaultClassifier()

	got := classifier.Classify("  P2P_USD  ")
	if got.Regime != enums.RegimeUSDVolatile || !got.UsesVolatileRate {
		t.Fatalf("expected normalized tag to classify, got %s/%v", got.Regime, got.UsesVolatileRate)
	}
}

func TestClassifyConfigurableFallback(t *testing.T) {
	classifier := NewClassifier(config.ClassifierConfig{
		DefaultRegime:   "LOCAL_CURRENCY",
		DefaultVolatile: false,
	})

	got := classifier.Classify("unknown-tag")
	if got.Regime != enums.RegimeLocalCurrency || got.UsesVolatileRate {
		t.Fatalf("expected configured fallback, got %s/%v", got.Regime, got.UsesVolatileRate)
	}

	// Known tags ignore the fallback.
	if got := classifier.Classify("paypal"); got.Regime != enums.RegimeUSDVolatile {
		t.Fatalf("known tag should not use fallback, got %s", got.Regime)
	}
}

func TestClassifyInvalidFallbackRegimeDegrades(t *testing.T) {
	classifier := NewClassifier(config.ClassifierConfig{
		DefaultRegime:   "NOT_A_REGIME",
		DefaultVolatile: true,
	})

	got := classifier.Classify("unknown-tag")
	if got.Regime != enums.RegimeUSDVolatile {
		t.Fatalf("expected degraded fallback USD_VOLATILE, got %s", got.Regime)
	}
}
