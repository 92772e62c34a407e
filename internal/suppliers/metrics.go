package suppliers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartkubik/foodinventory-backend/internal/catalog"
	"github.com/smartkubik/foodinventory-backend/internal/paymentmethods"
	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	pkgerrors "github.com/smartkubik/foodinventory-backend/pkg/errors"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
)

type propagator interface {
	Propagate(ctx context.Context, tenantID, supplierID uuid.UUID, config catalog.PaymentConfig, trigger string) (int64, error)
}

type tagClassifier interface {
	Classify(tag string) paymentmethods.Classification
}

// MetricsAggregator folds completed purchases into a supplier's rolling
// metrics and, when the purchase carried new payment terms, fans the merged
// configuration out to product links.
type MetricsAggregator struct {
	suppliers  supplierStore
	classifier tagClassifier
	engine     propagator
	events     domainEvents
	logg       *logger.Logger
	now        func() time.Time
}

// NewMetricsAggregator constructs the aggregator.
func NewMetricsAggregator(suppliers supplierStore, classifier tagClassifier, engine propagator, events domainEvents, logg *logger.Logger) *MetricsAggregator {
	return &MetricsAggregator{
		suppliers:  suppliers,
		classifier: classifier,
		engine:     engine,
		events:     events,
		logg:       logg,
		now:        time.Now,
	}
}

// RecordPurchase applies the metrics update rule and merges payment terms.
// The propagation side effect is log-and-continue: a failed fan-out never
// fails purchase recording.
func (m *MetricsAggregator) RecordPurchase(ctx context.Context, tenantID, supplierID uuid.UUID, facts PurchaseFacts) error {
	if facts.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase amount cannot be negative")
	}

	profile, err := m.suppliers.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading supplier profile")
	}

	profile.TotalOrders++
	profile.TotalPurchased = profile.TotalPurchased.Add(facts.Amount)
	profile.AverageOrderValue = profile.TotalPurchased.Div(decimal.NewFromInt(int64(profile.TotalOrders)))
	orderedAt := m.now()
	profile.LastOrderAt = &orderedAt

	paymentChanged := false
	if facts.PaymentTerms != nil {
		paymentChanged = mergePaymentTerms(profile, *facts.PaymentTerms)
	}

	if err := m.suppliers.Save(ctx, profile); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving supplier metrics")
	}
	if m.events != nil {
		m.events.SupplierPurchaseRecorded(ctx, profile, facts.PurchaseID)
	}

	if paymentChanged && m.engine != nil {
		m.propagateMerged(ctx, profile)
	}
	return nil
}

func (m *MetricsAggregator) propagateMerged(ctx context.Context, profile *models.SupplierProfile) {
	preferred := ""
	if profile.PreferredPaymentMethod != nil {
		preferred = *profile.PreferredPaymentMethod
	}
	classification := m.classifier.Classify(preferred)
	config := catalog.PaymentConfig{
		Regime:           classification.Regime,
		PreferredMethod:  profile.PreferredPaymentMethod,
		AcceptedMethods:  profile.AcceptedPaymentMethods,
		UsesVolatileRate: classification.UsesVolatileRate,
	}
	updated, err := m.engine.Propagate(ctx, profile.TenantID, profile.ID, config, "purchase_sync")
	if err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "post-purchase payment sync failed", err)
		}
		return
	}
	if m.events != nil {
		m.events.SupplierPaymentConfigSynced(ctx, profile, classification.Regime, classification.UsesVolatileRate, updated)
	}
}

// mergePaymentTerms folds purchase-supplied terms into the profile. Accepted
// methods are a union, the preferred method is only adopted when unset, and
// credit/advance fields overwrite when present. Reports whether any
// payment-method information changed.
func mergePaymentTerms(profile *models.SupplierProfile, terms PaymentTerms) bool {
	changed := false

	if len(terms.PaymentMethods) > 0 {
		existing := make(map[string]struct{}, len(profile.AcceptedPaymentMethods))
		for _, tag := range profile.AcceptedPaymentMethods {
			existing[tag] = struct{}{}
		}
		for _, tag := range terms.PaymentMethods {
			if _, ok := existing[tag]; ok {
				continue
			}
			profile.AcceptedPaymentMethods = append(profile.AcceptedPaymentMethods, tag)
			existing[tag] = struct{}{}
			changed = true
		}
	}

	if terms.PreferredPaymentMethod != nil && profile.PreferredPaymentMethod == nil {
		preferred := *terms.PreferredPaymentMethod
		profile.PreferredPaymentMethod = &preferred
		changed = true
	}

	if terms.AcceptsCredit != nil {
		profile.AcceptsCredit = *terms.AcceptsCredit
	}
	if terms.CreditDays != nil {
		profile.CreditDays = *terms.CreditDays
	}
	if terms.CreditLimit != nil {
		profile.CreditLimit = *terms.CreditLimit
	}
	if terms.RequiresAdvancePayment != nil {
		profile.RequiresAdvancePayment = *terms.RequiresAdvancePayment
	}
	if terms.AdvancePaymentPercent != nil {
		profile.AdvancePaymentPercent = *terms.AdvancePaymentPercent
	}

	return changed
}
