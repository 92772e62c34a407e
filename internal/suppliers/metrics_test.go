package suppliers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
	pkgerrors "github.com/smartkubik/foodinventory-backend/pkg/errors"
)

func newTestAggregator(suppliers *fakeSupplierStore, engine *fakePropagator, events domainEvents) *MetricsAggregator {
	return NewMetricsAggregator(suppliers, newTestClassifier(), engine, events, nil)
}

func TestRecordPurchaseFoldsMetrics(t *testing.T) {
	tenantID := uuid.New()
	suppliers := newFakeSupplierStore()
	profile := suppliers.add(&models.SupplierProfile{
		TenantID:       tenantID,
		SupplierNumber: 1,
		LegacyName:     "Distribuidora X",
		TotalOrders:    1,
		TotalPurchased: decimal.NewFromInt(100),
	})
	events := &recordingEvents{}
	aggregator := newTestAggregator(suppliers, &fakePropagator{}, events)

	err := aggregator.RecordPurchase(context.Background(), tenantID, profile.ID, PurchaseFacts{
		PurchaseID: uuid.New(),
		Amount:     decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	stored, err := suppliers.FindByID(context.Background(), tenantID, profile.ID)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if stored.TotalOrders != 2 {
		t.Fatalf("total orders = %d, want 2", stored.TotalOrders)
	}
	if !stored.TotalPurchased.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("total purchased = %s, want 300", stored.TotalPurchased)
	}
	if !stored.AverageOrderValue.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("average = %s, want 150", stored.AverageOrderValue)
	}
	if stored.LastOrderAt == nil {
		t.Fatalf("last order at not set")
	}
	if events.count("supplier_purchase_recorded") != 1 {
		t.Fatalf("events = %v, want one supplier_purchase_recorded", events.names())
	}
}

func TestRecordPurchaseRejectsNegativeAmount(t *testing.T) {
	aggregator := newTestAggregator(newFakeSupplierStore(), &fakePropagator{}, nil)
	err := aggregator.RecordPurchase(context.Background(), uuid.New(), uuid.New(), PurchaseFacts{
		Amount: decimal.NewFromInt(-1),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestRecordPurchaseUnknownSupplier(t *testing.T) {
	aggregator := newTestAggregator(newFakeSupplierStore(), &fakePropagator{}, nil)
	err := aggregator.RecordPurchase(context.Background(), uuid.New(), uuid.New(), PurchaseFacts{
		Amount: decimal.NewFromInt(10),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("error = %v, want not-found", err)
	}
}

func TestRecordPurchaseMergesPaymentTermsAndPropagates(t *testing.T) {
	tenantID := uuid.New()
	suppliers := newFakeSupplierStore()
	profile := suppliers.add(&models.SupplierProfile{
		TenantID:               tenantID,
		SupplierNumber:         1,
		LegacyName:             "Distribuidora X",
		AcceptedPaymentMethods: []string{"cash_usd"},
	})
	engine := &fakePropagator{updated: 5}
	events := &recordingEvents{}
	aggregator := newTestAggregator(suppliers, engine, events)

	err := aggregator.RecordPurchase(context.Background(), tenantID, profile.ID, PurchaseFacts{
		PurchaseID: uuid.New(),
		Amount:     decimal.NewFromInt(40),
		PaymentTerms: &PaymentTerms{
			PaymentMethods:         []string{"cash_usd", "mobile_transfer"},
			PreferredPaymentMethod: strPtr("mobile_transfer"),
		},
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	stored, _ := suppliers.FindByID(context.Background(), tenantID, profile.ID)
	if len(stored.AcceptedPaymentMethods) != 2 {
		t.Fatalf("accepted methods = %v, want union of 2", stored.AcceptedPaymentMethods)
	}
	if stored.AcceptedPaymentMethods[0] != "cash_usd" {
		t.Fatalf("union must preserve existing order, got %v", stored.AcceptedPaymentMethods)
	}
	if stored.PreferredPaymentMethod == nil || *stored.PreferredPaymentMethod != "mobile_transfer" {
		t.Fatalf("unset preferred method should adopt the purchase's")
	}

	if engine.callCount() != 1 {
		t.Fatalf("propagate calls = %d, want 1", engine.callCount())
	}
	call := engine.lastCall()
	if call.Trigger != "purchase_sync" {
		t.Fatalf("trigger = %q, want purchase_sync", call.Trigger)
	}
	if call.Config.Regime != enums.RegimeLocalCurrency || call.Config.UsesVolatileRate {
		t.Fatalf("config = %+v, want LOCAL_CURRENCY non-volatile for mobile_transfer", call.Config)
	}
	if events.count("supplier_payment_config_synced") != 1 {
		t.Fatalf("events = %v, want one supplier_payment_config_synced", events.names())
	}
}

func TestRecordPurchasePreferredMethodNotOverwritten(t *testing.T) {
	tenantID := uuid.New()
	suppliers := newFakeSupplierStore()
	profile := suppliers.add(&models.SupplierProfile{
		TenantID:               tenantID,
		SupplierNumber:         1,
		LegacyName:             "Distribuidora X",
		PreferredPaymentMethod: strPtr("p2p_usd"),
	})
	aggregator := newTestAggregator(suppliers, &fakePropagator{}, nil)

	err := aggregator.RecordPurchase(context.Background(), tenantID, profile.ID, PurchaseFacts{
		Amount: decimal.NewFromInt(10),
		PaymentTerms: &PaymentTerms{
			PreferredPaymentMethod: strPtr("cash_local"),
		},
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	stored, _ := suppliers.FindByID(context.Background(), tenantID, profile.ID)
	if stored.PreferredPaymentMethod == nil || *stored.PreferredPaymentMethod != "p2p_usd" {
		t.Fatalf("preferred method overwritten to %v", stored.PreferredPaymentMethod)
	}
}

func TestRecordPurchaseUnchangedTermsSkipPropagation(t *testing.T) {
	tenantID := uuid.New()
	suppliers := newFakeSupplierStore()
	profile := suppliers.add(&models.SupplierProfile{
		TenantID:               tenantID,
		SupplierNumber:         1,
		LegacyName:             "Distribuidora X",
		AcceptedPaymentMethods: []string{"cash_usd"},
		PreferredPaymentMethod: strPtr("cash_usd"),
	})
	engine := &fakePropagator{}
	aggregator := newTestAggregator(suppliers, engine, nil)

	err := aggregator.RecordPurchase(context.Background(), tenantID, profile.ID, PurchaseFacts{
		Amount: decimal.NewFromInt(10),
		PaymentTerms: &PaymentTerms{
			PaymentMethods:         []string{"cash_usd"},
			PreferredPaymentMethod: strPtr("cash_usd"),
		},
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if engine.callCount() != 0 {
		t.Fatalf("propagate calls = %d, want 0 for unchanged terms", engine.callCount())
	}
}

func TestRecordPurchaseSurvivesPropagationFailure(t *testing.T) {
	tenantID := uuid.New()
	suppliers := newFakeSupplierStore()
	profile := suppliers.add(&models.SupplierProfile{
		TenantID:       tenantID,
		SupplierNumber: 1,
		LegacyName:     "Distribuidora X",
	})
	engine := &fakePropagator{err: errors.New("links table unavailable")}
	events := &recordingEvents{}
	aggregator := newTestAggregator(suppliers, engine, events)

	err := aggregator.RecordPurchase(context.Background(), tenantID, profile.ID, PurchaseFacts{
		Amount: decimal.NewFromInt(25),
		PaymentTerms: &PaymentTerms{
			PaymentMethods: []string{"payoneer"},
		},
	})
	if err != nil {
		t.Fatalf("propagation failure must not fail the purchase: %v", err)
	}

	stored, _ := suppliers.FindByID(context.Background(), tenantID, profile.ID)
	if stored.TotalOrders != 1 {
		t.Fatalf("metrics not persisted despite propagation failure")
	}
	if events.count("supplier_payment_config_synced") != 0 {
		t.Fatalf("sync event emitted for a failed propagation")
	}
}
