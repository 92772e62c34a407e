package suppliers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
	"github.com/smartkubik/foodinventory-backend/pkg/outbox"
	"github.com/smartkubik/foodinventory-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Events queues supplier domain events through the outbox. Every method is
// best-effort: a failed enqueue is logged and never fails the calling write.
type Events struct {
	db     txRunner
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewEvents constructs the event fan-out.
func NewEvents(db txRunner, emitter outboxEmitter, logg *logger.Logger) *Events {
	return &Events{db: db, outbox: emitter, logg: logg}
}

func (e *Events) emit(ctx context.Context, event outbox.DomainEvent) {
	if e == nil || e.db == nil || e.outbox == nil {
		return
	}
	err := e.db.WithTx(ctx, func(tx *gorm.DB) error {
		return e.outbox.Emit(ctx, tx, event)
	})
	if err != nil && e.logg != nil {
		e.logg.Error(ctx, "queueing domain event failed", err)
	}
}

// PartyRoleUpgraded reports a customer party becoming a supplier.
func (e *Events) PartyRoleUpgraded(ctx context.Context, party *models.Party, oldRole enums.PartyRole) {
	e.emit(ctx, outbox.DomainEvent{
		TenantID:      party.TenantID,
		EventType:     enums.EventPartyRoleUpgraded,
		AggregateType: enums.AggregateParty,
		AggregateID:   party.ID,
		Version:       1,
		Data: payloads.PartyRoleUpgradedEvent{
			TenantID: party.TenantID,
			PartyID:  party.ID,
			OldRole:  oldRole,
			NewRole:  party.Role,
		},
	})
}

// SupplierMaterialized reports a first-time profile creation.
func (e *Events) SupplierMaterialized(ctx context.Context, profile *models.SupplierProfile, source string) {
	payload := payloads.SupplierMaterializedEvent{
		TenantID:       profile.TenantID,
		SupplierID:     profile.ID,
		SupplierNumber: profile.SupplierNumber,
		Source:         source,
	}
	if profile.PartyID != nil {
		payload.PartyID = *profile.PartyID
	}
	if profile.LegacyTaxID != nil {
		payload.TaxID = *profile.LegacyTaxID
	}
	e.emit(ctx, outbox.DomainEvent{
		TenantID:      profile.TenantID,
		EventType:     enums.EventSupplierMaterialized,
		AggregateType: enums.AggregateSupplier,
		AggregateID:   profile.ID,
		Version:       1,
		Data:          payload,
	})
}

// SupplierPaymentConfigSynced reports a completed propagation run.
func (e *Events) SupplierPaymentConfigSynced(ctx context.Context, profile *models.SupplierProfile, regime enums.PaymentCurrencyRegime, volatile bool, updated int64) {
	e.emit(ctx, outbox.DomainEvent{
		TenantID:      profile.TenantID,
		EventType:     enums.EventSupplierPaymentConfigSynced,
		AggregateType: enums.AggregateSupplier,
		AggregateID:   profile.ID,
		Version:       1,
		Data: payloads.SupplierPaymentConfigSyncedEvent{
			TenantID:        profile.TenantID,
			SupplierID:      profile.ID,
			PaymentCurrency: regime,
			UsesVolatile:    volatile,
			ProductsUpdated: updated,
			SyncedAt:        time.Now(),
		},
	})
}

// SupplierPurchaseRecorded reports metrics folding in a received purchase.
func (e *Events) SupplierPurchaseRecorded(ctx context.Context, profile *models.SupplierProfile, purchaseID uuid.UUID) {
	e.emit(ctx, outbox.DomainEvent{
		TenantID:      profile.TenantID,
		EventType:     enums.EventSupplierPurchaseRecorded,
		AggregateType: enums.AggregateSupplier,
		AggregateID:   profile.ID,
		Version:       1,
		Data: payloads.SupplierPurchaseRecordedEvent{
			TenantID:    profile.TenantID,
			SupplierID:  profile.ID,
			PurchaseID:  purchaseID,
			Total:       profile.TotalPurchased,
			TotalOrders: profile.TotalOrders,
		},
	})
}

// SupplierLinkUpserted reports a product/supplier link create or refresh.
func (e *Events) SupplierLinkUpserted(ctx context.Context, link *models.SupplierLink, created bool) {
	e.emit(ctx, outbox.DomainEvent{
		TenantID:      link.TenantID,
		EventType:     enums.EventSupplierLinkUpserted,
		AggregateType: enums.AggregateProduct,
		AggregateID:   link.ProductID,
		Version:       1,
		Data: payloads.SupplierLinkUpsertedEvent{
			TenantID:   link.TenantID,
			SupplierID: link.SupplierID,
			ProductID:  link.ProductID,
			LinkID:     link.ID,
			Created:    created,
		},
	})
}
