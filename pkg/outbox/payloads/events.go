package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// SupplierMaterializedEvent is emitted the first time a party gains a
// supplier profile.
type SupplierMaterializedEvent struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	PartyID        uuid.UUID `json:"party_id"`
	SupplierID     uuid.UUID `json:"supplier_id"`
	SupplierNumber int       `json:"supplier_number"`
	TaxID          string    `json:"tax_id,omitempty"`
	Source         string    `json:"source"`
}

// SupplierPaymentConfigSyncedEvent reports a completed payment configuration
// propagation run for one supplier.
type SupplierPaymentConfigSyncedEvent struct {
	TenantID        uuid.UUID                   `json:"tenant_id"`
	SupplierID      uuid.UUID                   `json:"supplier_id"`
	PaymentCurrency enums.PaymentCurrencyRegime `json:"payment_currency"`
	UsesVolatile    bool                        `json:"uses_volatile"`
	ProductsUpdated int64                       `json:"products_updated"`
	SyncedAt        time.Time                   `json:"synced_at"`
}

// SupplierPurchaseRecordedEvent is emitted after a received purchase folds
// into the supplier's running metrics.
type SupplierPurchaseRecordedEvent struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	Total       decimal.Decimal `json:"total"`
	TotalOrders int             `json:"total_orders"`
}

// SupplierLinkUpsertedEvent signals a product/supplier link was created or
// refreshed.
type SupplierLinkUpsertedEvent struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	ProductID  uuid.UUID `json:"product_id"`
	LinkID     uuid.UUID `json:"link_id"`
	Created    bool      `json:"created"`
}

// PartyRoleUpgradedEvent is emitted when a customer-only party becomes a
// supplier as well.
type PartyRoleUpgradedEvent struct {
	TenantID uuid.UUID       `json:"tenant_id"`
	PartyID  uuid.UUID       `json:"party_id"`
	OldRole  enums.PartyRole `json:"old_role"`
	NewRole  enums.PartyRole `json:"new_role"`
}
