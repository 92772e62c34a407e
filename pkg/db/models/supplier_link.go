package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// SupplierLink ties a product to one of its suppliers and carries a snapshot
// of that supplier's payment configuration. Rows are written only by the
// propagation engine and the purchase-receiving flow, never by user forms.
type SupplierLink struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_supplier_links_product_supplier"`
	SupplierID uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:ux_supplier_links_product_supplier;index"`

	SupplierName    string          `gorm:"column:supplier_name;not null"`
	SupplierSKU     *string         `gorm:"column:supplier_sku"`
	CostPrice       decimal.Decimal `gorm:"column:cost_price;type:numeric(14,2);not null;default:0"`
	LeadTimeDays    int             `gorm:"column:lead_time_days;not null;default:0"`
	MinimumOrderQty int             `gorm:"column:minimum_order_qty;not null;default:1"`
	IsPreferred     bool            `gorm:"column:is_preferred;not null;default:false"`

	PaymentCurrency        enums.PaymentCurrencyRegime `gorm:"column:payment_currency;type:payment_currency_regime;not null;default:'USD_VOLATILE'"`
	PreferredPaymentMethod *string                     `gorm:"column:preferred_payment_method"`
	AcceptedPaymentMethods pq.StringArray              `gorm:"column:accepted_payment_methods;type:text[];default:ARRAY[]::text[]"`
	UsesVolatileRate       bool                        `gorm:"column:uses_volatile_rate;not null;default:true"`
	LastSyncedAt           *time.Time                  `gorm:"column:last_synced_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
