package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SupplierProfile is the operational extension of a party acting as a
// supplier. Profiles are materialized lazily; the unique index on
// (tenant_id, party_id) is the guard against a race creating two profiles
// for the same party.
type SupplierProfile struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_supplier_profiles_tenant_party;uniqueIndex:ux_supplier_profiles_tenant_number"`
	SupplierNumber int        `gorm:"column:supplier_number;not null;uniqueIndex:ux_supplier_profiles_tenant_number"`
	PartyID        *uuid.UUID `gorm:"column:party_id;type:uuid;uniqueIndex:ux_supplier_profiles_tenant_party"`

	// Legacy cached identity fields, seeded at materialization time and kept
	// for pre-link rows that never got a party. The merge view masks them
	// whenever a linked party exists.
	LegacyName        string  `gorm:"column:legacy_name;not null"`
	LegacyCompanyName *string `gorm:"column:legacy_company_name"`
	LegacyTaxID       *string `gorm:"column:legacy_tax_id"`
	LegacyTaxName     *string `gorm:"column:legacy_tax_name"`
	LegacyContactName *string `gorm:"column:legacy_contact_name"`

	AcceptsCredit          bool            `gorm:"column:accepts_credit;not null;default:false"`
	CreditDays             int             `gorm:"column:credit_days;not null;default:0"`
	CreditLimit            decimal.Decimal `gorm:"column:credit_limit;type:numeric(14,2);not null;default:0"`
	AcceptedPaymentMethods pq.StringArray  `gorm:"column:accepted_payment_methods;type:text[];default:ARRAY[]::text[]"`
	PreferredPaymentMethod *string         `gorm:"column:preferred_payment_method"`
	RequiresAdvancePayment bool            `gorm:"column:requires_advance_payment;not null;default:false"`
	AdvancePaymentPercent  float64         `gorm:"column:advance_payment_percent;type:numeric(5,2);not null;default:0"`

	TotalOrders       int             `gorm:"column:total_orders;not null;default:0"`
	TotalPurchased    decimal.Decimal `gorm:"column:total_purchased;type:numeric(14,2);not null;default:0"`
	AverageOrderValue decimal.Decimal `gorm:"column:average_order_value;type:numeric(14,2);not null;default:0"`
	LastOrderAt       *time.Time      `gorm:"column:last_order_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
