package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// Party is the canonical business-partner record, shared by the customer and
// supplier sides. At most one row exists per (tenant, tax id); role changes
// in place instead of the row being deleted or duplicated.
type Party struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_parties_tenant_tax_id"`
	Name        string          `gorm:"column:name;not null"`
	CompanyName *string         `gorm:"column:company_name"`
	TaxID       string          `gorm:"column:tax_id;not null;uniqueIndex:ux_parties_tenant_tax_id"`
	TaxName     *string         `gorm:"column:tax_name"`
	Role        enums.PartyRole `gorm:"column:role;type:party_role;not null;default:'customer'"`

	Contacts  []PartyContact `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE"`
	Addresses []PartyAddress `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE"`

	TotalOrders int             `gorm:"column:total_orders;not null;default:0"`
	TotalVolume decimal.Decimal `gorm:"column:total_volume;type:numeric(14,2);not null;default:0"`
	LastOrderAt *time.Time      `gorm:"column:last_order_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName prefers the registered company name over the contact name.
func (p Party) DisplayName() string {
	if p.CompanyName != nil && strings.TrimSpace(*p.CompanyName) != "" {
		return *p.CompanyName
	}
	return p.Name
}

// PartyContact is a single reachable channel for a party.
type PartyContact struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID   uuid.UUID            `gorm:"column:party_id;type:uuid;not null;index"`
	Name      *string              `gorm:"column:name"`
	Channel   enums.ContactChannel `gorm:"column:channel;type:contact_channel;not null"`
	Value     string               `gorm:"column:value;not null"`
	IsPrimary bool                 `gorm:"column:is_primary;not null;default:false"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// PartyAddress is a postal address attached to a party.
type PartyAddress struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID    uuid.UUID `gorm:"column:party_id;type:uuid;not null;index"`
	Line1      string    `gorm:"column:line1;not null"`
	City       string    `gorm:"column:city;not null"`
	State      *string   `gorm:"column:state"`
	PostalCode *string   `gorm:"column:postal_code"`
	Country    string    `gorm:"column:country;not null;default:'Venezuela'"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
