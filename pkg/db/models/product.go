package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item. Supplier payment configuration is denormalized
// onto its SupplierLinks rather than joined at read time.
type Product struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	SKU      string    `gorm:"column:sku;not null"`
	Name     string    `gorm:"column:name;not null"`
	Category *string   `gorm:"column:category"`
	IsActive bool      `gorm:"column:is_active;not null;default:true"`

	SupplierLinks []SupplierLink `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
