package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// PaymentConfig is the supplier payment configuration fanned out to links.
type PaymentConfig struct {
	Regime           enums.PaymentCurrencyRegime
	PreferredMethod  *string
	AcceptedMethods  []string
	UsesVolatileRate bool
}

// SupplierLinkCount is the per-supplier link tally feeding the payment
// listings.
type SupplierLinkCount struct {
	SupplierID   uuid.UUID `gorm:"column:supplier_id"`
	ProductCount int64     `gorm:"column:product_count"`
}

// Repository wires together product and supplier-link persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateProduct inserts a catalog item.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindProductByID loads the product with its supplier links.
func (r *Repository) FindProductByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("SupplierLinks").
		First(&product, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindLink loads a single product/supplier link.
func (r *Repository) FindLink(ctx context.Context, productID, supplierID uuid.UUID) (*models.SupplierLink, error) {
	var link models.SupplierLink
	err := r.db.WithContext(ctx).
		First(&link, "product_id = ? AND supplier_id = ?", productID, supplierID).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// CountLinksForProduct reports how many supplier links the product carries.
func (r *Repository) CountLinksForProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SupplierLink{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

// UpsertLink creates the (product, supplier) link or refreshes the existing
// one. Identity is the unique pair index; repeated calls converge on one row.
// Returns whether a new row was created.
func (r *Repository) UpsertLink(ctx context.Context, link *models.SupplierLink) (bool, error) {
	existing, err := r.FindLink(ctx, link.ProductID, link.SupplierID)
	if err == nil {
		link.ID = existing.ID
		link.IsPreferred = existing.IsPreferred || link.IsPreferred
		link.CreatedAt = existing.CreatedAt
		if saveErr := r.db.WithContext(ctx).Save(link).Error; saveErr != nil {
			return false, saveErr
		}
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "supplier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"supplier_name", "supplier_sku", "cost_price", "lead_time_days",
				"minimum_order_qty", "payment_currency", "preferred_payment_method",
				"accepted_payment_methods", "uses_volatile_rate", "last_synced_at",
				"updated_at",
			}),
		}).
		Create(link).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// BulkUpdateLinksForSupplier rewrites the payment configuration on every link
// in the tenant pointing at the supplier, in one filtered UPDATE. Links of
// other suppliers on the same products are untouched. Returns the number of
// links rewritten.
func (r *Repository) BulkUpdateLinksForSupplier(
	ctx context.Context,
	tenantID, supplierID uuid.UUID,
	config PaymentConfig,
	syncedAt time.Time,
) (int64, error) {
	accepted := config.AcceptedMethods
	if accepted == nil {
		accepted = []string{}
	}
	result := r.db.WithContext(ctx).
		Model(&models.SupplierLink{}).
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
		Updates(map[string]any{
			"payment_currency":         config.Regime,
			"preferred_payment_method": config.PreferredMethod,
			"accepted_payment_methods": pq.StringArray(accepted),
			"uses_volatile_rate":       config.UsesVolatileRate,
			"last_synced_at":           syncedAt,
		})
	return result.RowsAffected, result.Error
}

// ListLinksBySupplier returns every link in the tenant for the supplier.
func (r *Repository) ListLinksBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]models.SupplierLink, error) {
	var links []models.SupplierLink
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

// LinkCountsBySupplier tallies the tenant's links per supplier. A supplier
// with no links has no row; callers treat a missing entry as zero.
func (r *Repository) LinkCountsBySupplier(ctx context.Context, tenantID uuid.UUID) ([]SupplierLinkCount, error) {
	var rows []SupplierLinkCount
	err := r.db.WithContext(ctx).
		Model(&models.SupplierLink{}).
		Select("supplier_id, COUNT(*) AS product_count").
		Where("tenant_id = ?", tenantID).
		Group("supplier_id").
		Scan(&rows).Error
	return rows, err
}
