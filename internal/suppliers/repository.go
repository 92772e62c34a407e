package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
)

// Repository wires together supplier profile persistence helpers.
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

// FindByID loads the profile by its own id within the tenant.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplierProfile, error) {
	var profile models.SupplierProfile
	err := r.db.WithContext(ctx).
		First(&profile, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByPartyID loads the profile linked to the given party.
func (r *Repository) FindByPartyID(ctx context.Context, tenantID, partyID uuid.UUID) (*models.SupplierProfile, error) {
	var profile models.SupplierProfile
	err := r.db.WithContext(ctx).
		First(&profile, "tenant_id = ? AND party_id = ?", tenantID, partyID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile. Unique indexes on (tenant_id, party_id) and
// (tenant_id, supplier_number) reject racing duplicates.
func (r *Repository) Create(ctx context.Context, profile *models.SupplierProfile) (*models.SupplierProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Save persists mutable profile fields.
func (r *Repository) Save(ctx context.Context, profile *models.SupplierProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// NextSupplierNumber allocates the next sequential number for the tenant.
// Monotonic, not dense: a failed materialization burns the number.
func (r *Repository) NextSupplierNumber(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var current int
	err := r.db.WithContext(ctx).
		Model(&models.SupplierProfile{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(supplier_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// ListByTenant returns every profile in the tenant ordered by number.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.SupplierProfile, error) {
	var profiles []models.SupplierProfile
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("supplier_number ASC").
		Find(&profiles).Error
	return profiles, err
}
