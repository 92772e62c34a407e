package parties

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// Repository wires together party persistence helpers.
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

// FindByID loads the party with contacts and addresses.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		Preload("Addresses").
		First(&party, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

// FindByTaxID resolves a party by its normalized tax id within the tenant.
func (r *Repository) FindByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		Preload("Addresses").
		First(&party, "tenant_id = ? AND tax_id = ?", tenantID, NormalizeTaxID(taxID)).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

// Create inserts a new party row. The tax id is normalized before insert so
// the (tenant_id, tax_id) unique index dedupes formatting variants.
func (r *Repository) Create(ctx context.Context, party *models.Party) (*models.Party, error) {
	party.TaxID = NormalizeTaxID(party.TaxID)
	if err := r.db.WithContext(ctx).Create(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

// UpgradeRole widens the party's role in place. A customer becoming a
// supplier lands on "both"; roles never narrow here.
func (r *Repository) UpgradeRole(ctx context.Context, tenantID, id uuid.UUID, toRole enums.PartyRole) error {
	return r.db.WithContext(ctx).
		Model(&models.Party{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("role", toRole).Error
}

// ListSupplierParties returns parties whose role permits supplier use,
// including ones never materialized into a profile.
func (r *Repository) ListSupplierParties(ctx context.Context, tenantID uuid.UUID) ([]models.Party, error) {
	var rows []models.Party
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		Where("tenant_id = ? AND role IN ?", tenantID, []enums.PartyRole{enums.PartyRoleSupplier, enums.PartyRoleBoth}).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// Save persists mutable party fields.
func (r *Repository) Save(ctx context.Context, party *models.Party) error {
	return r.db.WithContext(ctx).Save(party).Error
}

// NormalizeTaxID uppercases and strips whitespace so "j-111" and "J-111 "
// collide on the unique index instead of creating duplicate parties.
func NormalizeTaxID(taxID string) string {
	return strings.ToUpper(strings.TrimSpace(taxID))
}
