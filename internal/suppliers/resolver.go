package suppliers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/smartkubik/foodinventory-backend/pkg/db"
	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
	pkgerrors "github.com/smartkubik/foodinventory-backend/pkg/errors"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
)

type partyStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Party, error)
	FindByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*models.Party, error)
	Create(ctx context.Context, party *models.Party) (*models.Party, error)
	UpgradeRole(ctx context.Context, tenantID, id uuid.UUID, toRole enums.PartyRole) error
	ListSupplierParties(ctx context.Context, tenantID uuid.UUID) ([]models.Party, error)
	Save(ctx context.Context, party *models.Party) error
}

type supplierStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplierProfile, error)
	FindByPartyID(ctx context.Context, tenantID, partyID uuid.UUID) (*models.SupplierProfile, error)
	Create(ctx context.Context, profile *models.SupplierProfile) (*models.SupplierProfile, error)
	Save(ctx context.Context, profile *models.SupplierProfile) error
	NextSupplierNumber(ctx context.Context, tenantID uuid.UUID) (int, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.SupplierProfile, error)
}

// domainEvents is the best-effort event fan-out; implementations must never
// fail the calling write path.
type domainEvents interface {
	PartyRoleUpgraded(ctx context.Context, party *models.Party, oldRole enums.PartyRole)
	SupplierMaterialized(ctx context.Context, profile *models.SupplierProfile, source string)
	SupplierPaymentConfigSynced(ctx context.Context, profile *models.SupplierProfile, regime enums.PaymentCurrencyRegime, volatile bool, updated int64)
	SupplierPurchaseRecorded(ctx context.Context, profile *models.SupplierProfile, purchaseID uuid.UUID)
	SupplierLinkUpserted(ctx context.Context, link *models.SupplierLink, created bool)
}

// Resolver returns an existing supplier profile or materializes one from a
// party on first write.
type Resolver struct {
	parties   partyStore
	suppliers supplierStore
	events    domainEvents
	logg      *logger.Logger
}

// NewResolver constructs a resolver.
func NewResolver(parties partyStore, suppliers supplierStore, events domainEvents, logg *logger.Logger) *Resolver {
	return &Resolver{parties: parties, suppliers: suppliers, events: events, logg: logg}
}

// ResolveOrMaterialize accepts either a profile id or a bare party id. A
// party without a profile gets one created on the spot; racing duplicate
// calls converge on a single profile via the (tenant_id, party_id) unique
// index, with the loser re-reading the winner's row.
func (r *Resolver) ResolveOrMaterialize(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplierProfile, error) {
	if profile, err := r.suppliers.FindByID(ctx, tenantID, id); err == nil {
		return profile, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up supplier profile")
	}

	if profile, err := r.suppliers.FindByPartyID(ctx, tenantID, id); err == nil {
		return profile, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up supplier profile by party")
	}

	party, err := r.parties.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up party")
	}

	return r.materialize(ctx, party)
}

func (r *Resolver) materialize(ctx context.Context, party *models.Party) (*models.SupplierProfile, error) {
	if !party.Role.AllowsSupplierUse() {
		oldRole := party.Role
		if err := r.parties.UpgradeRole(ctx, party.TenantID, party.ID, enums.PartyRoleBoth); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upgrading party role")
		}
		party.Role = enums.PartyRoleBoth
		if r.events != nil {
			r.events.PartyRoleUpgraded(ctx, party, oldRole)
		}
	}

	number, err := r.suppliers.NextSupplierNumber(ctx, party.TenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating supplier number")
	}

	profile := snapshotProfile(party, number)
	created, err := r.suppliers.Create(ctx, profile)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_supplier_profiles_tenant_party") ||
			dbpkg.IsUniqueViolation(err, "ux_supplier_profiles_tenant_number") {
			// Lost the race; the winner's profile is the canonical one.
			winner, readErr := r.suppliers.FindByPartyID(ctx, party.TenantID, party.ID)
			if readErr == nil {
				return winner, nil
			}
			// Number collision without a party-linked winner: retry once.
			return r.retryMaterialize(ctx, party)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating supplier profile")
	}

	if r.logg != nil {
		fields := map[string]any{
			"party_id":        party.ID.String(),
			"supplier_id":     created.ID.String(),
			"supplier_number": created.SupplierNumber,
		}
		r.logg.Info(r.logg.WithFields(ctx, fields), "supplier profile materialized")
	}
	if r.events != nil {
		r.events.SupplierMaterialized(ctx, created, "resolver")
	}
	return created, nil
}

func (r *Resolver) retryMaterialize(ctx context.Context, party *models.Party) (*models.SupplierProfile, error) {
	number, err := r.suppliers.NextSupplierNumber(ctx, party.TenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating supplier number")
	}
	profile := snapshotProfile(party, number)
	created, err := r.suppliers.Create(ctx, profile)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_supplier_profiles_tenant_party") {
			if winner, readErr := r.suppliers.FindByPartyID(ctx, party.TenantID, party.ID); readErr == nil {
				return winner, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating supplier profile")
	}
	if r.events != nil {
		r.events.SupplierMaterialized(ctx, created, "resolver")
	}
	return created, nil
}

// snapshotProfile seeds the legacy cached fields from the party as of this
// instant. Later party edits do not flow back into these copies.
func snapshotProfile(party *models.Party, number int) *models.SupplierProfile {
	partyID := party.ID
	taxID := party.TaxID
	profile := &models.SupplierProfile{
		TenantID:               party.TenantID,
		SupplierNumber:         number,
		PartyID:                &partyID,
		LegacyName:             party.DisplayName(),
		LegacyCompanyName:      party.CompanyName,
		LegacyTaxID:            &taxID,
		LegacyTaxName:          party.TaxName,
		AcceptedPaymentMethods: []string{},
	}
	for _, contact := range party.Contacts {
		if contact.Name != nil {
			profile.LegacyContactName = contact.Name
			break
		}
	}
	return profile
}
