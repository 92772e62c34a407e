package parties

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/smartkubik/foodinventory-backend/pkg/db"
	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

func TestNormalizeTaxID(t *testing.T) {
	cases := map[string]string{
		"j-111":    "J-111",
		" J-111 ":  "J-111",
		"V123456":  "V123456",
		"  g-42  ": "G-42",
	}
	for input, want := range cases {
		if got := NormalizeTaxID(input); got != want {
			t.Errorf("NormalizeTaxID(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRepositoryPartyFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()
	tenantID := uuid.New()

	company := "ACME C.A."
	party, err := repo.Create(ctx, &models.Party{
		TenantID:    tenantID,
		Name:        "Juan Perez",
		CompanyName: &company,
		TaxID:       " j-111 ",
		Role:        enums.PartyRoleCustomer,
	})
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	if party.ID == uuid.Nil {
		t.Fatal("expected party id to be generated")
	}
	if party.TaxID != "J-111" {
		t.Fatalf("expected normalized tax id, got %q", party.TaxID)
	}

	found, err := repo.FindByTaxID(ctx, tenantID, "j-111")
	if err != nil {
		t.Fatalf("find by tax id: %v", err)
	}
	if found.ID != party.ID {
		t.Fatalf("expected party %s, got %s", party.ID, found.ID)
	}

	if err := repo.UpgradeRole(ctx, tenantID, party.ID, enums.PartyRoleBoth); err != nil {
		t.Fatalf("upgrade role: %v", err)
	}
	upgraded, err := repo.FindByID(ctx, tenantID, party.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if upgraded.Role != enums.PartyRoleBoth {
		t.Fatalf("expected role both, got %s", upgraded.Role)
	}

	// Same tax id in the same tenant must hit the unique index.
	_, err = repo.Create(ctx, &models.Party{
		TenantID: tenantID,
		Name:     "Duplicate",
		TaxID:    "J-111",
		Role:     enums.PartyRoleCustomer,
	})
	if err == nil {
		t.Fatal("expected unique violation for duplicate tax id")
	}
	if !dbpkg.IsUniqueViolation(err, "ux_parties_tenant_tax_id") {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// A different tenant may reuse the tax id.
	if _, err := repo.Create(ctx, &models.Party{
		TenantID: uuid.New(),
		Name:     "Other Tenant",
		TaxID:    "J-111",
		Role:     enums.PartyRoleCustomer,
	}); err != nil {
		t.Fatalf("create in other tenant: %v", err)
	}
}

func TestRepositoryFindMissingParty(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, uuid.New(), uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.FindByTaxID(ctx, uuid.New(), "J-000"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
