package suppliers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/smartkubik/foodinventory-backend/internal/catalog"
	"github.com/smartkubik/foodinventory-backend/internal/paymentmethods"
	"github.com/smartkubik/foodinventory-backend/pkg/config"
	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

func newTestClassifier() *paymentmethods.Classifier {
	return paymentmethods.NewClassifier(config.ClassifierConfig{
		DefaultRegime:   "USD_VOLATILE",
		DefaultVolatile: true,
	})
}

type fakePartyStore struct {
	mu      sync.Mutex
	parties map[uuid.UUID]*models.Party
}

func newFakePartyStore() *fakePartyStore {
	return &fakePartyStore{parties: map[uuid.UUID]*models.Party{}}
}

func (f *fakePartyStore) add(party *models.Party) *models.Party {
	f.mu.Lock()
	defer f.mu.Unlock()
	if party.ID == uuid.Nil {
		party.ID = uuid.New()
	}
	f.parties[party.ID] = party
	return party
}

func (f *fakePartyStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	party, ok := f.parties[id]
	if !ok || party.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *party
	return &copied, nil
}

func (f *fakePartyStore) FindByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*models.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, party := range f.parties {
		if party.TenantID == tenantID && party.TaxID == taxID {
			copied := *party
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePartyStore) Create(ctx context.Context, party *models.Party) (*models.Party, error) {
	return f.add(party), nil
}

func (f *fakePartyStore) UpgradeRole(ctx context.Context, tenantID, id uuid.UUID, toRole enums.PartyRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	party, ok := f.parties[id]
	if !ok || party.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}
	party.Role = toRole
	return nil
}

func (f *fakePartyStore) ListSupplierParties(ctx context.Context, tenantID uuid.UUID) ([]models.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Party
	for _, party := range f.parties {
		if party.TenantID == tenantID && party.Role.AllowsSupplierUse() {
			out = append(out, *party)
		}
	}
	return out, nil
}

func (f *fakePartyStore) Save(ctx context.Context, party *models.Party) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.parties[party.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *party
	f.parties[party.ID] = &copied
	return nil
}

// errDuplicateProfile mimics the Postgres unique-violation text the resolver
// matches on.
var errDuplicateProfile = errors.New(`duplicate key value violates unique constraint "ux_supplier_profiles_tenant_party"`)

type fakeSupplierStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.SupplierProfile

	// failCreates makes the next N Create calls fail with a unique
	// violation, simulating a lost materialization race.
	failCreates int
	createCalls int
	saveErr     error
}

func newFakeSupplierStore() *fakeSupplierStore {
	return &fakeSupplierStore{profiles: map[uuid.UUID]*models.SupplierProfile{}}
}

func (f *fakeSupplierStore) add(profile *models.SupplierProfile) *models.SupplierProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	f.profiles[profile.ID] = profile
	return profile
}

func (f *fakeSupplierStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplierProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok || profile.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeSupplierStore) FindByPartyID(ctx context.Context, tenantID, partyID uuid.UUID) (*models.SupplierProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.profiles {
		if profile.TenantID == tenantID && profile.PartyID != nil && *profile.PartyID == partyID {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSupplierStore) Create(ctx context.Context, profile *models.SupplierProfile) (*models.SupplierProfile, error) {
	f.mu.Lock()
	f.createCalls++
	if f.failCreates > 0 {
		f.failCreates--
		f.mu.Unlock()
		return nil, errDuplicateProfile
	}
	for _, existing := range f.profiles {
		if existing.TenantID == profile.TenantID && existing.PartyID != nil &&
			profile.PartyID != nil && *existing.PartyID == *profile.PartyID {
			f.mu.Unlock()
			return nil, errDuplicateProfile
		}
	}
	f.mu.Unlock()
	return f.add(profile), nil
}

func (f *fakeSupplierStore) Save(ctx context.Context, profile *models.SupplierProfile) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[profile.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *profile
	f.profiles[profile.ID] = &copied
	return nil
}

func (f *fakeSupplierStore) NextSupplierNumber(ctx context.Context, tenantID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, profile := range f.profiles {
		if profile.TenantID == tenantID && profile.SupplierNumber > max {
			max = profile.SupplierNumber
		}
	}
	return max + 1, nil
}

func (f *fakeSupplierStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.SupplierProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SupplierProfile
	for _, profile := range f.profiles {
		if profile.TenantID == tenantID {
			out = append(out, *profile)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SupplierNumber < out[j].SupplierNumber
	})
	return out, nil
}

type fakeCatalogStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	links    map[string]*models.SupplierLink

	linkCounts map[uuid.UUID]int64

	countQueries int
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		products:   map[uuid.UUID]*models.Product{},
		links:      map[string]*models.SupplierLink{},
		linkCounts: map[uuid.UUID]int64{},
	}
}

func linkKey(productID, supplierID uuid.UUID) string {
	return productID.String() + "/" + supplierID.String()
}

func (f *fakeCatalogStore) addProduct(product *models.Product) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = product
	return product
}

func (f *fakeCatalogStore) FindProductByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeCatalogStore) CountLinksForProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, link := range f.links {
		if link.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (f *fakeCatalogStore) UpsertLink(ctx context.Context, link *models.SupplierLink) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := linkKey(link.ProductID, link.SupplierID)
	_, existed := f.links[key]
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	copied := *link
	f.links[key] = &copied
	return !existed, nil
}

func (f *fakeCatalogStore) LinkCountsBySupplier(ctx context.Context, tenantID uuid.UUID) ([]catalog.SupplierLinkCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countQueries++
	rows := make([]catalog.SupplierLinkCount, 0, len(f.linkCounts))
	for supplierID, count := range f.linkCounts {
		rows = append(rows, catalog.SupplierLinkCount{SupplierID: supplierID, ProductCount: count})
	}
	return rows, nil
}

type propagateCall struct {
	TenantID   uuid.UUID
	SupplierID uuid.UUID
	Config     catalog.PaymentConfig
	Trigger    string
}

type fakePropagator struct {
	mu      sync.Mutex
	calls   []propagateCall
	updated int64
	err     error
}

func (f *fakePropagator) Propagate(ctx context.Context, tenantID, supplierID uuid.UUID, config catalog.PaymentConfig, trigger string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, propagateCall{
		TenantID:   tenantID,
		SupplierID: supplierID,
		Config:     config,
		Trigger:    trigger,
	})
	if f.err != nil {
		return 0, f.err
	}
	return f.updated, nil
}

func (f *fakePropagator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePropagator) lastCall() propagateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type recordedEvent struct {
	Name        string
	AggregateID uuid.UUID
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingEvents) record(name string, aggregateID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Name: name, AggregateID: aggregateID})
}

func (r *recordingEvents) PartyRoleUpgraded(ctx context.Context, party *models.Party, oldRole enums.PartyRole) {
	r.record("party_role_upgraded", party.ID)
}

func (r *recordingEvents) SupplierMaterialized(ctx context.Context, profile *models.SupplierProfile, source string) {
	r.record("supplier_materialized", profile.ID)
}

func (r *recordingEvents) SupplierPaymentConfigSynced(ctx context.Context, profile *models.SupplierProfile, regime enums.PaymentCurrencyRegime, volatile bool, updated int64) {
	r.record("supplier_payment_config_synced", profile.ID)
}

func (r *recordingEvents) SupplierPurchaseRecorded(ctx context.Context, profile *models.SupplierProfile, purchaseID uuid.UUID) {
	r.record("supplier_purchase_recorded", profile.ID)
}

func (r *recordingEvents) SupplierLinkUpserted(ctx context.Context, link *models.SupplierLink, created bool) {
	r.record("supplier_link_upserted", link.ProductID)
}

func (r *recordingEvents) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Name)
	}
	return out
}

func (r *recordingEvents) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, event := range r.events {
		if event.Name == name {
			total++
		}
	}
	return total
}

type fakeProjectionCache struct {
	mu   sync.Mutex
	data map[string]string
	gens map[string]int64
	sets int
}

func newFakeProjectionCache() *fakeProjectionCache {
	return &fakeProjectionCache{data: map[string]string{}, gens: map[string]int64{}}
}

func (f *fakeProjectionCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeProjectionCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeProjectionCache) ProjectionKey(ctx context.Context, tenantID, kind, value string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("sk:projection:%s:g%d:%s:%s", tenantID, f.gens[tenantID], kind, value), nil
}

func (f *fakeProjectionCache) bump(tenantID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gens[tenantID]++
}
