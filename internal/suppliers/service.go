package suppliers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/smartkubik/foodinventory-backend/internal/catalog"
	"github.com/smartkubik/foodinventory-backend/internal/parties"
	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
	pkgerrors "github.com/smartkubik/foodinventory-backend/pkg/errors"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
)

type catalogStore interface {
	FindProductByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	CountLinksForProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	UpsertLink(ctx context.Context, link *models.SupplierLink) (bool, error)
	LinkCountsBySupplier(ctx context.Context, tenantID uuid.UUID) ([]catalog.SupplierLinkCount, error)
}

type projectionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ProjectionKey(ctx context.Context, tenantID, kind, value string) (string, error)
}

// Service is the orchestration surface consumed by the HTTP layer and the
// purchase-order collaborator.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateSupplierInput) (*EffectiveSupplier, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, patch UpdateSupplierInput) (*EffectiveSupplier, error)
	FindOne(ctx context.Context, tenantID, id uuid.UUID) (*EffectiveSupplier, error)
	List(ctx context.Context, tenantID uuid.UUID, query ListQuery) ([]EffectiveSupplier, error)
	SyncFromPurchase(ctx context.Context, tenantID, supplierID uuid.UUID, facts PurchaseFacts) error
	LinkProductToSupplier(ctx context.Context, tenantID, productID, supplierID uuid.UUID, facts LinkFacts) error
	ListByPaymentCurrency(ctx context.Context, tenantID uuid.UUID) ([]RegimeGroup, error)
	ListByPaymentMethod(ctx context.Context, tenantID uuid.UUID, tag string) ([]RegimeGroup, error)
	BulkSyncAll(ctx context.Context, tenantID uuid.UUID) (*BulkSyncResult, error)
}

// ServiceParams groups dependencies for the supplier service.
type ServiceParams struct {
	Parties    partyStore
	Suppliers  supplierStore
	Catalog    catalogStore
	Resolver   *Resolver
	Aggregator *MetricsAggregator
	Engine     propagator
	Classifier tagClassifier
	Cache      projectionCache
	CacheTTL   time.Duration
	Events     domainEvents
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	parties    partyStore
	suppliers  supplierStore
	catalog    catalogStore
	resolver   *Resolver
	aggregator *MetricsAggregator
	engine     propagator
	classifier tagClassifier
	cache      projectionCache
	cacheTTL   time.Duration
	events     domainEvents
	logg       *logger.Logger
	now        func() time.Time
}

// NewService constructs the supplier orchestration service.
func NewService(params ServiceParams) (Service, error) {
	if params.Parties == nil {
		return nil, errors.New("party store required")
	}
	if params.Suppliers == nil {
		return nil, errors.New("supplier store required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog store required")
	}
	if params.Resolver == nil {
		return nil, errors.New("resolver required")
	}
	if params.Aggregator == nil {
		return nil, errors.New("metrics aggregator required")
	}
	if params.Engine == nil {
		return nil, errors.New("propagation engine required")
	}
	if params.Classifier == nil {
		return nil, errors.New("classifier required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		parties:    params.Parties,
		suppliers:  params.Suppliers,
		catalog:    params.Catalog,
		resolver:   params.Resolver,
		aggregator: params.Aggregator,
		engine:     params.Engine,
		classifier: params.Classifier,
		cache:      params.Cache,
		cacheTTL:   ttl,
		events:     params.Events,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// Create creates or links the party/profile pair. Idempotent by tax id: a
// known tax id returns the existing pair instead of erroring.
func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateSupplierInput) (*EffectiveSupplier, error) {
	taxID := parties.NormalizeTaxID(input.TaxID)
	if taxID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	party, err := s.parties.FindByTaxID(ctx, tenantID, taxID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up party by tax id")
		}
		party, err = s.parties.Create(ctx, &models.Party{
			TenantID:    tenantID,
			Name:        input.Name,
			CompanyName: input.CompanyName,
			TaxID:       taxID,
			TaxName:     input.TaxName,
			Role:        enums.PartyRoleSupplier,
			Contacts:    contactsFromInput(input.Contacts),
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating party")
		}
	}

	profile, err := s.resolver.ResolveOrMaterialize(ctx, tenantID, party.ID)
	if err != nil {
		return nil, err
	}

	if input.PaymentSettings != nil {
		methodsChanged := mergePaymentTerms(profile, *input.PaymentSettings)
		if err := s.suppliers.Save(ctx, profile); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving payment settings")
		}
		if methodsChanged {
			s.propagateCurrentConfig(ctx, profile, "create")
		}
	}

	view := BuildEffectiveView(profile, party)
	return &view, nil
}

// Update patches the profile (auto-materializing from a bare party id) and
// fans the payment configuration out when it changed. Propagation failure is
// logged, never surfaced.
func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, patch UpdateSupplierInput) (*EffectiveSupplier, error) {
	profile, err := s.resolver.ResolveOrMaterialize(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	var party *models.Party
	if profile.PartyID != nil {
		party, err = s.parties.FindByID(ctx, tenantID, *profile.PartyID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading linked party")
		}
	}

	applyIdentityPatch(profile, party, patch)
	applyPaymentPatch(profile, patch)

	if party != nil {
		if err := s.parties.Save(ctx, party); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving party")
		}
	}
	if err := s.suppliers.Save(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving supplier profile")
	}

	if patch.touchesPaymentSettings() {
		s.propagateCurrentConfig(ctx, profile, "payment_settings_update")
	}

	view := BuildEffectiveView(profile, party)
	return &view, nil
}

// FindOne returns the effective view; an unmaterialized supplier-capable
// party is exposed read-only as a virtual supplier.
func (s *service) FindOne(ctx context.Context, tenantID, id uuid.UUID) (*EffectiveSupplier, error) {
	profile, err := s.suppliers.FindByID(ctx, tenantID, id)
	if err == nil {
		return s.viewWithParty(ctx, tenantID, profile)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up supplier profile")
	}

	if profile, err := s.suppliers.FindByPartyID(ctx, tenantID, id); err == nil {
		return s.viewWithParty(ctx, tenantID, profile)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up supplier profile by party")
	}

	party, err := s.parties.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up party")
	}
	if !party.Role.AllowsSupplierUse() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	view := BuildVirtualView(party)
	return &view, nil
}

// List returns effective views for every profile, optionally merged with
// virtual suppliers and filtered by a case-insensitive search.
func (s *service) List(ctx context.Context, tenantID uuid.UUID, query ListQuery) ([]EffectiveSupplier, error) {
	profiles, err := s.suppliers.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing supplier profiles")
	}

	views := make([]EffectiveSupplier, 0, len(profiles))
	materialized := make(map[uuid.UUID]struct{}, len(profiles))
	for i := range profiles {
		profile := &profiles[i]
		if profile.PartyID != nil {
			materialized[*profile.PartyID] = struct{}{}
		}
		view, err := s.viewWithParty(ctx, tenantID, profile)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	if query.IncludeVirtual {
		candidates, err := s.parties.ListSupplierParties(ctx, tenantID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing supplier parties")
		}
		for i := range candidates {
			if _, ok := materialized[candidates[i].ID]; ok {
				continue
			}
			views = append(views, BuildVirtualView(&candidates[i]))
		}
	}

	if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
		filtered := views[:0]
		for _, view := range views {
			if matchesSearch(view, search) {
				filtered = append(filtered, view)
			}
		}
		views = filtered
	}
	return views, nil
}

// SyncFromPurchase folds a completed purchase into the supplier's metrics.
func (s *service) SyncFromPurchase(ctx context.Context, tenantID, supplierID uuid.UUID, facts PurchaseFacts) error {
	profile, err := s.resolver.ResolveOrMaterialize(ctx, tenantID, supplierID)
	if err != nil {
		return err
	}
	return s.aggregator.RecordPurchase(ctx, tenantID, profile.ID, facts)
}

// LinkProductToSupplier creates or refreshes the product link, seeding it
// with the supplier's payment configuration as of link time.
func (s *service) LinkProductToSupplier(ctx context.Context, tenantID, productID, supplierID uuid.UUID, facts LinkFacts) error {
	product, err := s.catalog.FindProductByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up product")
	}

	profile, err := s.resolver.ResolveOrMaterialize(ctx, tenantID, supplierID)
	if err != nil {
		return err
	}

	preferredTag := ""
	if profile.PreferredPaymentMethod != nil {
		preferredTag = *profile.PreferredPaymentMethod
	}
	classification := s.classifier.Classify(preferredTag)

	existing, err := s.catalog.CountLinksForProduct(ctx, product.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting product links")
	}

	syncedAt := s.now()
	minQty := facts.MinimumOrderQty
	if minQty <= 0 {
		minQty = 1
	}
	link := &models.SupplierLink{
		TenantID:               tenantID,
		ProductID:              product.ID,
		SupplierID:             profile.ID,
		SupplierName:           profile.LegacyName,
		SupplierSKU:            facts.SupplierSKU,
		CostPrice:              facts.CostPrice,
		LeadTimeDays:           facts.LeadTimeDays,
		MinimumOrderQty:        minQty,
		IsPreferred:            facts.IsPreferred || existing == 0,
		PaymentCurrency:        classification.Regime,
		PreferredPaymentMethod: profile.PreferredPaymentMethod,
		AcceptedPaymentMethods: append([]string{}, profile.AcceptedPaymentMethods...),
		UsesVolatileRate:       classification.UsesVolatileRate,
		LastSyncedAt:           &syncedAt,
	}
	created, err := s.catalog.UpsertLink(ctx, link)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upserting supplier link")
	}
	if s.events != nil {
		s.events.SupplierLinkUpserted(ctx, link, created)
	}
	return nil
}

// ListByPaymentCurrency groups every supplier under its regime, classified
// from the profile's preferred method at read time, with per-supplier link
// counts. Served through the projection cache when one is wired.
func (s *service) ListByPaymentCurrency(ctx context.Context, tenantID uuid.UUID) ([]RegimeGroup, error) {
	return s.cachedProjection(ctx, tenantID, "currency", "all", func() ([]RegimeGroup, error) {
		return s.buildRegimeGroups(ctx, tenantID, "")
	})
}

// ListByPaymentMethod is the same projection narrowed to suppliers whose
// preferred or accepted methods include the tag.
func (s *service) ListByPaymentMethod(ctx context.Context, tenantID uuid.UUID, tag string) ([]RegimeGroup, error) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method tag is required")
	}
	return s.cachedProjection(ctx, tenantID, "method", normalized, func() ([]RegimeGroup, error) {
		return s.buildRegimeGroups(ctx, tenantID, normalized)
	})
}

// BulkSyncAll re-derives every supplier's config and propagates it,
// collect-and-continue on individual failures.
func (s *service) BulkSyncAll(ctx context.Context, tenantID uuid.UUID) (*BulkSyncResult, error) {
	profiles, err := s.suppliers.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing supplier profiles")
	}

	result := &BulkSyncResult{}
	for i := range profiles {
		profile := &profiles[i]
		result.SuppliersProcessed++
		updated, err := s.propagateCurrentConfig(ctx, profile, "bulk_sync")
		if err != nil {
			result.FailedSuppliers++
			continue
		}
		result.TotalProductsUpdated += updated
	}
	return result, nil
}

// propagateCurrentConfig classifies the profile's preferred method and fans
// it out. Errors are logged and returned for accounting, never escalated.
func (s *service) propagateCurrentConfig(ctx context.Context, profile *models.SupplierProfile, trigger string) (int64, error) {
	preferredTag := ""
	if profile.PreferredPaymentMethod != nil {
		preferredTag = *profile.PreferredPaymentMethod
	}
	classification := s.classifier.Classify(preferredTag)
	config := catalog.PaymentConfig{
		Regime:           classification.Regime,
		PreferredMethod:  profile.PreferredPaymentMethod,
		AcceptedMethods:  profile.AcceptedPaymentMethods,
		UsesVolatileRate: classification.UsesVolatileRate,
	}
	updated, err := s.engine.Propagate(ctx, profile.TenantID, profile.ID, config, trigger)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "payment config propagation failed", err)
		}
		return 0, err
	}
	if s.events != nil {
		s.events.SupplierPaymentConfigSynced(ctx, profile, classification.Regime, classification.UsesVolatileRate, updated)
	}
	return updated, nil
}

func (s *service) viewWithParty(ctx context.Context, tenantID uuid.UUID, profile *models.SupplierProfile) (*EffectiveSupplier, error) {
	var party *models.Party
	if profile.PartyID != nil {
		loaded, err := s.parties.FindByID(ctx, tenantID, *profile.PartyID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading linked party")
		}
		party = loaded
	}
	view := BuildEffectiveView(profile, party)
	return &view, nil
}

func (s *service) cachedProjection(ctx context.Context, tenantID uuid.UUID, kind, value string, load func() ([]RegimeGroup, error)) ([]RegimeGroup, error) {
	var key string
	if s.cache != nil {
		if built, err := s.cache.ProjectionKey(ctx, tenantID.String(), kind, value); err == nil {
			key = built
			if raw, err := s.cache.Get(ctx, key); err == nil {
				var groups []RegimeGroup
				if json.Unmarshal([]byte(raw), &groups) == nil {
					return groups, nil
				}
			} else if !errors.Is(err, goredis.Nil) && s.logg != nil {
				s.logg.Warn(ctx, "projection cache read failed")
			}
		}
	}

	groups, err := load()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "building payment projection")
	}

	if s.cache != nil && key != "" {
		if encoded, err := json.Marshal(groups); err == nil {
			if err := s.cache.Set(ctx, key, string(encoded), s.cacheTTL); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "projection cache write failed")
			}
		}
	}
	return groups, nil
}

// buildRegimeGroups iterates every profile in the tenant so each supplier
// lands in exactly one group, zero-link suppliers included. The regime comes
// from classifying the profile's preferred method at read time, never from
// whatever the links last stored. A non-empty tag narrows the listing to
// suppliers accepting that method.
func (s *service) buildRegimeGroups(ctx context.Context, tenantID uuid.UUID, tag string) ([]RegimeGroup, error) {
	profiles, err := s.suppliers.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	counts, err := s.catalog.LinkCountsBySupplier(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	countByID := make(map[uuid.UUID]int64, len(counts))
	for _, row := range counts {
		countByID[row.SupplierID] = row.ProductCount
	}

	index := make(map[enums.PaymentCurrencyRegime]int)
	groups := []RegimeGroup{}
	for i := range profiles {
		profile := &profiles[i]
		if tag != "" && !acceptsMethod(profile, tag) {
			continue
		}
		preferred := ""
		if profile.PreferredPaymentMethod != nil {
			preferred = *profile.PreferredPaymentMethod
		}
		classification := s.classifier.Classify(preferred)
		pos, ok := index[classification.Regime]
		if !ok {
			pos = len(groups)
			index[classification.Regime] = pos
			groups = append(groups, RegimeGroup{Regime: classification.Regime, Suppliers: []SupplierSummary{}})
		}
		groups[pos].Suppliers = append(groups[pos].Suppliers, SupplierSummary{
			ID:           profile.ID,
			Name:         profile.LegacyName,
			ProductCount: countByID[profile.ID],
		})
	}
	return groups, nil
}

func acceptsMethod(profile *models.SupplierProfile, tag string) bool {
	if profile.PreferredPaymentMethod != nil && strings.EqualFold(*profile.PreferredPaymentMethod, tag) {
		return true
	}
	for _, method := range profile.AcceptedPaymentMethods {
		if strings.EqualFold(method, tag) {
			return true
		}
	}
	return false
}

func matchesSearch(view EffectiveSupplier, search string) bool {
	if strings.Contains(strings.ToLower(view.Name), search) {
		return true
	}
	if view.CompanyName != nil && strings.Contains(strings.ToLower(*view.CompanyName), search) {
		return true
	}
	if view.TaxID != nil && strings.Contains(strings.ToLower(*view.TaxID), search) {
		return true
	}
	return false
}

func contactsFromInput(inputs []ContactInput) []models.PartyContact {
	contacts := make([]models.PartyContact, 0, len(inputs))
	for _, input := range inputs {
		if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
			contacts = append(contacts, models.PartyContact{
				Name:      input.Name,
				Channel:   enums.ContactChannelEmail,
				Value:     *input.Email,
				IsPrimary: input.IsPrimary,
			})
		}
		if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
			contacts = append(contacts, models.PartyContact{
				Name:      input.Name,
				Channel:   enums.ContactChannelPhone,
				Value:     *input.Phone,
				IsPrimary: input.IsPrimary,
			})
		}
	}
	return contacts
}

// applyIdentityPatch routes identity fields to the party when one is linked;
// legacy-only profiles take them on the cached copies instead.
func applyIdentityPatch(profile *models.SupplierProfile, party *models.Party, patch UpdateSupplierInput) {
	if party != nil {
		if patch.Name != nil {
			party.Name = *patch.Name
		}
		if patch.CompanyName != nil {
			party.CompanyName = patch.CompanyName
		}
		if patch.TaxName != nil {
			party.TaxName = patch.TaxName
		}
		return
	}
	if patch.Name != nil {
		profile.LegacyName = *patch.Name
	}
	if patch.CompanyName != nil {
		profile.LegacyCompanyName = patch.CompanyName
	}
	if patch.TaxName != nil {
		profile.LegacyTaxName = patch.TaxName
	}
}

// applyPaymentPatch overwrites payment settings present in the patch. Unlike
// the purchase path this is a direct edit, not a merge.
func applyPaymentPatch(profile *models.SupplierProfile, patch UpdateSupplierInput) {
	if patch.AcceptsCredit != nil {
		profile.AcceptsCredit = *patch.AcceptsCredit
	}
	if patch.CreditDays != nil {
		profile.CreditDays = *patch.CreditDays
	}
	if patch.CreditLimit != nil {
		profile.CreditLimit = *patch.CreditLimit
	}
	if patch.AcceptedPaymentMethods != nil {
		profile.AcceptedPaymentMethods = append([]string{}, patch.AcceptedPaymentMethods...)
	}
	if patch.PreferredPaymentMethod != nil {
		profile.PreferredPaymentMethod = patch.PreferredPaymentMethod
	}
	if patch.RequiresAdvancePayment != nil {
		profile.RequiresAdvancePayment = *patch.RequiresAdvancePayment
	}
	if patch.AdvancePaymentPercent != nil {
		profile.AdvancePaymentPercent = *patch.AdvancePaymentPercent
	}
}
