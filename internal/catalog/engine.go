package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/smartkubik/foodinventory-backend/pkg/errors"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
	"github.com/smartkubik/foodinventory-backend/pkg/metrics"
)

// linkUpdater is the persistence surface the engine fans out through.
type linkUpdater interface {
	BulkUpdateLinksForSupplier(ctx context.Context, tenantID, supplierID uuid.UUID, config PaymentConfig, syncedAt time.Time) (int64, error)
}

// projectionInvalidator ages out cached payment listings after a fan-out.
type projectionInvalidator interface {
	BumpProjectionGeneration(ctx context.Context, tenantID string) error
}

// Engine fans a supplier's payment configuration out to every product link
// referencing it. Runs outside the primary-write transaction; a failure here
// leaves links stale until the next sync, never inconsistent primaries.
type Engine struct {
	repo    linkUpdater
	cache   projectionInvalidator
	metrics *metrics.PropagationMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// EngineParams groups dependencies for the propagation engine.
type EngineParams struct {
	Repository linkUpdater
	Cache      projectionInvalidator
	Metrics    *metrics.PropagationMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

// NewEngine constructs a propagation engine.
func NewEngine(params EngineParams) *Engine {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		repo:    params.Repository,
		cache:   params.Cache,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}
}

// Propagate rewrites the supplier's links in one bulk update and returns how
// many were touched. Idempotent: a second run with the same config reports
// the same count and changes nothing material.
func (e *Engine) Propagate(
	ctx context.Context,
	tenantID, supplierID uuid.UUID,
	config PaymentConfig,
	trigger string,
) (int64, error) {
	started := e.now()
	updated, err := e.repo.BulkUpdateLinksForSupplier(ctx, tenantID, supplierID, config, started)
	e.metrics.ObserveDuration(trigger, e.now().Sub(started))
	if err != nil {
		e.metrics.IncFailure(trigger)
		if e.logg != nil {
			e.logg.Error(ctx, "payment config propagation failed", err)
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodePropagation, err, "propagating payment config")
	}

	e.metrics.IncSuccess(trigger)
	e.metrics.AddProductsUpdated(trigger, updated)

	if e.cache != nil {
		if cacheErr := e.cache.BumpProjectionGeneration(ctx, tenantID.String()); cacheErr != nil && e.logg != nil {
			e.logg.Warn(ctx, "projection cache invalidation failed")
		}
	}

	if e.logg != nil {
		fields := map[string]any{
			"supplier_id":      supplierID.String(),
			"trigger":          trigger,
			"products_updated": updated,
			"regime":           config.Regime,
		}
		e.logg.Info(e.logg.WithFields(ctx, fields), "payment config propagated")
	}
	return updated, nil
}
