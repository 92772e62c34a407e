package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartkubik/foodinventory-backend/internal/catalog"
	"github.com/smartkubik/foodinventory-backend/internal/parties"
	"github.com/smartkubik/foodinventory-backend/internal/paymentmethods"
	"github.com/smartkubik/foodinventory-backend/internal/suppliers"
	"github.com/smartkubik/foodinventory-backend/pkg/config"
	"github.com/smartkubik/foodinventory-backend/pkg/db"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
	"github.com/smartkubik/foodinventory-backend/pkg/metrics"
	"github.com/smartkubik/foodinventory-backend/pkg/migrate"
	"github.com/smartkubik/foodinventory-backend/pkg/outbox"
	"github.com/smartkubik/foodinventory-backend/pkg/redis"
)

// One-shot runner that re-propagates payment configuration for every
// materialized supplier in a tenant. Intended for backfills after
// classifier or migration changes.
func main() {
	logg := logger.New(logger.Options{ServiceName: "bulk-sync"})

	_ = godotenv.Load()

	tenantFlag := flag.String("tenant", "", "tenant id to sync (required)")
	flag.Parse()

	tenantID, err := uuid.Parse(*tenantFlag)
	if err != nil || tenantID == uuid.Nil {
		logg.Error(context.Background(), "a valid -tenant id is required", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "bulk-sync"

	logg = logger.New(logger.Options{
		ServiceName: "bulk-sync",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	partyRepo := parties.NewRepository(dbClient.DB())
	supplierRepo := suppliers.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	events := suppliers.NewEvents(dbClient, outboxService, logg)
	classifier := paymentmethods.NewClassifier(cfg.Classifier)

	engine := catalog.NewEngine(catalog.EngineParams{
		Repository: catalogRepo,
		Cache:      redisClient,
		Metrics:    metrics.NewPropagationMetrics(prometheus.DefaultRegisterer),
		Logger:     logg,
	})
	resolver := suppliers.NewResolver(partyRepo, supplierRepo, events, logg)
	aggregator := suppliers.NewMetricsAggregator(supplierRepo, classifier, engine, events, logg)

	supplierService, err := suppliers.NewService(suppliers.ServiceParams{
		Parties:    partyRepo,
		Suppliers:  supplierRepo,
		Catalog:    catalogRepo,
		Resolver:   resolver,
		Aggregator: aggregator,
		Engine:     engine,
		Classifier: classifier,
		Cache:      redisClient,
		CacheTTL:   cfg.Redis.ProjectionTTL,
		Events:     events,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"tenant_id":   tenantID.String(),
	})
	logg.Info(ctx, "starting bulk payment config sync")

	result, err := supplierService.BulkSyncAll(ctx, tenantID)
	if err != nil {
		logg.Error(ctx, "bulk sync failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"suppliers_processed":    result.SuppliersProcessed,
		"total_products_updated": result.TotalProductsUpdated,
		"failed_suppliers":       result.FailedSuppliers,
	})
	logg.Info(ctx, "bulk sync complete")

	if result.FailedSuppliers > 0 {
		os.Exit(1)
	}
}
