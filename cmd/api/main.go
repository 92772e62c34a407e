package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartkubik/foodinventory-backend/api/routes"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, supplierService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
