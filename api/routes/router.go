package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartkubik/foodinventory-backend/api/controllers"
	"github.com/smartkubik/foodinventory-backend/api/middleware"
	"github.com/smartkubik/foodinventory-backend/internal/suppliers"
	"github.com/smartkubik/foodinventory-backend/pkg/config"
	"github.com/smartkubik/foodinventory-backend/pkg/db"
	"github.com/smartkubik/foodinventory-backend/pkg/logger"
	"github.com/smartkubik/foodinventory-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	supplierService suppliers.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP db.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", controllers.SupplierCreate(supplierService, logg))
			r.Get("/", controllers.SupplierList(supplierService, logg))
			r.Get("/by-payment-currency", controllers.SuppliersByPaymentCurrency(supplierService, logg))
			r.Get("/by-payment-method/{tag}", controllers.SuppliersByPaymentMethod(supplierService, logg))
			r.Post("/bulk-sync", controllers.SupplierBulkSync(supplierService, logg))

			r.Route("/{supplierId}", func(r chi.Router) {
				r.Get("/", controllers.SupplierGet(supplierService, logg))
				r.Patch("/", controllers.SupplierUpdate(supplierService, logg))
				r.Post("/purchases", controllers.SupplierSyncFromPurchase(supplierService, logg))
			})
		})

		r.Post("/products/{productId}/suppliers/{supplierId}", controllers.SupplierLinkProduct(supplierService, logg))
	})

	return r
}
