package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/floramayor/floramayor-backend/api/controllers"
	"github.com/floramayor/floramayor-backend/api/middleware"
	"github.com/floramayor/floramayor-backend/internal/consolidation"
	"github.com/floramayor/floramayor-backend/internal/export"
	"github.com/floramayor/floramayor-backend/internal/orders"
	"github.com/floramayor/floramayor-backend/internal/products"
	"github.com/floramayor/floramayor-backend/internal/users"
	"github.com/floramayor/floramayor-backend/pkg/config"
	"github.com/floramayor/floramayor-backend/pkg/db"
	"github.com/floramayor/floramayor-backend/pkg/logger"
	"github.com/floramayor/floramayor-backend/pkg/redis"
)

// NewRouter wires every HTTP surface. Identity is resolved from the trusted
// proxy headers and role capability gates run per route group; services do
// the per-record ownership checks.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	usersSvc users.Service,
	productsSvc products.Service,
	ordersSvc orders.Service,
	consolidationSvc consolidation.Service,
	exportSvc export.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequireCapability(middleware.CapUsersManage, logg)).Post("/", controllers.CreateUser(usersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapUsersRead, logg)).Get("/", controllers.ListUsers(usersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapUsersRead, logg)).Get("/{userId}", controllers.GetUser(usersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapUsersManage, logg)).Delete("/{userId}", controllers.DeactivateUser(usersSvc, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.With(middleware.RequireCapability(middleware.CapProductsRead, logg)).Get("/", controllers.ListProducts(productsSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapProductsRead, logg)).Get("/{productId}", controllers.GetProduct(productsSvc, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(middleware.CapProductsManage, logg))
				r.Post("/", controllers.CreateProduct(productsSvc, logg))
				r.Patch("/{productId}", controllers.UpdateProduct(productsSvc, logg))
				r.Put("/{productId}/tiers", controllers.SetPricingTiers(productsSvc, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(productsSvc, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireCapability(middleware.CapOrdersCreate, logg)).Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersRead, logg)).Get("/", controllers.ListOrders(ordersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersRead, logg)).Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersEdit, logg)).Put("/{orderId}/items", controllers.AddOrderItem(ordersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersEdit, logg)).Delete("/{orderId}/items/{productId}", controllers.RemoveOrderItem(ordersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersSubmit, logg)).Post("/{orderId}/submit", controllers.SubmitOrder(ordersSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersReview, logg)).Post("/{orderId}/approve", controllers.OrderTransition(ordersSvc.Approve, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersReview, logg)).Post("/{orderId}/decline", controllers.OrderTransition(ordersSvc.Decline, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersReview, logg)).Post("/{orderId}/reject", controllers.OrderTransition(ordersSvc.Reject, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersComplete, logg)).Post("/{orderId}/complete", controllers.OrderTransition(ordersSvc.Complete, logg))
			r.With(middleware.RequireCapability(middleware.CapOrdersDelete, logg)).Delete("/{orderId}", controllers.DeleteOrder(ordersSvc, logg))
		})

		r.Route("/consolidated-orders", func(r chi.Router) {
			r.With(middleware.RequireCapability(middleware.CapConsolidationRun, logg)).Post("/run", controllers.RunConsolidation(consolidationSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapShipmentsRead, logg)).Get("/", controllers.ListConsolidatedOrders(consolidationSvc, logg))
			r.With(middleware.RequireCapability(middleware.CapShipmentsRead, logg)).Get("/{consolidatedOrderId}", controllers.GetConsolidatedOrder(consolidationSvc, logg))
		})

		r.Route("/exports", func(r chi.Router) {
			r.Use(middleware.RequireCapability(middleware.CapExportRead, logg))
			r.Get("/orders/{orderId}", controllers.ExportOrder(exportSvc, logg))
			r.Get("/consolidated-orders/{consolidatedOrderId}", controllers.ExportConsolidatedOrder(exportSvc, logg))
			r.Get("/product-sales", controllers.ExportProductSalesReport(exportSvc, logg))
		})
	})

	return r
}
