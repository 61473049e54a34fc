package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lunamercado/storefront-gateway/api/controllers"
	"github.com/lunamercado/storefront-gateway/api/middleware"
	addresssvc "github.com/lunamercado/storefront-gateway/internal/address"
	checkoutsvc "github.com/lunamercado/storefront-gateway/internal/checkout"
	"github.com/lunamercado/storefront-gateway/pkg/config"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
	"github.com/lunamercado/storefront-gateway/pkg/redis"
)

// NewRouter wires the gateway's HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisPinger redis.Pinger,
	gatherer prometheus.Gatherer,
	checkoutService checkoutsvc.Service,
	addressService addresssvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisPinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StorefrontSession(logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/{sessionID}", controllers.CheckoutLoad(checkoutService, logg))
			r.Post("/discounts", controllers.CheckoutDiscounts(checkoutService, logg))
			r.Post("/discounts/apply", controllers.CheckoutApplyDiscount(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
		})

		r.Get("/addresses", controllers.AddressList(addressService, logg))
	})

	return r
}
