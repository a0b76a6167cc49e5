package routes

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenora/storefront/api/controllers"
	storefrontcontrollers "github.com/greenora/storefront/api/controllers/storefront"
	"github.com/greenora/storefront/api/middleware"
	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/shopper"
	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/logger"
	"github.com/greenora/storefront/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	hub *shopper.Hub,
	couponService coupons.Service,
	orderService orders.Service,
	httpMetrics *metrics.HTTPMetrics,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Get("/healthz", controllers.Healthz(cfg))
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/storefront", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", storefrontcontrollers.CartFetch(hub, logg))
			r.Post("/items", storefrontcontrollers.CartAddItem(hub, logg))
			r.Put("/items", storefrontcontrollers.CartUpdateItem(hub, logg))
			r.Delete("/items/{cartItemId}", storefrontcontrollers.CartRemoveItem(hub, logg))
			r.Post("/coupon", storefrontcontrollers.CartApplyCoupon(hub, logg))
			r.Delete("/coupon", storefrontcontrollers.CartRemoveCoupon(hub, logg))
		})

		r.Get("/coupons", storefrontcontrollers.CouponsActive(couponService, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", storefrontcontrollers.CheckoutStatus(hub, logg))
			r.Post("/address", storefrontcontrollers.CheckoutSaveAddress(hub, logg))
			r.Post("/pay", storefrontcontrollers.CheckoutPay(hub, logg))
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/callback", storefrontcontrollers.PaymentCallback(hub, logg))
			r.Post("/dismiss", storefrontcontrollers.PaymentDismiss(hub, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", storefrontcontrollers.OrdersList(orderService, logg))
			r.Get("/{orderId}", storefrontcontrollers.OrdersGet(orderService, logg))
		})

		r.Post("/session/logout", storefrontcontrollers.SessionLogout(hub, logg))
	})

	return r
}
