package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/greenora/storefront/api/middleware"
	"github.com/greenora/storefront/api/routes"
	"github.com/greenora/storefront/internal/address"
	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/email"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/internal/shopper"
	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
	"github.com/greenora/storefront/pkg/metrics"
	"github.com/greenora/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var redisClient *redis.Client
	var couponCache coupons.Cache
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		requireResource(context.Background(), logg, "redis", err)
		couponCache = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, coupon cache disabled")
	}

	// The shopper's bearer token travels through to the backend so the
	// backend enforces its own authorization.
	backendClient, err := greenapi.NewClient(cfg.Backend.BaseURL,
		greenapi.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
		greenapi.WithTokenSource(func(ctx context.Context) string {
			return middleware.RawTokenFromContext(ctx)
		}),
	)
	requireResource(context.Background(), logg, "backend client", err)

	couponService, err := coupons.NewService(backendClient, couponCache, cfg.Coupons, logg)
	requireResource(context.Background(), logg, "coupon service", err)

	addressService, err := address.NewService(backendClient)
	requireResource(context.Background(), logg, "address service", err)

	orderService, err := orders.NewService(backendClient)
	requireResource(context.Background(), logg, "order service", err)

	paymentAdapter, err := payment.NewAdapter(cfg.Razorpay)
	requireResource(context.Background(), logg, "payment adapter", err)

	notifier, err := email.NewNotifier(backendClient, logg)
	requireResource(context.Background(), logg, "email notifier", err)

	hub, err := shopper.NewHub(shopper.Deps{
		Gateway:   backendClient,
		Pricer:    pricing.NewEngine(cfg.Pricing),
		Coupons:   couponService,
		Addresses: addressService,
		Orders:    orderService,
		Adapter:   paymentAdapter,
		Notifier:  notifier,
		Log:       logg,
	})
	requireResource(context.Background(), logg, "shopper hub", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting storefront server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, hub, couponService, orderService, httpMetrics, registry),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(runCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var teardown error
	if err := server.Shutdown(shutdownCtx); err != nil {
		teardown = multierr.Append(teardown, fmt.Errorf("shutting down server: %w", err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			teardown = multierr.Append(teardown, fmt.Errorf("closing redis: %w", err))
		}
	}
	if teardown != nil {
		logg.Error(runCtx, "teardown finished with errors", teardown)
		os.Exit(1)
	}
	logg.Info(runCtx, "storefront server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
