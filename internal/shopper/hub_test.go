package shopper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenora/storefront/internal/address"
	"github.com/greenora/storefront/internal/checkout"
	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/email"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestHub(t *testing.T) (*Hub, *int) {
	t.Helper()

	var cartFetches int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			cartFetches++
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"row-p1","quantity":2,"price":"100","product":{"id":"p1","name":"Basil","stockStatus":"IN_STOCK"}}]}`))
	}))
	t.Cleanup(backend.Close)

	client, err := greenapi.NewClient(backend.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	log := testLogger()
	pricer := pricing.NewEngine(config.PricingConfig{
		FreeShippingThreshold: "500",
		FlatShippingFee:       "50",
		TaxRate:               "0.08",
	})
	couponSvc, err := coupons.NewService(client, nil, config.CouponsConfig{ActiveCacheTTL: time.Minute}, log)
	if err != nil {
		t.Fatalf("coupons.NewService() error = %v", err)
	}
	addressSvc, err := address.NewService(client)
	if err != nil {
		t.Fatalf("address.NewService() error = %v", err)
	}
	orderSvc, err := orders.NewService(client)
	if err != nil {
		t.Fatalf("orders.NewService() error = %v", err)
	}
	adapter, err := payment.NewAdapter(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		ScriptURL: backend.URL,
	})
	if err != nil {
		t.Fatalf("payment.NewAdapter() error = %v", err)
	}
	notifier, err := email.NewNotifier(client, log)
	if err != nil {
		t.Fatalf("email.NewNotifier() error = %v", err)
	}

	hub, err := NewHub(Deps{
		Gateway:   client,
		Pricer:    pricer,
		Coupons:   couponSvc,
		Addresses: addressSvc,
		Orders:    orderSvc,
		Adapter:   adapter,
		Notifier:  notifier,
		Log:       log,
	})
	if err != nil {
		t.Fatalf("NewHub() error = %v", err)
	}
	return hub, &cartFetches
}

func TestSessionIsReusedPerUser(t *testing.T) {
	t.Parallel()

	hub, fetches := newTestHub(t)
	ctx := context.Background()
	sh := checkout.Shopper{UserID: "user-1", Email: "asha@example.com"}

	first, err := hub.Session(ctx, sh)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	second, err := hub.Session(ctx, sh)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}

	if first != second {
		t.Fatal("same user got two sessions")
	}
	if *fetches != 1 {
		t.Errorf("cart fetches = %d, want the initial load only", *fetches)
	}
	if got := first.Cart.Summary().Count; got != 2 {
		t.Errorf("count = %d, want 2 from the initial load", got)
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	t.Parallel()

	hub, _ := newTestHub(t)
	ctx := context.Background()

	a, err := hub.Session(ctx, checkout.Shopper{UserID: "user-a"})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	b, err := hub.Session(ctx, checkout.Shopper{UserID: "user-b"})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if a == b || a.Cart == b.Cart {
		t.Fatal("different users share session state")
	}
	if hub.Len() != 2 {
		t.Errorf("live sessions = %d, want 2", hub.Len())
	}
}

func TestEndDropsSession(t *testing.T) {
	t.Parallel()

	hub, _ := newTestHub(t)
	ctx := context.Background()
	sh := checkout.Shopper{UserID: "user-1"}

	first, err := hub.Session(ctx, sh)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	hub.End("user-1")
	if hub.Len() != 0 {
		t.Fatalf("live sessions = %d after End, want 0", hub.Len())
	}

	fresh, err := hub.Session(ctx, sh)
	if err != nil {
		t.Fatalf("Session() after End error = %v", err)
	}
	if fresh == first {
		t.Fatal("ended session was resurrected")
	}
}
