package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/enums"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
)

// stubGateway keeps a server-side cart in memory. Adds merge rows by
// product id the way the real gateway does.
type stubGateway struct {
	prices    map[string]string
	stock     map[string]string
	rows      []greenapi.CartRow
	fetches   int
	fetchHook func()
	err       error
}

func (s *stubGateway) FetchCart(ctx context.Context, userID string) (*greenapi.CartPayload, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.fetches++
	items := make([]greenapi.CartRow, len(s.rows))
	copy(items, s.rows)
	if s.fetchHook != nil {
		hook := s.fetchHook
		s.fetchHook = nil
		hook()
	}
	return &greenapi.CartPayload{Items: items}, nil
}

func (s *stubGateway) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	if s.err != nil {
		return s.err
	}
	for i, row := range s.rows {
		if row.Product.ID == productID {
			s.rows[i].Quantity += quantity
			return nil
		}
	}
	price, _ := decimal.NewFromString(s.prices[productID])
	status := s.stock[productID]
	if status == "" {
		status = string(enums.StockStatusInStock)
	}
	s.rows = append(s.rows, greenapi.CartRow{
		ID:       fmt.Sprintf("row-%s", productID),
		Quantity: quantity,
		Price:    price,
		Product: greenapi.ProductSummary{
			ID:          productID,
			Name:        "product " + productID,
			StockStatus: status,
		},
	})
	return nil
}

func (s *stubGateway) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	if s.err != nil {
		return s.err
	}
	for i, row := range s.rows {
		if row.Product.ID == productID {
			s.rows[i].Quantity = quantity
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "no such product")
}

func (s *stubGateway) RemoveCartItem(ctx context.Context, userID, cartItemID string) error {
	if s.err != nil {
		return s.err
	}
	for i, row := range s.rows {
		if row.ID == cartItemID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "no such cart row")
}

func (s *stubGateway) ClearCart(ctx context.Context, userID string) error {
	if s.err != nil {
		return s.err
	}
	s.rows = nil
	return nil
}

type stubValidator struct {
	coupon *coupons.Coupon
	err    error
}

func (s *stubValidator) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*coupons.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupon, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testEngine() *pricing.Engine {
	return pricing.NewEngine(config.PricingConfig{
		FreeShippingThreshold: "500",
		FlatShippingFee:       "50",
		TaxRate:               "0.08",
	})
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestManager(t *testing.T, gw gateway, validator couponValidator) *Manager {
	t.Helper()
	if validator == nil {
		validator = &stubValidator{}
	}
	m, err := NewManager("user-1", gw, testEngine(), validator, testLogger())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestLoadIsIdempotent(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100"}}
	m := newTestManager(t, gw, nil)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	first := m.Summary()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second := m.Summary()

	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Fatalf("repeated loads diverged: %+v vs %+v", first.Items, second.Items)
	}
}

func TestAddSameProductMergesRows(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100"}}
	m := newTestManager(t, gw, nil)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 1); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Add(ctx, "p1", 1); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	snap := m.Summary()
	if len(snap.Items) != 1 {
		t.Fatalf("rows = %d, want 1", len(snap.Items))
	}
	if snap.Count != 2 {
		t.Fatalf("count = %d, want 2", snap.Count)
	}
	if !snap.Items[0].UnitPrice.Equal(dec("100")) {
		t.Fatalf("unit price = %s, want the server's 100", snap.Items[0].UnitPrice)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	build := func() (*Manager, *stubGateway) {
		gw := &stubGateway{prices: map[string]string{"p1": "100", "p2": "30"}}
		m := newTestManager(t, gw, nil)
		if err := m.Add(ctx, "p1", 2); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := m.Add(ctx, "p2", 1); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		return m, gw
	}

	removed, _ := build()
	if err := removed.Remove(ctx, "row-p2"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	zeroed, _ := build()
	if err := zeroed.UpdateQuantity(ctx, "p2", 0); err != nil {
		t.Fatalf("UpdateQuantity(0) error = %v", err)
	}

	if !reflect.DeepEqual(removed.Summary().Items, zeroed.Summary().Items) {
		t.Fatalf("remove and zero-quantity update diverged:\n%+v\n%+v",
			removed.Summary().Items, zeroed.Summary().Items)
	}
}

func TestMutationFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100"}}
	m := newTestManager(t, gw, nil)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	before := m.Summary()

	gw.err = pkgerrors.New(pkgerrors.CodeGateway, "cart gateway is down")
	if err := m.UpdateQuantity(ctx, "p1", 5); !pkgerrors.IsCode(err, pkgerrors.CodeGateway) {
		t.Fatalf("UpdateQuantity() error = %v, want gateway error", err)
	}

	after := m.Summary()
	if !reflect.DeepEqual(before.Items, after.Items) {
		t.Fatalf("failed mutation changed state: %+v vs %+v", before.Items, after.Items)
	}
}

func TestClearResetsWithoutFetch(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100"}}
	m := newTestManager(t, gw, nil)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	fetchesBefore := gw.fetches

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if gw.fetches != fetchesBefore {
		t.Errorf("Clear() fetched the cart, want no reconciling fetch")
	}
	snap := m.Summary()
	if snap.Count != 0 || len(snap.Items) != 0 || snap.Coupon != nil {
		t.Errorf("Clear() left state behind: %+v", snap)
	}
	if !snap.Breakdown.Total.IsZero() {
		t.Errorf("total = %s, want 0", snap.Breakdown.Total)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100", "p2": "30"}}
	m := newTestManager(t, gw, nil)
	ctx := context.Background()

	if err := gw.AddCartItem(ctx, "user-1", "p1", 1); err != nil {
		t.Fatal(err)
	}

	// The first fetch observes the one-row cart, but before it lands a
	// newer load sees the two-row cart. The older response must not
	// clobber the newer state.
	gw.fetchHook = func() {
		if err := gw.AddCartItem(ctx, "user-1", "p2", 1); err != nil {
			t.Fatal(err)
		}
		if err := m.Load(ctx); err != nil {
			t.Fatalf("nested Load() error = %v", err)
		}
	}

	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	snap := m.Summary()
	if len(snap.Items) != 2 {
		t.Fatalf("rows = %d, want 2 from the newer load", len(snap.Items))
	}
}

func TestOutOfStockSeparatedFromPricing(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{
		prices: map[string]string{"p1": "100", "p2": "40"},
		stock:  map[string]string{"p2": string(enums.StockStatusOutOfStock)},
	}
	m := newTestManager(t, gw, nil)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Add(ctx, "p2", 1); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	snap := m.Summary()
	if len(snap.Items) != 1 || len(snap.Unavailable) != 1 {
		t.Fatalf("items = %d unavailable = %d, want 1 and 1", len(snap.Items), len(snap.Unavailable))
	}
	if snap.Count != 3 {
		t.Errorf("count = %d, want 3 including the unavailable row", snap.Count)
	}
	if !snap.Breakdown.Subtotal.Equal(dec("200")) {
		t.Errorf("subtotal = %s, want 200 excluding out-of-stock", snap.Breakdown.Subtotal)
	}
}

func TestApplyCouponReplacesPrevious(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100"}}
	validator := &stubValidator{coupon: &coupons.Coupon{
		Code:  "GREEN10",
		Type:  enums.DiscountTypePercentage,
		Value: dec("10"),
	}}
	m := newTestManager(t, gw, validator)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.ApplyCoupon(ctx, "GREEN10"); err != nil {
		t.Fatalf("ApplyCoupon() error = %v", err)
	}

	validator.coupon = &coupons.Coupon{Code: "FLAT40", Type: enums.DiscountTypeFixed, Value: dec("40")}
	if _, err := m.ApplyCoupon(ctx, "FLAT40"); err != nil {
		t.Fatalf("ApplyCoupon() error = %v", err)
	}

	snap := m.Summary()
	if snap.Coupon == nil || snap.Coupon.Code != "FLAT40" {
		t.Fatalf("coupon = %+v, want FLAT40 replacing GREEN10", snap.Coupon)
	}
	if !snap.Breakdown.Discount.Equal(dec("40")) {
		t.Errorf("discount = %s, want 40", snap.Breakdown.Discount)
	}
}

func TestApplyCouponValidationFailureKeepsState(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100"}}
	validator := &stubValidator{err: pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount not met")}
	m := newTestManager(t, gw, validator)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.ApplyCoupon(ctx, "BIG"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("ApplyCoupon() error = %v, want validation error", err)
	}
	if m.Summary().Coupon != nil {
		t.Fatal("rejected coupon was applied")
	}
}

func TestReloadDropsCouponBelowMinimum(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{prices: map[string]string{"p1": "100", "p2": "30"}}
	validator := &stubValidator{coupon: &coupons.Coupon{
		Code:        "GREEN10",
		Type:        enums.DiscountTypePercentage,
		Value:       dec("10"),
		MinOrderAmt: dec("150"),
	}}
	m := newTestManager(t, gw, validator)
	ctx := context.Background()

	if err := m.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.ApplyCoupon(ctx, "GREEN10"); err != nil {
		t.Fatalf("ApplyCoupon() error = %v", err)
	}

	// Dropping to one unit of p1 puts the subtotal at 100, below the
	// coupon's 150 minimum.
	if err := m.UpdateQuantity(ctx, "p1", 1); err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}

	snap := m.Summary()
	if snap.Coupon != nil {
		t.Fatalf("coupon = %+v, want dropped after subtotal fell below minimum", snap.Coupon)
	}
	if !snap.Breakdown.Discount.IsZero() {
		t.Errorf("discount = %s, want 0", snap.Breakdown.Discount)
	}
}

func TestLoadPropagatesGatewayError(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{err: errors.New("boom")}
	m := newTestManager(t, gw, nil)

	if err := m.Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want propagation")
	}
}
