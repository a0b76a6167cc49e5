package checkout

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/internal/address"
	"github.com/greenora/storefront/internal/cart"
	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/enums"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
	"github.com/greenora/storefront/pkg/types"
)

// cartStub backs a real cart manager with a fixed server-side cart.
type cartStub struct {
	rows    []greenapi.CartRow
	cleared bool
}

func (s *cartStub) FetchCart(ctx context.Context, userID string) (*greenapi.CartPayload, error) {
	items := make([]greenapi.CartRow, len(s.rows))
	copy(items, s.rows)
	return &greenapi.CartPayload{Items: items}, nil
}

func (s *cartStub) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	return nil
}

func (s *cartStub) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	return nil
}

func (s *cartStub) RemoveCartItem(ctx context.Context, userID, cartItemID string) error {
	return nil
}

func (s *cartStub) ClearCart(ctx context.Context, userID string) error {
	s.cleared = true
	s.rows = nil
	return nil
}

type validatorStub struct{}

func (validatorStub) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*coupons.Coupon, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown coupon")
}

type addressStub struct {
	stored *types.Address
	err    error
}

func (s *addressStub) Get(ctx context.Context, addressID string) (*types.Address, error) {
	if addressID == "" {
		return nil, nil
	}
	return s.stored, s.err
}

func (s *addressStub) Save(ctx context.Context, userID, addressID string, input address.Input) (*types.Address, error) {
	saved := types.Address{
		ID:      "addr-1",
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Pincode: input.Pincode,
		Country: input.Country,
	}
	s.stored = &saved
	return &saved, nil
}

type ordersStub struct {
	placed     int
	placeErr   error
	amount     decimal.Decimal
	lastCoupon string
	fetched    map[string]*orders.Order
}

func (s *ordersStub) Place(ctx context.Context, userID, addressID, couponID string) (*orders.Order, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	s.placed++
	s.lastCoupon = couponID
	id := fmt.Sprintf("ord-%d", s.placed)
	order := &orders.Order{
		ID:              id,
		Amount:          s.amount,
		Currency:        "INR",
		RazorpayOrderID: "rzp-" + id,
		TotalAmt:        s.amount,
		DeliveryStatus:  enums.DeliveryStatusPending,
	}
	if s.fetched == nil {
		s.fetched = map[string]*orders.Order{}
	}
	s.fetched[id] = order
	return order, nil
}

func (s *ordersStub) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	order, ok := s.fetched[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no such order")
	}
	return order, nil
}

func (s *ordersStub) List(ctx context.Context, userID string) ([]orders.Order, error) {
	return nil, nil
}

type adapterStub struct {
	readyErr  error
	verifies  bool
	readied   int
	optionsAt int
}

func (a *adapterStub) EnsureReady(ctx context.Context) error {
	a.readied++
	return a.readyErr
}

func (a *adapterStub) WidgetOptions(order *orders.Order, prefill payment.Prefill) (*payment.WidgetOptions, error) {
	a.optionsAt++
	amount, err := payment.MinorUnits(order.Amount)
	if err != nil {
		return nil, err
	}
	return &payment.WidgetOptions{
		Key:     "rzp_test_key",
		Amount:  amount,
		OrderID: order.RazorpayOrderID,
		Prefill: prefill,
	}, nil
}

func (a *adapterStub) VerifyPayment(result payment.SuccessResult) bool {
	return a.verifies
}

type notifierStub struct {
	sent []string
}

func (n *notifierStub) SendConfirmation(ctx context.Context, to string, amount decimal.Decimal) {
	n.sent = append(n.sent, to)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type fixture struct {
	orch     *Orchestrator
	cart     *cartStub
	orders   *ordersStub
	adapter  *adapterStub
	notifier *notifierStub
	address  *addressStub
}

func row(productID, price string, qty int) greenapi.CartRow {
	return greenapi.CartRow{
		ID:       "row-" + productID,
		Quantity: qty,
		Price:    decimal.RequireFromString(price),
		Product: greenapi.ProductSummary{
			ID:          productID,
			Name:        "product " + productID,
			StockStatus: string(enums.StockStatusInStock),
		},
	}
}

func newFixture(t *testing.T, rows []greenapi.CartRow, hasAddress bool) *fixture {
	t.Helper()

	cartBackend := &cartStub{rows: rows}
	engine := pricing.NewEngine(config.PricingConfig{
		FreeShippingThreshold: "500",
		FlatShippingFee:       "50",
		TaxRate:               "0.08",
	})
	manager, err := cart.NewManager("user-1", cartBackend, engine, validatorStub{}, testLogger())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := manager.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	shopper := Shopper{UserID: "user-1", Name: "Asha", Email: "asha@example.com", Phone: "9999999999"}
	addresses := &addressStub{}
	if hasAddress {
		shopper.AddressID = "addr-1"
		addresses.stored = &types.Address{ID: "addr-1", Street: "12 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001", Country: "India"}
	}

	orderSvc := &ordersStub{amount: decimal.RequireFromString("266")}
	adapter := &adapterStub{verifies: true}
	notifier := &notifierStub{}

	orch, err := NewOrchestrator(shopper, manager, addresses, orderSvc, adapter, notifier, testLogger())
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	return &fixture{orch: orch, cart: cartBackend, orders: orderSvc, adapter: adapter, notifier: notifier, address: addresses}
}

func standardRows() []greenapi.CartRow {
	return []greenapi.CartRow{row("p1", "100", 2)}
}

func TestEnterPaymentRequiresAddress(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), false)
	_, err := f.orch.EnterPayment(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodePrecondition) {
		t.Fatalf("EnterPayment() error = %v, want precondition", err)
	}
	if f.orch.State().Step != enums.CheckoutStepAddress {
		t.Errorf("step = %s, want ADDRESS", f.orch.State().Step)
	}
}

func TestEnterAddressWithEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, true)
	_, err := f.orch.EnterAddress(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodePrecondition) {
		t.Fatalf("EnterAddress() error = %v, want precondition", err)
	}
}

func TestSaveAddressRemembersAssignedID(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), false)
	saved, err := f.orch.SaveAddress(context.Background(), address.Input{
		Street: "12 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001", Country: "India",
	})
	if err != nil {
		t.Fatalf("SaveAddress() error = %v", err)
	}
	if saved.ID != "addr-1" {
		t.Fatalf("saved id = %q", saved.ID)
	}

	// Payment must now find the address through the remembered id.
	if _, err := f.orch.EnterPayment(context.Background()); err != nil {
		t.Fatalf("EnterPayment() after save error = %v", err)
	}
}

func TestPayPlacesOrderBeforeWidget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	intent, err := f.orch.Pay(context.Background())
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if f.orders.placed != 1 {
		t.Fatalf("orders placed = %d, want 1", f.orders.placed)
	}
	if intent.Options.OrderID != intent.Order.RazorpayOrderID {
		t.Errorf("widget order id %q does not match placed order %q", intent.Options.OrderID, intent.Order.RazorpayOrderID)
	}
	if intent.Options.Amount != 26600 {
		t.Errorf("widget amount = %d, want 26600 paise", intent.Options.Amount)
	}
	if !f.orch.State().Processing {
		t.Error("processing flag not set during payment attempt")
	}
}

func TestPayPlacementFailureAbortsBeforeWidget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	f.orders.placeErr = pkgerrors.New(pkgerrors.CodeGateway, "orders backend down")

	_, err := f.orch.Pay(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeGateway) {
		t.Fatalf("Pay() error = %v, want gateway error", err)
	}
	if f.adapter.optionsAt != 0 {
		t.Error("widget options built despite placement failure")
	}
	state := f.orch.State()
	if state.Step != enums.CheckoutStepPayment || state.Processing {
		t.Errorf("state = %+v, want PAYMENT and not processing for retry", state)
	}
}

func TestPayRejectsConcurrentAttempt(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	if _, err := f.orch.Pay(context.Background()); err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if _, err := f.orch.Pay(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("second Pay() error = %v, want conflict", err)
	}
}

func TestCompletePaymentHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	intent, err := f.orch.Pay(context.Background())
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	order, err := f.orch.CompletePayment(context.Background(), payment.SuccessResult{
		RazorpayOrderID:   intent.Order.RazorpayOrderID,
		RazorpayPaymentID: "pay-1",
		Signature:         "sig",
	})
	if err != nil {
		t.Fatalf("CompletePayment() error = %v", err)
	}

	if order.ID != intent.Order.ID {
		t.Errorf("confirmed order = %q, want %q", order.ID, intent.Order.ID)
	}
	if !f.cart.cleared {
		t.Error("cart not cleared after successful payment")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0] != "asha@example.com" {
		t.Errorf("confirmation emails = %v", f.notifier.sent)
	}
	state := f.orch.State()
	if state.Step != enums.CheckoutStepConfirmation || state.Processing || state.ConfirmedOrderID != order.ID {
		t.Errorf("state = %+v, want confirmed", state)
	}

	if _, err := f.orch.Confirmation(context.Background()); err != nil {
		t.Errorf("Confirmation() error = %v", err)
	}
}

func TestCompletePaymentRejectsBadSignature(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	intent, err := f.orch.Pay(context.Background())
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	f.adapter.verifies = false
	_, err = f.orch.CompletePayment(context.Background(), payment.SuccessResult{
		RazorpayOrderID:   intent.Order.RazorpayOrderID,
		RazorpayPaymentID: "pay-1",
		Signature:         "forged",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("CompletePayment() error = %v, want validation error", err)
	}
	if f.cart.cleared {
		t.Error("cart cleared on forged signature")
	}
	if f.orch.State().Step != enums.CheckoutStepPayment {
		t.Errorf("step = %s, want PAYMENT for retry", f.orch.State().Step)
	}
}

func TestCompletePaymentRejectsMismatchedOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	if _, err := f.orch.Pay(context.Background()); err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	_, err := f.orch.CompletePayment(context.Background(), payment.SuccessResult{
		RazorpayOrderID:   "rzp-someone-elses",
		RazorpayPaymentID: "pay-1",
		Signature:         "sig",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("CompletePayment() error = %v, want validation error", err)
	}
}

func TestDismissLeavesPaymentRetryable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	if _, err := f.orch.Pay(context.Background()); err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if err := f.orch.DismissPayment(context.Background()); err != nil {
		t.Fatalf("DismissPayment() error = %v", err)
	}

	state := f.orch.State()
	if state.Step != enums.CheckoutStepPayment {
		t.Errorf("step = %s, want PAYMENT", state.Step)
	}
	if state.Processing {
		t.Error("processing flag not reset after dismiss")
	}
	if f.cart.cleared {
		t.Error("cart cleared on dismissal")
	}

	// A fresh attempt must be possible and place a new order.
	if _, err := f.orch.Pay(context.Background()); err != nil {
		t.Fatalf("retry Pay() error = %v", err)
	}
	if f.orders.placed != 2 {
		t.Errorf("orders placed = %d, want 2", f.orders.placed)
	}
}

func TestDismissWithoutAttempt(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	if err := f.orch.DismissPayment(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("DismissPayment() error = %v, want conflict", err)
	}
}

func TestConfirmationWithoutOrderRedirects(t *testing.T) {
	t.Parallel()

	f := newFixture(t, standardRows(), true)
	if _, err := f.orch.Confirmation(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodePrecondition) {
		t.Fatalf("Confirmation() error = %v, want precondition", err)
	}
}
