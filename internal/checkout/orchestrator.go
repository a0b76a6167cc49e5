package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/internal/address"
	"github.com/greenora/storefront/internal/cart"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/pkg/enums"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/logger"
	"github.com/greenora/storefront/pkg/types"
)

// Shopper identifies the authenticated user driving the checkout.
// AddressID is the id held on the profile, empty when no address
// exists yet.
type Shopper struct {
	UserID    string
	Name      string
	Email     string
	Phone     string
	AddressID string
}

// State is a read of where the checkout currently stands.
type State struct {
	Step             enums.CheckoutStep
	Processing       bool
	ConfirmedOrderID string
}

// PayIntent is everything the caller needs to open the payment widget
// for a placed order.
type PayIntent struct {
	Order   *orders.Order
	Options *payment.WidgetOptions
}

type adapter interface {
	EnsureReady(ctx context.Context) error
	WidgetOptions(order *orders.Order, prefill payment.Prefill) (*payment.WidgetOptions, error)
	VerifyPayment(result payment.SuccessResult) bool
}

type notifier interface {
	SendConfirmation(ctx context.Context, to string, amount decimal.Decimal)
}

// Orchestrator drives one shopper's address, payment and confirmation
// sequence. Progression is linear; address and payment may be
// revisited by explicit navigation without resetting collected state.
type Orchestrator struct {
	shopper   Shopper
	cart      *cart.Manager
	addresses address.Service
	orders    orders.Service
	adapter   adapter
	notifier  notifier
	log       *logger.Logger

	mu        sync.Mutex
	step      enums.CheckoutStep
	process   bool
	pending   *orders.Order
	handshake *payment.Handshake
	confirmed string
}

// NewOrchestrator builds the checkout orchestrator for one shopper.
func NewOrchestrator(
	shopper Shopper,
	cartManager *cart.Manager,
	addresses address.Service,
	orderSvc orders.Service,
	adapter adapter,
	notifier notifier,
	log *logger.Logger,
) (*Orchestrator, error) {
	if shopper.UserID == "" {
		return nil, fmt.Errorf("shopper user id required")
	}
	if cartManager == nil {
		return nil, fmt.Errorf("cart manager required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if adapter == nil {
		return nil, fmt.Errorf("payment adapter required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		shopper:   shopper,
		cart:      cartManager,
		addresses: addresses,
		orders:    orderSvc,
		adapter:   adapter,
		notifier:  notifier,
		log:       log,
		step:      enums.CheckoutStepAddress,
	}, nil
}

// State returns the current checkout position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{Step: o.step, Processing: o.process, ConfirmedOrderID: o.confirmed}
}

// EnterAddress opens the address step and returns the stored address,
// nil when the shopper has none yet. Checkout with an empty cart is a
// precondition failure that routes back to the cart.
func (o *Orchestrator) EnterAddress(ctx context.Context) (*types.Address, error) {
	if err := o.requireNonEmptyCart(); err != nil {
		return nil, err
	}
	addr, err := o.addresses.Get(ctx, o.addressID())
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.step == enums.CheckoutStepPayment {
		// Explicit backward navigation keeps collected state.
		o.step = enums.CheckoutStepAddress
	}
	o.mu.Unlock()
	return addr, nil
}

// SaveAddress stores the address form and remembers the assigned id on
// the shopper.
func (o *Orchestrator) SaveAddress(ctx context.Context, input address.Input) (*types.Address, error) {
	saved, err := o.addresses.Save(ctx, o.shopper.UserID, o.addressID(), input)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.shopper.AddressID = saved.ID
	o.mu.Unlock()
	return saved, nil
}

// EnterPayment advances to the payment step. Preconditions: the cart
// has in-stock items, an address exists, and the widget script is
// reachable.
func (o *Orchestrator) EnterPayment(ctx context.Context) (cart.Snapshot, error) {
	snapshot := o.cart.Summary()
	if len(snapshot.Items) == 0 {
		return cart.Snapshot{}, redirect(enums.CheckoutStepAddress, "cart is empty", "/storefront/cart")
	}

	addr, err := o.addresses.Get(ctx, o.addressID())
	if err != nil {
		return cart.Snapshot{}, err
	}
	if addr == nil {
		return cart.Snapshot{}, redirect(enums.CheckoutStepAddress, "delivery address required before payment", "/storefront/checkout/address")
	}
	if err := o.adapter.EnsureReady(ctx); err != nil {
		return cart.Snapshot{}, err
	}

	o.mu.Lock()
	o.step = enums.CheckoutStepPayment
	o.mu.Unlock()
	return snapshot, nil
}

// Pay places the order and builds the widget options. The order is
// placed before any widget state exists so a placement failure aborts
// cleanly with no payment attempt. On failure the step stays at
// payment and the shopper may retry.
func (o *Orchestrator) Pay(ctx context.Context) (*PayIntent, error) {
	snapshot, err := o.EnterPayment(ctx)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.process {
		o.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment attempt is already in progress")
	}
	o.process = true
	o.mu.Unlock()

	couponID := ""
	if snapshot.Coupon != nil {
		couponID = snapshot.Coupon.ID
	}

	order, err := o.orders.Place(ctx, o.shopper.UserID, o.addressID(), couponID)
	if err != nil {
		o.resetProcessing()
		return nil, err
	}

	// The server's amount is authoritative. A divergence from the local
	// breakdown is a display bug worth a log line, never a block.
	if !order.Amount.Equal(snapshot.Breakdown.Total) {
		o.log.Warn(ctx, fmt.Sprintf("order %s amount %s differs from local total %s",
			order.ID, order.Amount.StringFixed(2), snapshot.Breakdown.Total.StringFixed(2)))
	}

	options, err := o.adapter.WidgetOptions(order, payment.Prefill{
		Name:    o.shopper.Name,
		Email:   o.shopper.Email,
		Contact: o.shopper.Phone,
	})
	if err != nil {
		o.resetProcessing()
		return nil, err
	}

	o.mu.Lock()
	o.pending = order
	o.handshake = payment.NewHandshake()
	o.mu.Unlock()
	return &PayIntent{Order: order, Options: options}, nil
}

// CompletePayment handles the widget's success callback: verify the
// signature, clear the cart, fire the best-effort confirmation email
// and land on confirmation with the order read back fresh.
func (o *Orchestrator) CompletePayment(ctx context.Context, result payment.SuccessResult) (*orders.Order, error) {
	o.mu.Lock()
	pending, handshake := o.pending, o.handshake
	o.mu.Unlock()
	if pending == nil || handshake == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "no payment attempt in progress")
	}
	if result.RazorpayOrderID != pending.RazorpayOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment does not match the pending order")
	}
	if !o.adapter.VerifyPayment(result) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment signature verification failed")
	}
	if !handshake.Succeed() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment attempt already settled")
	}

	if err := o.cart.Clear(ctx); err != nil {
		// The payment went through; the stale cart is an annoyance the
		// next load reconciles, not a reason to fail the confirmation.
		o.log.Error(ctx, "clearing cart after payment", err)
	}
	o.notifier.SendConfirmation(ctx, o.shopper.Email, pending.Amount)

	fresh, err := o.orders.Get(ctx, pending.ID)
	if err != nil {
		o.log.Error(ctx, "reloading order after payment", err)
		fresh = pending
	}

	o.mu.Lock()
	o.step = enums.CheckoutStepConfirmation
	o.confirmed = fresh.ID
	o.process = false
	o.pending = nil
	o.handshake = nil
	o.mu.Unlock()
	return fresh, nil
}

// DismissPayment handles the widget's dismiss callback. Abandoning the
// widget is not an error: the processing flag resets so the shopper
// can retry, the cart stays untouched and the already-placed order is
// left to server-side reconciliation.
func (o *Orchestrator) DismissPayment(ctx context.Context) error {
	o.mu.Lock()
	handshake := o.handshake
	o.mu.Unlock()
	if handshake == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "no payment attempt in progress")
	}
	if !handshake.Dismiss() {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment attempt already settled")
	}

	o.log.Info(ctx, "payment widget dismissed by shopper")
	o.mu.Lock()
	o.process = false
	o.pending = nil
	o.handshake = nil
	o.mu.Unlock()
	return nil
}

// Confirmation returns the confirmed order, read fresh so totals and
// delivery status are the server's, never pre-payment memory.
func (o *Orchestrator) Confirmation(ctx context.Context) (*orders.Order, error) {
	o.mu.Lock()
	step, confirmed := o.step, o.confirmed
	o.mu.Unlock()
	if step != enums.CheckoutStepConfirmation || confirmed == "" {
		return nil, redirect(enums.CheckoutStepAddress, "no confirmed order", "/storefront/checkout/address")
	}
	return o.orders.Get(ctx, confirmed)
}

func (o *Orchestrator) addressID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shopper.AddressID
}

func (o *Orchestrator) resetProcessing() {
	o.mu.Lock()
	o.process = false
	o.mu.Unlock()
}

func (o *Orchestrator) requireNonEmptyCart() error {
	snapshot := o.cart.Summary()
	if len(snapshot.Items) == 0 {
		return redirect(enums.CheckoutStepAddress, "cart is empty", "/storefront/cart")
	}
	return nil
}

// redirect builds the precondition error that routes the shopper to
// the step resolving it instead of showing a raw failure.
func redirect(step enums.CheckoutStep, message, location string) error {
	return pkgerrors.New(pkgerrors.CodePrecondition, message).
		WithDetails(map[string]any{"redirect": location, "step": string(step)})
}
