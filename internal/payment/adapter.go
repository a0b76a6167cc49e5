package payment

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/pkg/config"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
)

var minorUnitFactor = decimal.NewFromInt(100)

// Prefill seeds the widget's contact fields from the shopper profile.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme carries the widget's brand color.
type Theme struct {
	Color string `json:"color"`
}

// WidgetOptions is the option object handed to the hosted checkout
// widget. Amount is in integer minor units (paise), everything else in
// the widget's own field names.
type WidgetOptions struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes"`
	Theme       Theme             `json:"theme"`
}

// Adapter bridges checkout to the hosted payment widget. It owns the
// one-time script readiness probe and builds widget options from a
// placed order.
type Adapter struct {
	cfg        config.RazorpayConfig
	httpClient *http.Client

	mu    sync.Mutex
	ready bool
}

// Option customizes the adapter.
type Option func(*Adapter)

// WithHTTPClient overrides the probe's HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// NewAdapter builds the payment adapter.
func NewAdapter(cfg config.RazorpayConfig, opts ...Option) (*Adapter, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret required")
	}
	if cfg.ScriptURL == "" {
		return nil, fmt.Errorf("razorpay script url required")
	}
	a := &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// EnsureReady probes the hosted checkout script once. A successful
// probe latches; repeat calls return immediately. A failed probe does
// not latch, so a later user-initiated attempt probes again.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.cfg.ScriptURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building script probe request")
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "payment gateway script is unreachable")
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return pkgerrors.New(pkgerrors.CodeGateway,
			fmt.Sprintf("payment gateway script probe failed with status %d", resp.StatusCode))
	}

	a.ready = true
	return nil
}

// Ready reports whether the script probe has succeeded.
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// WidgetOptions builds the widget option object for a placed order.
// The order's amount is the server's authoritative charge in currency
// units; it converts to minor units exactly or not at all.
func (a *Adapter) WidgetOptions(order *orders.Order, prefill Prefill) (*WidgetOptions, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order required to build widget options")
	}
	if order.RazorpayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order has no payment order handle")
	}
	amount, err := MinorUnits(order.Amount)
	if err != nil {
		return nil, err
	}
	currency := order.Currency
	if currency == "" {
		currency = a.cfg.Currency
	}
	return &WidgetOptions{
		Key:         a.cfg.KeyID,
		Amount:      amount,
		Currency:    currency,
		Name:        a.cfg.MerchantName,
		Description: a.cfg.Description,
		OrderID:     order.RazorpayOrderID,
		Prefill:     prefill,
		Notes:       map[string]string{"order_id": order.ID},
		Theme:       Theme{Color: a.cfg.ThemeColor},
	}, nil
}

// VerifyPayment checks a success callback's signature against the key
// secret. The signed payload is the gateway order id and payment id.
func (a *Adapter) VerifyPayment(result SuccessResult) bool {
	return VerifySignature(a.cfg.KeySecret, result.RazorpayOrderID, result.RazorpayPaymentID, result.Signature)
}

// MinorUnits converts a currency-unit amount to integer minor units.
// Amounts with sub-paise precision are rejected rather than silently
// rounded; the charge must match the server's amount exactly.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	minor := amount.Mul(minorUnitFactor)
	if !minor.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount %s does not convert exactly to minor units", amount))
	}
	return minor.IntPart(), nil
}
