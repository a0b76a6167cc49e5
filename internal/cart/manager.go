package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/pkg/enums"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
)

// organicEcoRating is the eco rating at or above which a product is
// shown with the organic badge.
const organicEcoRating = 4

type gateway interface {
	FetchCart(ctx context.Context, userID string) (*greenapi.CartPayload, error)
	AddCartItem(ctx context.Context, userID, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, cartItemID string) error
	ClearCart(ctx context.Context, userID string) error
}

type couponValidator interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*coupons.Coupon, error)
}

// LineItem is one product quantity in the cart, projected from the
// gateway's row. CartItemID identifies the server-side row; ProductID
// identifies the product. Removals go by CartItemID.
type LineItem struct {
	CartItemID    string            `json:"cartItemId"`
	ProductID     string            `json:"productId"`
	Name          string            `json:"name"`
	Image         string            `json:"image"`
	Category      string            `json:"category"`
	EcoRating     float64           `json:"ecoRating"`
	StockStatus   enums.StockStatus `json:"stockStatus"`
	UnitPrice     decimal.Decimal   `json:"unitPrice"`
	OriginalPrice decimal.Decimal   `json:"originalPrice"`
	Quantity      int               `json:"quantity"`
}

// InStock reports whether the item participates in pricing. Anything
// not explicitly out of stock counts as purchasable.
func (li LineItem) InStock() bool {
	return li.StockStatus != enums.StockStatusOutOfStock
}

// Organic reports whether the item earns the organic badge.
func (li LineItem) Organic() bool {
	return li.EcoRating >= organicEcoRating
}

// Snapshot is a consistent read of the cart state plus its price
// breakdown. Items preserves the gateway's row order; Unavailable
// holds the out-of-stock rows separated for display.
type Snapshot struct {
	Items       []LineItem
	Unavailable []LineItem
	Count       int
	Coupon      *coupons.Coupon
	Breakdown   pricing.Breakdown
}

// Manager owns the in-memory cart of a single shopper. The local
// state is a projection of the last successful gateway fetch; every
// mutation is confirmed by the gateway and then reconciled by a full
// reload rather than patched locally.
type Manager struct {
	userID  string
	gateway gateway
	pricer  *pricing.Engine
	coupons couponValidator
	log     *logger.Logger

	mu         sync.Mutex
	items      []LineItem
	coupon     *coupons.Coupon
	generation uint64
}

// NewManager builds the cart manager for one user.
func NewManager(userID string, gw gateway, pricer *pricing.Engine, validator couponValidator, log *logger.Logger) (*Manager, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if gw == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if validator == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Manager{
		userID:  userID,
		gateway: gw,
		pricer:  pricer,
		coupons: validator,
		log:     log,
	}, nil
}

// Load fetches the authoritative cart and replaces the local state
// wholesale. Safe to call repeatedly; a load that was superseded by a
// newer one discards its response instead of clobbering fresher state.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	payload, err := m.gateway.FetchCart(ctx, m.userID)
	if err != nil {
		return err
	}

	items := make([]LineItem, 0, len(payload.Items))
	for _, row := range payload.Items {
		items = append(items, fromRow(row))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.log.Info(ctx, "discarding stale cart load")
		return nil
	}
	m.items = items
	m.revalidateCouponLocked(ctx)
	return nil
}

// Add requests a gateway add and reloads to absorb the server-computed
// price and stock fields. A locally fabricated price is never trusted.
func (m *Manager) Add(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		quantity = 1
	}
	if err := m.gateway.AddCartItem(ctx, m.userID, productID, quantity); err != nil {
		return err
	}
	return m.Load(ctx)
}

// UpdateQuantity sets a product's quantity. A target of zero or below
// removes the row instead; a zero-quantity row is never kept.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		item, ok := m.findByProduct(productID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		return m.Remove(ctx, item.CartItemID)
	}
	if err := m.gateway.UpdateCartItem(ctx, m.userID, productID, quantity); err != nil {
		return err
	}
	return m.Load(ctx)
}

// Remove deletes one cart row by its row identifier and drops it
// locally only after the gateway confirmed.
func (m *Manager) Remove(ctx context.Context, cartItemID string) error {
	if cartItemID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	if err := m.gateway.RemoveCartItem(ctx, m.userID, cartItemID); err != nil {
		return err
	}
	return m.Load(ctx)
}

// Clear empties the gateway-side cart and resets the local state
// without a reconciling fetch; nothing remains to reconcile. Used
// after a successful payment.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.gateway.ClearCart(ctx, m.userID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.items = nil
	m.coupon = nil
	return nil
}

// ApplyCoupon validates the code against the current in-stock subtotal
// and applies it, replacing any previously applied coupon.
func (m *Manager) ApplyCoupon(ctx context.Context, code string) (*coupons.Coupon, error) {
	snapshot := m.Summary()
	coupon, err := m.coupons.Validate(ctx, code, snapshot.Breakdown.Subtotal)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.coupon = coupon
	m.mu.Unlock()
	return coupon, nil
}

// RemoveCoupon drops the applied coupon, if any.
func (m *Manager) RemoveCoupon() {
	m.mu.Lock()
	m.coupon = nil
	m.mu.Unlock()
}

// Summary returns a consistent snapshot of the cart with its price
// breakdown computed over the in-stock rows only.
func (m *Manager) Summary() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

func (m *Manager) summaryLocked() Snapshot {
	snapshot := Snapshot{Coupon: m.coupon}
	var lines []pricing.Line
	for _, item := range m.items {
		snapshot.Count += item.Quantity
		if item.InStock() {
			snapshot.Items = append(snapshot.Items, item)
			lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
		} else {
			snapshot.Unavailable = append(snapshot.Unavailable, item)
		}
	}

	var coupon *pricing.Coupon
	if m.coupon != nil {
		coupon = &pricing.Coupon{Type: m.coupon.Type, Value: m.coupon.Value}
	}
	snapshot.Breakdown = m.pricer.Compute(lines, coupon)
	return snapshot
}

// revalidateCouponLocked drops the applied coupon when the reloaded
// subtotal no longer meets its minimum order amount. The drop is
// silent apart from a log line; pricing simply stops including it.
func (m *Manager) revalidateCouponLocked(ctx context.Context) {
	if m.coupon == nil {
		return
	}
	subtotal := decimal.Zero
	for _, item := range m.items {
		if item.InStock() {
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if !m.coupon.AppliesTo(subtotal) {
		m.log.Warn(ctx, fmt.Sprintf("dropping coupon %s, subtotal %s fell below its minimum %s",
			m.coupon.Code, subtotal.StringFixed(2), m.coupon.MinOrderAmt.StringFixed(2)))
		m.coupon = nil
	}
}

func (m *Manager) findByProduct(productID string) (LineItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

func fromRow(row greenapi.CartRow) LineItem {
	status, err := enums.ParseStockStatus(row.Product.StockStatus)
	if err != nil {
		status = enums.StockStatusInStock
	}
	return LineItem{
		CartItemID:    row.ID,
		ProductID:     row.Product.ID,
		Name:          row.Product.Name,
		Image:         row.Product.Image,
		Category:      row.Product.Category.Name,
		EcoRating:     row.Product.EcoRating,
		StockStatus:   status,
		UnitPrice:     row.Price,
		OriginalPrice: row.Product.OriginalPrice,
		Quantity:      row.Quantity,
	}
}
