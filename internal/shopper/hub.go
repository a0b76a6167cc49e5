package shopper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/greenora/storefront/internal/address"
	"github.com/greenora/storefront/internal/cart"
	"github.com/greenora/storefront/internal/checkout"
	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/email"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
)

// Deps is the shared service stack every shopper session is built
// from.
type Deps struct {
	Gateway   *greenapi.Client
	Pricer    *pricing.Engine
	Coupons   coupons.Service
	Addresses address.Service
	Orders    orders.Service
	Adapter   *payment.Adapter
	Notifier  *email.Notifier
	Log       *logger.Logger
}

func (d Deps) validate() error {
	if d.Gateway == nil {
		return fmt.Errorf("gateway client required")
	}
	if d.Pricer == nil {
		return fmt.Errorf("pricing engine required")
	}
	if d.Coupons == nil {
		return fmt.Errorf("coupon service required")
	}
	if d.Addresses == nil {
		return fmt.Errorf("address service required")
	}
	if d.Orders == nil {
		return fmt.Errorf("order service required")
	}
	if d.Adapter == nil {
		return fmt.Errorf("payment adapter required")
	}
	if d.Notifier == nil {
		return fmt.Errorf("notifier required")
	}
	if d.Log == nil {
		return fmt.Errorf("logger required")
	}
	return nil
}

// Session is one authenticated shopper's state: their cart manager and
// checkout orchestrator. It lives from first authenticated request to
// logout.
type Session struct {
	Shopper  checkout.Shopper
	Cart     *cart.Manager
	Checkout *checkout.Orchestrator

	startedAt time.Time
}

// StartedAt reports when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Hub is the registry of live shopper sessions, keyed by user id.
type Hub struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub builds the session hub.
func NewHub(deps Deps) (*Hub, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Hub{deps: deps, sessions: make(map[string]*Session)}, nil
}

// Session returns the live session for the shopper, creating one on
// first sight. The initial load of the cart happens here so every
// later read sees gateway-confirmed state.
func (h *Hub) Session(ctx context.Context, sh checkout.Shopper) (*Session, error) {
	if sh.UserID == "" {
		return nil, fmt.Errorf("shopper user id required")
	}

	h.mu.Lock()
	existing, ok := h.sessions[sh.UserID]
	h.mu.Unlock()
	if ok {
		return existing, nil
	}

	manager, err := cart.NewManager(sh.UserID, h.deps.Gateway, h.deps.Pricer, h.deps.Coupons, h.deps.Log)
	if err != nil {
		return nil, err
	}
	orch, err := checkout.NewOrchestrator(sh, manager, h.deps.Addresses, h.deps.Orders, h.deps.Adapter, h.deps.Notifier, h.deps.Log)
	if err != nil {
		return nil, err
	}
	if err := manager.Load(ctx); err != nil {
		return nil, err
	}

	session := &Session{Shopper: sh, Cart: manager, Checkout: orch, startedAt: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Two requests may race session creation; the first stored wins so
	// both see the same manager.
	if winner, ok := h.sessions[sh.UserID]; ok {
		return winner, nil
	}
	h.sessions[sh.UserID] = session
	return session, nil
}

// End tears down the shopper's session on logout. Unknown users are a
// no-op.
func (h *Hub) End(userID string) {
	h.mu.Lock()
	delete(h.sessions, userID)
	h.mu.Unlock()
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
