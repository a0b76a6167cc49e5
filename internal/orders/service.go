package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/pkg/enums"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/greenapi"
)

type gateway interface {
	PlaceOrder(ctx context.Context, userID, addressID, couponID string) (*greenapi.Order, error)
	GetOrder(ctx context.Context, orderID string) (*greenapi.Order, error)
	ListOrders(ctx context.Context, userID string) ([]greenapi.Order, error)
}

// Order is the domain view of a backend order. Amount is the
// authoritative charge in currency units; the storefront never
// substitutes its own computation for it.
type Order struct {
	ID              string
	Amount          decimal.Decimal
	Currency        string
	RazorpayOrderID string
	TotalAmt        decimal.Decimal
	DeliveryStatus  enums.DeliveryStatus
	OrderDate       time.Time
}

// Service places orders and reads them back.
type Service interface {
	Place(ctx context.Context, userID, addressID, couponID string) (*Order, error)
	Get(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, userID string) ([]Order, error)
}

type service struct {
	gateway gateway
}

// NewService builds the order service.
func NewService(gw gateway) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("order gateway required")
	}
	return &service{gateway: gw}, nil
}

// Place creates the order on the backend. The razorpay order handle on
// the result is what the payment widget is constructed from, so a
// failure here aborts checkout before any payment UI exists.
func (s *service) Place(ctx context.Context, userID, addressID, couponID string) (*Order, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if addressID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	raw, err := s.gateway.PlaceOrder(ctx, userID, addressID, couponID)
	if err != nil {
		return nil, err
	}
	order, err := fromGateway(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "order gateway returned a malformed order")
	}
	if order.RazorpayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "order gateway returned no payment order handle")
	}
	return order, nil
}

// Get fetches one order fresh from the backend.
func (s *service) Get(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	raw, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order, err := fromGateway(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "order gateway returned a malformed order")
	}
	return order, nil
}

// List returns the user's order history, newest first as the backend
// sends it.
func (s *service) List(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	raws, err := s.gateway.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(raws))
	for _, raw := range raws {
		order, err := fromGateway(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "order gateway returned a malformed order")
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func fromGateway(raw greenapi.Order) (*Order, error) {
	status, err := enums.ParseDeliveryStatus(raw.DeliveryStatus)
	if err != nil {
		return nil, err
	}
	order := Order{
		ID:              raw.ID,
		Amount:          raw.Amount,
		Currency:        raw.Currency,
		RazorpayOrderID: raw.RazorpayOrderID,
		TotalAmt:        raw.TotalAmt,
		DeliveryStatus:  status,
	}
	if raw.OrderDate != "" {
		date, err := time.Parse(time.RFC3339, raw.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("parsing orderDate %q: %w", raw.OrderDate, err)
		}
		order.OrderDate = date
	}
	return &order, nil
}
