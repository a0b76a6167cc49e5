package greenapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// Order is the backend's view of a placed order. Amount and totals are
// authoritative server values; the storefront never recomputes them
// for the charge.
type Order struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	TotalAmt        decimal.Decimal `json:"totalAmt"`
	DeliveryStatus  string          `json:"deliveryStatus"`
	OrderDate       string          `json:"orderDate"`
}

// PlaceOrder creates the order transactionally on the backend. The
// returned razorpay order handle is required before any payment UI may
// open.
func (c *Client) PlaceOrder(ctx context.Context, userID, addressID, couponID string) (*Order, error) {
	path := fmt.Sprintf("orders/user/%s/address/%s", url.PathEscape(userID), url.PathEscape(addressID))
	if couponID != "" {
		query := url.Values{}
		query.Set("couponId", couponID)
		path = fmt.Sprintf("%s?%s", path, query.Encode())
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, path, nil, &order, "place order"); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	path := fmt.Sprintf("orders/%s", url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodGet, path, nil, &order, "get order"); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches the user's order history.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	path := fmt.Sprintf("orders/user/%s", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, &orders, "list orders"); err != nil {
		return nil, err
	}
	return orders, nil
}
