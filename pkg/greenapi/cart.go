package greenapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// CartPayload is the authoritative cart as the gateway returns it.
type CartPayload struct {
	Items []CartRow `json:"items"`
}

// CartRow is one server-side cart row. Its ID identifies the row
// itself; Product.ID identifies the product. The two are distinct and
// removals go by the row id.
type CartRow struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Product  ProductSummary  `json:"product"`
}

// ProductSummary carries the display fields the gateway embeds per row.
type ProductSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	Category      CategoryRef     `json:"category"`
	EcoRating     float64         `json:"ecoRating"`
	StockStatus   string          `json:"stockStatus"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
}

type CategoryRef struct {
	Name string `json:"name"`
}

type cartMutation struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// FetchCart loads the authoritative cart for the user.
func (c *Client) FetchCart(ctx context.Context, userID string) (*CartPayload, error) {
	var payload CartPayload
	path := fmt.Sprintf("cart/%s", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, &payload, "fetch cart"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AddCartItem asks the gateway to add quantity of a product.
func (c *Client) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	path := fmt.Sprintf("cart/%s", url.PathEscape(userID))
	body := cartMutation{ProductID: productID, Quantity: quantity}
	return c.do(ctx, http.MethodPost, path, body, nil, "add cart item")
}

// UpdateCartItem sets the quantity for a product already in the cart.
func (c *Client) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	path := fmt.Sprintf("cart/%s", url.PathEscape(userID))
	body := cartMutation{ProductID: productID, Quantity: quantity}
	return c.do(ctx, http.MethodPut, path, body, nil, "update cart item")
}

// RemoveCartItem deletes one cart row by its row id, not the product id.
func (c *Client) RemoveCartItem(ctx context.Context, userID, cartItemID string) error {
	path := fmt.Sprintf("cart/%s/product/%s", url.PathEscape(userID), url.PathEscape(cartItemID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, "remove cart item")
}

// ClearCart empties the user's gateway-side cart.
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	path := fmt.Sprintf("cart/%s", url.PathEscape(userID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, "clear cart")
}
