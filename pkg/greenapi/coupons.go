package greenapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// Coupon mirrors the coupon gateway's representation.
type Coupon struct {
	ID            string          `json:"id"`
	CouponCode    string          `json:"couponCode"`
	Active        bool            `json:"active"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	DiscountType  string          `json:"discountType"`
	MinOrderAmt   decimal.Decimal `json:"minOrderAmt"`
	ValidFrom     string          `json:"validFrom"`
	ValidUntil    string          `json:"validUntil"`
}

// ActiveCoupons lists the currently active coupons.
func (c *Client) ActiveCoupons(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	if err := c.do(ctx, http.MethodGet, "coupons/active", nil, &coupons, "list active coupons"); err != nil {
		return nil, err
	}
	return coupons, nil
}

// ValidateCoupon checks a code against the given order amount. The
// gateway echoes the coupon terms; applicability (active flag, minimum
// order amount) is judged by the caller.
func (c *Client) ValidateCoupon(ctx context.Context, code string, orderAmount decimal.Decimal) (*Coupon, error) {
	query := url.Values{}
	query.Set("code", code)
	query.Set("orderAmount", orderAmount.String())

	var coupon Coupon
	path := fmt.Sprintf("coupons/validate?%s", query.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &coupon, "validate coupon"); err != nil {
		return nil, err
	}
	return &coupon, nil
}
