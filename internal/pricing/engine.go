package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Line is the priced quantity the engine sums over. Callers pass
// in-stock lines only; out-of-stock rows are separated upstream and
// never reach the subtotal.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Coupon carries the discount terms relevant to the computation.
type Coupon struct {
	Type  enums.DiscountType
	Value decimal.Decimal
}

// Breakdown is the full price decomposition of a cart. Values stay at
// full precision; rounding happens only in Display.
type Breakdown struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// DisplayBreakdown is the presentation form, rounded to two places.
type DisplayBreakdown struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Display rounds every amount to two decimal places. This is the only
// point where rounding happens, so repeated recomputation never
// compounds rounding error.
func (b Breakdown) Display() DisplayBreakdown {
	return DisplayBreakdown{
		Subtotal: b.Subtotal.StringFixed(2),
		Shipping: b.Shipping.StringFixed(2),
		Discount: b.Discount.StringFixed(2),
		Tax:      b.Tax.StringFixed(2),
		Total:    b.Total.StringFixed(2),
	}
}

// Engine computes price breakdowns from the configured constants. It
// is a pure calculator: no I/O, no state beyond the constants.
type Engine struct {
	threshold   decimal.Decimal
	shippingFee decimal.Decimal
	taxRate     decimal.Decimal
}

// NewEngine builds the engine from the pricing configuration.
func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{
		threshold:   cfg.Threshold(),
		shippingFee: cfg.ShippingFee(),
		taxRate:     cfg.Tax(),
	}
}

// Compute turns the lines plus an optional coupon into a breakdown.
// An empty line set yields an all-zero breakdown.
func (e *Engine) Compute(lines []Line, coupon *Coupon) Breakdown {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := e.shippingFee
	if subtotal.IsZero() || subtotal.GreaterThan(e.threshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = DiscountAmount(subtotal, coupon.Type, coupon.Value)
	}

	tax := subtotal.Sub(discount).Mul(e.taxRate)
	total := subtotal.Add(shipping).Sub(discount).Add(tax)

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}

// DiscountAmount resolves the currency value a coupon removes from the
// given subtotal. Fixed coupons use their value directly; percentage
// coupons take their share of the subtotal. The result is clamped to
// the subtotal so a discount can never push the payable amount
// negative; validated coupons (minimum order ≥ value) never hit the
// clamp.
func DiscountAmount(subtotal decimal.Decimal, typ enums.DiscountType, value decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch typ {
	case enums.DiscountTypeFixed:
		amount = value
	case enums.DiscountTypePercentage:
		amount = subtotal.Mul(value).Div(hundred)
	default:
		return decimal.Zero
	}
	if amount.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
