package storefront

import (
	"github.com/greenora/storefront/internal/cart"
	"github.com/greenora/storefront/internal/coupons"
	"github.com/greenora/storefront/internal/orders"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/internal/pricing"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type updateItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type paymentCallbackRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type lineItemView struct {
	CartItemID string `json:"cartItemId"`
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	Category   string `json:"category,omitempty"`
	UnitPrice  string `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	Organic    bool   `json:"organic"`
	InStock    bool   `json:"inStock"`
}

type couponView struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	MinOrderAmt string `json:"minOrderAmt"`
}

type cartView struct {
	Items       []lineItemView           `json:"items"`
	Unavailable []lineItemView           `json:"unavailable,omitempty"`
	Count       int                      `json:"count"`
	Coupon      *couponView              `json:"coupon,omitempty"`
	Summary     pricing.DisplayBreakdown `json:"summary"`
}

type orderView struct {
	ID              string `json:"id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	RazorpayOrderID string `json:"razorpayOrderId,omitempty"`
	TotalAmt        string `json:"totalAmt"`
	DeliveryStatus  string `json:"deliveryStatus"`
	OrderDate       string `json:"orderDate,omitempty"`
}

type payIntentView struct {
	Order   orderView              `json:"order"`
	Options *payment.WidgetOptions `json:"options"`
}

type checkoutView struct {
	Step       string     `json:"step"`
	Processing bool       `json:"processing"`
	Address    any        `json:"address,omitempty"`
	Cart       *cartView  `json:"cart,omitempty"`
	Order      *orderView `json:"order,omitempty"`
}

func newLineItemView(item cart.LineItem) lineItemView {
	return lineItemView{
		CartItemID: item.CartItemID,
		ProductID:  item.ProductID,
		Name:       item.Name,
		Image:      item.Image,
		Category:   item.Category,
		UnitPrice:  item.UnitPrice.StringFixed(2),
		Quantity:   item.Quantity,
		Organic:    item.Organic(),
		InStock:    item.InStock(),
	}
}

func newCouponView(c *coupons.Coupon) *couponView {
	if c == nil {
		return nil
	}
	return &couponView{
		ID:          c.ID,
		Code:        c.Code,
		Type:        string(c.Type),
		Value:       c.Value.String(),
		MinOrderAmt: c.MinOrderAmt.StringFixed(2),
	}
}

func newCartView(snapshot cart.Snapshot) cartView {
	view := cartView{
		Items:   make([]lineItemView, 0, len(snapshot.Items)),
		Count:   snapshot.Count,
		Coupon:  newCouponView(snapshot.Coupon),
		Summary: snapshot.Breakdown.Display(),
	}
	for _, item := range snapshot.Items {
		view.Items = append(view.Items, newLineItemView(item))
	}
	for _, item := range snapshot.Unavailable {
		view.Unavailable = append(view.Unavailable, newLineItemView(item))
	}
	return view
}

func newOrderView(order *orders.Order) orderView {
	view := orderView{
		ID:              order.ID,
		Amount:          order.Amount.StringFixed(2),
		Currency:        order.Currency,
		RazorpayOrderID: order.RazorpayOrderID,
		TotalAmt:        order.TotalAmt.StringFixed(2),
		DeliveryStatus:  string(order.DeliveryStatus),
	}
	if !order.OrderDate.IsZero() {
		view.OrderDate = order.OrderDate.Format("2006-01-02T15:04:05Z07:00")
	}
	return view
}
