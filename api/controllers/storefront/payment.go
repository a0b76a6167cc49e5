package storefront

import (
	"net/http"

	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/api/validators"
	"github.com/greenora/storefront/internal/payment"
	"github.com/greenora/storefront/internal/shopper"
	"github.com/greenora/storefront/pkg/logger"
)

// PaymentCallback is the widget's success handshake. The signature is
// verified against the pending order before anything is cleared.
func PaymentCallback(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentCallbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := session.Checkout.CompletePayment(r.Context(), payment.SuccessResult{
			RazorpayOrderID:   payload.RazorpayOrderID,
			RazorpayPaymentID: payload.RazorpayPaymentID,
			Signature:         payload.RazorpaySignature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// PaymentDismiss handles the widget's cancel callback. Abandoning is
// not an error; the attempt resets for a retry.
func PaymentDismiss(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := session.Checkout.DismissPayment(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state := session.Checkout.State()
		responses.WriteSuccess(w, checkoutView{Step: string(state.Step), Processing: state.Processing})
	}
}
