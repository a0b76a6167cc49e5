package storefront

import (
	"net/http"

	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/api/validators"
	"github.com/greenora/storefront/internal/address"
	"github.com/greenora/storefront/internal/shopper"
	"github.com/greenora/storefront/pkg/enums"
	"github.com/greenora/storefront/pkg/logger"
)

// CheckoutStatus reports the current step with its payload: the stored
// address while collecting it, the priced cart on the payment step,
// the confirmed order once payment has settled.
func CheckoutStatus(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := session.Checkout.State()
		view := checkoutView{Step: string(state.Step), Processing: state.Processing}

		switch state.Step {
		case enums.CheckoutStepConfirmation:
			order, err := session.Checkout.Confirmation(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			confirmed := newOrderView(order)
			view.Order = &confirmed
		case enums.CheckoutStepPayment:
			snapshot, err := session.Checkout.EnterPayment(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			cartView := newCartView(snapshot)
			view.Cart = &cartView
		default:
			addr, err := session.Checkout.EnterAddress(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if addr != nil {
				view.Address = addr
			}
		}

		responses.WriteSuccess(w, view)
	}
}

// CheckoutSaveAddress stores the delivery address form.
func CheckoutSaveAddress(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload address.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saved, err := session.Checkout.SaveAddress(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

// CheckoutPay places the order and returns the widget options. The
// order exists before any widget state does.
func CheckoutPay(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := session.Checkout.Pay(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payIntentView{Order: newOrderView(intent.Order), Options: intent.Options})
	}
}
