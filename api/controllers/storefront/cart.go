package storefront

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/greenora/storefront/api/middleware"
	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/api/validators"
	"github.com/greenora/storefront/internal/shopper"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/logger"
)

func sessionFromRequest(r *http.Request, hub *shopper.Hub) (*shopper.Session, error) {
	sh, ok := middleware.ShopperFromContext(r.Context())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return hub.Session(r.Context(), sh)
}

// CartFetch reloads the authoritative cart and returns it with the
// price breakdown.
func CartFetch(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.Cart.Load(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(session.Cart.Summary()))
	}
}

// CartAddItem adds a product to the cart.
func CartAddItem(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.Cart.Add(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(session.Cart.Summary()))
	}
}

// CartUpdateItem sets a product's quantity; zero removes the row.
func CartUpdateItem(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.Cart.UpdateQuantity(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(session.Cart.Summary()))
	}
}

// CartRemoveItem removes one cart row by its row id.
func CartRemoveItem(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartItemID := chi.URLParam(r, "cartItemId")
		if err := session.Cart.Remove(r.Context(), cartItemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(session.Cart.Summary()))
	}
}

// CartApplyCoupon validates a coupon code against the current subtotal
// and applies it.
func CartApplyCoupon(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := session.Cart.ApplyCoupon(r.Context(), payload.Code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(session.Cart.Summary()))
	}
}

// CartRemoveCoupon drops the applied coupon.
func CartRemoveCoupon(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session.Cart.RemoveCoupon()
		responses.WriteSuccess(w, newCartView(session.Cart.Summary()))
	}
}
