package storefront

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/greenora/storefront/api/middleware"
	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/internal/orders"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/logger"
)

// OrdersList returns the shopper's order history.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, ok := middleware.ShopperFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		list, err := svc.List(r.Context(), sh.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]orderView, 0, len(list))
		for i := range list {
			views = append(views, newOrderView(&list[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// OrdersGet is the confirmation read path: one order, fetched fresh.
func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}
