package storefront

import (
	"net/http"

	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/internal/coupons"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/logger"
)

// CouponsActive lists the currently active promotions.
func CouponsActive(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}
		active, err := svc.Active(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]*couponView, 0, len(active))
		for i := range active {
			views = append(views, newCouponView(&active[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
