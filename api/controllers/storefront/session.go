package storefront

import (
	"net/http"

	"github.com/greenora/storefront/api/middleware"
	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/internal/shopper"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/logger"
)

// SessionLogout tears down the shopper's session state. The token
// itself is revoked by the account backend; here only the cart manager
// and checkout state die.
func SessionLogout(hub *shopper.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, ok := middleware.ShopperFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		hub.End(sh.UserID)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
