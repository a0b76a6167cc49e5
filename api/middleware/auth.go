package middleware

import (
	"net/http"
	"strings"

	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/internal/checkout"
	pkgAuth "github.com/greenora/storefront/pkg/auth"
	"github.com/greenora/storefront/pkg/config"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// shopper and the raw credential for upstream forwarding.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			shopper := checkout.Shopper{
				UserID:    claims.UserID,
				Name:      claims.Name,
				Email:     claims.Email,
				Phone:     claims.Phone,
				AddressID: claims.AddressID,
			}

			ctx := WithShopper(r.Context(), shopper)
			ctx = WithRawToken(ctx, token)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
