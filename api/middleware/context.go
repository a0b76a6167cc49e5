package middleware

import (
	"context"

	"github.com/greenora/storefront/internal/checkout"
)

type contextKey string

const (
	ctxShopper  contextKey = "shopper"
	ctxRawToken contextKey = "raw_token"
)

// ShopperFromContext returns the authenticated shopper seeded by Auth.
func ShopperFromContext(ctx context.Context) (checkout.Shopper, bool) {
	if ctx == nil {
		return checkout.Shopper{}, false
	}
	sh, ok := ctx.Value(ctxShopper).(checkout.Shopper)
	return sh, ok
}

// RawTokenFromContext returns the bearer token the request arrived
// with. The backend client forwards it on every upstream call.
func RawTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRawToken).(string); ok {
		return v
	}
	return ""
}

// WithShopper injects the shopper into the context.
func WithShopper(ctx context.Context, sh checkout.Shopper) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShopper, sh)
}

// WithRawToken injects the bearer token into the context.
func WithRawToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRawToken, token)
}
