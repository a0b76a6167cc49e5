package coupons

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/internal/pricing"
	"github.com/greenora/storefront/pkg/config"
	"github.com/greenora/storefront/pkg/enums"
	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
	"github.com/greenora/storefront/pkg/redis"
)

const activeCacheScope = "coupons"

type gateway interface {
	ActiveCoupons(ctx context.Context) ([]greenapi.Coupon, error)
	ValidateCoupon(ctx context.Context, code string, orderAmount decimal.Decimal) (*greenapi.Coupon, error)
}

// Cache is the optional backing store for the active-coupon list.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Coupon is the validated, domain form of a coupon.
type Coupon struct {
	ID          string
	Code        string
	Type        enums.DiscountType
	Value       decimal.Decimal
	MinOrderAmt decimal.Decimal
	ValidFrom   time.Time
	ValidUntil  time.Time
}

// Discount computes the currency amount this coupon removes from the
// given subtotal.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	return pricing.DiscountAmount(subtotal, c.Type, c.Value)
}

// AppliesTo reports whether the coupon's minimum order amount is met.
func (c Coupon) AppliesTo(orderAmount decimal.Decimal) bool {
	return orderAmount.GreaterThanOrEqual(c.MinOrderAmt)
}

// Service validates coupon codes and lists active promotions.
type Service interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*Coupon, error)
	Active(ctx context.Context) ([]Coupon, error)
}

type service struct {
	gateway  gateway
	cache    Cache
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewService builds the coupon service. The cache is optional; when
// nil, Active always hits the gateway.
func NewService(gw gateway, cache Cache, cfg config.CouponsConfig, log *logger.Logger) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("coupon gateway required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		gateway:  gw,
		cache:    cache,
		cacheTTL: cfg.ActiveCacheTTL,
		log:      log,
		now:      time.Now,
	}, nil
}

// Validate resolves a coupon code against the gateway and judges its
// applicability for the given order amount. An inapplicable or unknown
// code fails with a validation error; the caller must treat the cart
// as unchanged.
func (s *service) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if orderAmount.LessThan(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be non-negative")
	}

	raw, err := s.gateway.ValidateCoupon(ctx, code, orderAmount)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
		}
		return nil, err
	}

	coupon, err := fromGateway(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "coupon gateway returned a malformed coupon")
	}

	if !raw.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is no longer active")
	}
	now := s.now()
	if !coupon.ValidFrom.IsZero() && now.Before(coupon.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not valid yet")
	}
	if !coupon.ValidUntil.IsZero() && now.After(coupon.ValidUntil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if !coupon.AppliesTo(orderAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("minimum order amount of %s required for this coupon", coupon.MinOrderAmt.StringFixed(2)))
	}

	return coupon, nil
}

// Active lists the currently active coupons, serving from the cache
// when one is configured. Cache failures degrade to the gateway and
// are logged, never surfaced.
func (s *service) Active(ctx context.Context) ([]Coupon, error) {
	key := redis.CacheKey(activeCacheScope, "active")

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var coupons []Coupon
			if jsonErr := json.Unmarshal([]byte(cached), &coupons); jsonErr == nil {
				return coupons, nil
			}
			s.log.Warn(ctx, "discarding malformed active coupon cache entry")
		case err != redis.Nil:
			s.log.Error(ctx, "reading active coupon cache", err)
		}
	}

	raws, err := s.gateway.ActiveCoupons(ctx)
	if err != nil {
		return nil, err
	}

	coupons := make([]Coupon, 0, len(raws))
	for _, raw := range raws {
		coupon, err := fromGateway(raw)
		if err != nil {
			s.log.Warn(ctx, fmt.Sprintf("skipping malformed active coupon %q", raw.CouponCode))
			continue
		}
		coupons = append(coupons, *coupon)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(coupons); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
				s.log.Error(ctx, "writing active coupon cache", err)
			}
		}
	}

	return coupons, nil
}

func fromGateway(raw greenapi.Coupon) (*Coupon, error) {
	typ, err := enums.ParseDiscountType(raw.DiscountType)
	if err != nil {
		return nil, err
	}
	if raw.DiscountValue.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("discount value must be positive, got %s", raw.DiscountValue)
	}

	coupon := Coupon{
		ID:          raw.ID,
		Code:        raw.CouponCode,
		Type:        typ,
		Value:       raw.DiscountValue,
		MinOrderAmt: raw.MinOrderAmt,
	}
	if raw.ValidFrom != "" {
		from, err := time.Parse(time.RFC3339, raw.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("parsing validFrom %q: %w", raw.ValidFrom, err)
		}
		coupon.ValidFrom = from
	}
	if raw.ValidUntil != "" {
		until, err := time.Parse(time.RFC3339, raw.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("parsing validUntil %q: %w", raw.ValidUntil, err)
		}
		coupon.ValidUntil = until
	}
	return &coupon, nil
}
