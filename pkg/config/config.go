package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "GREENORA"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "GREENORA_APP_ENV"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Pricing  PricingConfig
	Razorpay RazorpayConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Coupons  CouponsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GREENORA_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENORA_APP_PORT" default:"8081"`
	LogLevel     string `envconfig:"GREENORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the Greenora REST backend that owns carts,
// coupons, orders, addresses and the email side-channel.
type BackendConfig struct {
	BaseURL string        `envconfig:"GREENORA_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"GREENORA_BACKEND_TIMEOUT" default:"10s"`
}

// PricingConfig carries the storefront pricing constants. Amounts are
// decimal currency units, never minor units.
type PricingConfig struct {
	FreeShippingThreshold string `envconfig:"GREENORA_FREE_SHIPPING_THRESHOLD" default:"500"`
	FlatShippingFee       string `envconfig:"GREENORA_FLAT_SHIPPING_FEE" default:"50"`
	TaxRate               string `envconfig:"GREENORA_TAX_RATE" default:"0.08"`
}

func (p PricingConfig) validate() error {
	for name, raw := range map[string]string{
		"free shipping threshold": p.FreeShippingThreshold,
		"flat shipping fee":       p.FlatShippingFee,
		"tax rate":                p.TaxRate,
	} {
		if _, err := decimal.NewFromString(strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("parsing %s %q: %w", name, raw, err)
		}
	}
	return nil
}

// Threshold returns the free-shipping threshold as a decimal.
func (p PricingConfig) Threshold() decimal.Decimal {
	return mustDecimal(p.FreeShippingThreshold)
}

// ShippingFee returns the flat shipping fee as a decimal.
func (p PricingConfig) ShippingFee() decimal.Decimal {
	return mustDecimal(p.FlatShippingFee)
}

// Tax returns the flat tax rate as a decimal.
func (p PricingConfig) Tax() decimal.Decimal {
	return mustDecimal(p.TaxRate)
}

func mustDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

type RazorpayConfig struct {
	KeyID        string `envconfig:"GREENORA_RAZORPAY_KEY_ID" required:"true"`
	KeySecret    string `envconfig:"GREENORA_RAZORPAY_KEY_SECRET" required:"true"`
	Currency     string `envconfig:"GREENORA_RAZORPAY_CURRENCY" default:"INR"`
	MerchantName string `envconfig:"GREENORA_RAZORPAY_MERCHANT_NAME" default:"Greenora"`
	Description  string `envconfig:"GREENORA_RAZORPAY_DESCRIPTION" default:"Organic Products Purchase"`
	ThemeColor   string `envconfig:"GREENORA_RAZORPAY_THEME_COLOR" default:"#10B981"`
	ScriptURL    string `envconfig:"GREENORA_RAZORPAY_SCRIPT_URL" default:"https://checkout.razorpay.com/v1/checkout.js"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENORA_REDIS_URL"`
	Address      string        `envconfig:"GREENORA_REDIS_ADDR"`
	Password     string        `envconfig:"GREENORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all; the
// storefront runs without the coupon cache when it was not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret string `envconfig:"GREENORA_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"GREENORA_JWT_ISSUER" required:"true"`
}

type CouponsConfig struct {
	ActiveCacheTTL time.Duration `envconfig:"GREENORA_COUPON_CACHE_TTL" default:"2m"`
}
