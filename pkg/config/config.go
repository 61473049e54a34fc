package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names referenced from tests and bootstrap diagnostics.
const (
	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvPort           = "STOREFRONT_APP_PORT"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
	EnvUserBaseURL    = "STOREFRONT_BACKEND_USER_BASE_URL"
	EnvOrderBaseURL   = "STOREFRONT_BACKEND_ORDER_BASE_URL"
	EnvProductBaseURL = "STOREFRONT_BACKEND_PRODUCT_BASE_URL"
)

type Config struct {
	App      AppConfig
	Backends BackendsConfig
	Redis    RedisConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendsConfig carries one base URL per logical backend service plus the
// transport timeout shared by all of them.
type BackendsConfig struct {
	UserBaseURL      string        `envconfig:"STOREFRONT_BACKEND_USER_BASE_URL" required:"true"`
	OrderBaseURL     string        `envconfig:"STOREFRONT_BACKEND_ORDER_BASE_URL" required:"true"`
	ProductBaseURL   string        `envconfig:"STOREFRONT_BACKEND_PRODUCT_BASE_URL" required:"true"`
	AnalyticsBaseURL string        `envconfig:"STOREFRONT_BACKEND_ANALYTICS_BASE_URL"`
	OtherBaseURL     string        `envconfig:"STOREFRONT_BACKEND_OTHER_BASE_URL" required:"true"`
	RequestTimeout   time.Duration `envconfig:"STOREFRONT_BACKEND_REQUEST_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig governs how long stored credential pairs survive without use.
type SessionConfig struct {
	CredentialTTLMinutes int `envconfig:"STOREFRONT_SESSION_CREDENTIAL_TTL_MINUTES" default:"43200"`
	RefreshSkewSeconds   int `envconfig:"STOREFRONT_SESSION_REFRESH_SKEW_SECONDS" default:"30"`
}

// CredentialTTL returns the credential TTL configured in minutes.
func (s SessionConfig) CredentialTTL() time.Duration {
	if s.CredentialTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.CredentialTTLMinutes) * time.Minute
}

// RefreshSkew is how far ahead of access-token expiry a refresh is forced.
func (s SessionConfig) RefreshSkew() time.Duration {
	if s.RefreshSkewSeconds <= 0 {
		return 0
	}
	return time.Duration(s.RefreshSkewSeconds) * time.Second
}

type CheckoutConfig struct {
	ShippingFee string `envconfig:"STOREFRONT_CHECKOUT_SHIPPING_FEE" default:"10"`
}

// ShippingFeeAmount parses the flat per-order shipping fee.
func (c CheckoutConfig) ShippingFeeAmount() decimal.Decimal {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return decimal.Zero
	}
	return fee
}

func (c CheckoutConfig) validate() error {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return fmt.Errorf("parsing shipping fee %q: %w", c.ShippingFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("shipping fee must not be negative")
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
