package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if cfg.Backends.UserBaseURL != "http://user.internal" {
		t.Fatalf("unexpected user base URL: %q", cfg.Backends.UserBaseURL)
	}

	if !cfg.Checkout.ShippingFeeAmount().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected default shipping fee 10, got %s", cfg.Checkout.ShippingFeeAmount())
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_InvalidShippingFee(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_CHECKOUT_SHIPPING_FEE", "free")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid shipping fee to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvUserBaseURL, "http://user.internal")
	t.Setenv(EnvOrderBaseURL, "http://order.internal")
	t.Setenv(EnvProductBaseURL, "http://product.internal")
	t.Setenv("STOREFRONT_BACKEND_OTHER_BASE_URL", "http://other.internal")
}
