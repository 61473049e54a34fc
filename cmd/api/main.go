package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/lunamercado/storefront-gateway/api/routes"
	addresssvc "github.com/lunamercado/storefront-gateway/internal/address"
	checkoutsvc "github.com/lunamercado/storefront-gateway/internal/checkout"
	"github.com/lunamercado/storefront-gateway/internal/credentials"
	"github.com/lunamercado/storefront-gateway/pkg/backend"
	"github.com/lunamercado/storefront-gateway/pkg/config"
	"github.com/lunamercado/storefront-gateway/pkg/instance"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
	"github.com/lunamercado/storefront-gateway/pkg/metrics"
	"github.com/lunamercado/storefront-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	credentialStore, err := credentials.NewRedisStore(redisClient, cfg.Session.CredentialTTL())
	if err != nil {
		logg.Error(context.Background(), "failed to build credential store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	backendMetrics := metrics.NewBackendMetrics(registry)

	backendClient, err := backend.NewClient(cfg.Backends, credentialStore, logg, backendMetrics, cfg.Session.RefreshSkew())
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(backendClient, logg, cfg.Checkout.ShippingFeeAmount())
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	addressService, err := addresssvc.NewService(backendClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build address service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting gateway")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, registry, checkoutService, addressService),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-runCtx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "gateway stopped unexpectedly", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := multierr.Combine(server.Shutdown(shutdownCtx), redisClient.Close()); err != nil {
		logg.Error(ctx, "shutdown finished with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "gateway shut down cleanly")
}
