package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dmcastellon/pupusapos/internal/api"
	"github.com/dmcastellon/pupusapos/internal/credstore"
	"github.com/dmcastellon/pupusapos/internal/orders"
	"github.com/dmcastellon/pupusapos/internal/session"
	"github.com/dmcastellon/pupusapos/pkg/config"
	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/logger"
	"github.com/dmcastellon/pupusapos/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := credstore.OpenSQLite(cfg.Store.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to open credential store", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing credential store", err)
		}
	}()

	var clientMetrics *metrics.ClientMetrics
	if cfg.Metrics.Addr != "" {
		registry := prometheus.NewRegistry()
		clientMetrics = metrics.NewClientMetrics(registry)
		go func() {
			handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
			if err := http.ListenAndServe(cfg.Metrics.Addr, handler); err != nil {
				logg.Error(context.Background(), "metrics listener stopped", err)
			}
		}()
	}

	// The auth surface never attaches a token source: the session manager
	// drives those calls itself with explicit credentials.
	authTransport, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build auth client", err)
		os.Exit(1)
	}

	manager, err := session.NewManager(session.Params{
		Store:   store,
		Gateway: api.NewAuthClient(authTransport),
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}
	manager.OnForcedLogout(func() {
		fmt.Fprintln(os.Stderr, "your session expired, please log in again")
	})

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  manager,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(client, client)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if _, err := manager.Bootstrap(ctx); err != nil {
		logg.Warn(ctx, "session bootstrap failed, starting unauthenticated")
	}

	app := &app{
		manager: manager,
		client:  client,
		orders:  orderService,
		out:     os.Stdout,
	}

	if len(os.Args) < 2 {
		app.usage()
		os.Exit(2)
	}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, pkgerrors.UserMessage(err))
		logg.Debug(logg.WithField(ctx, "error", err.Error()), "command failed")
		os.Exit(1)
	}
}
