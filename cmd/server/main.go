// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/api"
	"github.com/Fadikk367/lego-shop-server/internal/catalog"
	"github.com/Fadikk367/lego-shop-server/internal/config"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/orders"
	"github.com/Fadikk367/lego-shop-server/internal/recommend"
	"github.com/Fadikk367/lego-shop-server/internal/supervisor"
	"github.com/Fadikk367/lego-shop-server/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("store_backend", cfg.Store.Backend).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("events_enabled", cfg.Events.Enabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting LEGO shop server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === GRAPH STORE ===

	store, err := initStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize graph store")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing graph store")
		}
	}()

	// === EVENTS ===

	ev, err := initEvents(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	defer ev.Close()

	// === SERVICES ===

	identity, authMW, err := initAuth(cfg, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}
	warnInsecureDefaults(cfg)

	handler := api.NewHandler(api.Services{
		Catalog:  catalog.NewService(store, ev.Publisher),
		Ranking:  recommend.NewService(store, cfg.Recommend),
		Orders:   orders.NewService(store, orders.WithPublisher(ev.Publisher)),
		Identity: identity,
		Auth:     authMW,
		Store:    store,
	})
	router := api.NewRouter(handler, authMW, api.NewChiMiddleware(chiMiddlewareConfig(cfg)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	limiter := identity.Limiter()
	tree.AddDataService(services.NewStoreMonitorService(store, 30*time.Second, 5*time.Second, logging.WithComponent("supervisor")))
	tree.AddDataService(services.NewSweeperService("login-limiter-sweep", limiter.Idle(), limiter.Sweep))
	if ev.Router != nil {
		tree.AddMessagingService(services.NewEventRouterService(ev.Router, shutdownTimeout))
		logging.Info().Str("transport", ev.Bus.Transport()).Msg("Event router added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped")
}

// warnInsecureDefaults logs settings that are fine locally but not in
// production.
func warnInsecureDefaults(cfg *config.Config) {
	if !cfg.Security.AuthEnabled() {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none): ownership of orders and ratings is not checked")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" && cfg.IsProduction() {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}
}

// chiMiddlewareConfig maps security settings onto the router middleware.
func chiMiddlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	c := api.DefaultChiMiddlewareConfig()
	if len(cfg.Security.CORSOrigins) > 0 {
		c.CORSAllowedOrigins = cfg.Security.CORSOrigins
	}
	c.RateLimitRequests = cfg.Security.RateLimitReqs
	c.WriteRateLimit = cfg.Security.WriteRateLimit
	c.LoginRateLimit = cfg.Security.LoginRateLimit
	c.RateLimitWindow = cfg.Security.RateLimitWindow
	c.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return c
}
