// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/Fadikk367/lego-shop-server/internal/auth"
	"github.com/Fadikk367/lego-shop-server/internal/config"
	"github.com/Fadikk367/lego-shop-server/internal/events"
	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
)

// initStore opens the configured graph store and, when enabled, puts the
// circuit breaker in front of it.
func initStore(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	var store graph.Store

	switch cfg.Store.Backend {
	case config.BackendMemory:
		logging.Warn().Msg("Using the in-memory graph store (STORE_BACKEND=memory); data is lost on restart")
		store = graph.NewMemoryStore()

	default:
		neo, err := graph.NewNeo4jStore(ctx, graph.Neo4jConfig{
			URI:                   cfg.Neo4j.URI,
			Username:              cfg.Neo4j.Username,
			Password:              cfg.Neo4j.Password,
			Database:              cfg.Neo4j.Database,
			QueryTimeout:          cfg.Neo4j.QueryTimeout,
			MaxConnectionPoolSize: cfg.Neo4j.MaxConnectionPoolSize,
			ConnectTimeout:        cfg.Neo4j.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to neo4j at %s: %w", cfg.Neo4j.URI, err)
		}
		if cfg.Neo4j.EnsureSchema {
			if err := neo.EnsureSchema(ctx); err != nil {
				_ = neo.Close(ctx)
				return nil, fmt.Errorf("ensure neo4j schema: %w", err)
			}
		}
		logging.Info().Str("uri", cfg.Neo4j.URI).Str("database", cfg.Neo4j.Database).Msg("Connected to Neo4j")
		store = neo
	}

	if !cfg.Breaker.Enabled {
		return store, nil
	}
	return graph.NewBreakerStore(store, graph.BreakerConfig{
		Name:         "graph-store",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	}), nil
}

// eventComponents is the event bus and its consumer router. With events
// disabled only Publisher is set, to a no-op.
type eventComponents struct {
	Publisher events.Publisher
	Bus       *events.Bus
	Router    *events.Router
}

func (e *eventComponents) Close() {
	if e.Bus == nil {
		return
	}
	if err := e.Bus.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event bus")
	}
}

func initEvents(ctx context.Context, cfg *config.Config) (*eventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Domain events disabled (EVENTS_ENABLED=false)")
		return &eventComponents{Publisher: events.NopPublisher{}}, nil
	}

	busCfg := events.DefaultConfig()
	busCfg.NATSURL = cfg.Events.NATSURL
	busCfg.StreamName = cfg.Events.StreamName

	wmLogger := logging.NewWatermillLogger()
	bus, err := events.NewBus(ctx, busCfg, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	router, err := events.NewRouter(bus, events.DefaultRouterConfig(), wmLogger)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("create event router: %w", err)
	}
	router.RegisterDefaultConsumers()

	logging.Info().Str("transport", bus.Transport()).Msg("Event bus initialized")
	return &eventComponents{Publisher: bus, Bus: bus, Router: router}, nil
}

// initAuth builds the identity service and bearer middleware. Login issues
// tokens in every auth mode, so without a configured secret (allowed only in
// none mode) a random one is generated for this process.
func initAuth(cfg *config.Config, users graph.UserStore) (*auth.Service, *auth.Middleware, error) {
	sec := cfg.Security
	if sec.JWTSecret == "" {
		secret, err := ephemeralSecret()
		if err != nil {
			return nil, nil, err
		}
		sec.JWTSecret = secret
		logging.Warn().Msg("JWT_SECRET not set; using a random signing secret, issued tokens stop working after a restart")
	}

	jwtManager, err := auth.NewJWTManager(&sec)
	if err != nil {
		return nil, nil, fmt.Errorf("create JWT manager: %w", err)
	}

	identity, err := auth.NewService(users, jwtManager,
		auth.WithBcryptCost(sec.BcryptCost),
		auth.WithLoginLimiter(auth.DefaultLoginLimiter()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create auth service: %w", err)
	}

	if sec.AuthEnabled() {
		logging.Info().Dur("session_timeout", sec.SessionTimeout).Msg("JWT authentication enabled")
	}
	return identity, auth.NewMiddleware(jwtManager, sec.AuthMode), nil
}

func ephemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate signing secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
