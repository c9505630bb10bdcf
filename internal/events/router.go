// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/metrics"
)

// RouterConfig holds configuration for the consumer router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Handler consumes one decoded event. A returned error triggers a retry.
type Handler func(ctx context.Context, e Event) error

// Router wraps a watermill router with panic recovery and retry middleware.
// Every consumed message is decoded before reaching a Handler and counted
// in shop_events_consumed_total once the handler succeeds.
type Router struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
}

// NewRouter creates a router reading from bus.
func NewRouter(bus *Bus, cfg RouterConfig, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}
	d := DefaultRouterConfig()
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = d.CloseTimeout
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = d.RetryInitialInterval
	}
	if cfg.RetryMaxInterval <= 0 {
		cfg.RetryMaxInterval = d.RetryMaxInterval
	}
	if cfg.RetryMultiplier <= 0 {
		cfg.RetryMultiplier = d.RetryMultiplier
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return &Router{router: wmRouter, subscriber: bus.Subscriber(), logger: logger}, nil
}

// AddConsumer registers handler for topic under a unique name.
func (r *Router) AddConsumer(name, topic string, handler Handler) {
	r.router.AddConsumerHandler(name, topic, r.subscriber, func(msg *message.Message) error {
		e, err := Decode(topic, msg.Payload)
		if err != nil {
			// A payload that cannot be decoded will never succeed; drop it.
			r.logger.Error("Dropping undecodable event", err, watermill.LogFields{
				"topic":      topic,
				"message_id": msg.UUID,
			})
			return nil
		}

		ctx := msg.Context()
		if id := msg.Metadata.Get("request_id"); id != "" {
			ctx = logging.ContextWithRequestID(ctx, id)
		}
		if err := handler(ctx, e); err != nil {
			return err
		}
		metrics.EventsConsumed.WithLabelValues(topic).Inc()
		return nil
	})
}

// Run starts the router and blocks until ctx is cancelled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once every handler is subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight handlers.
func (r *Router) Close() error {
	return r.router.Close()
}

// ActivityLog is the default consumer: it writes every shop event to the
// structured log under the events component.
func ActivityLog(_ context.Context, e Event) error {
	log := logging.WithComponent("events")
	evt := log.Info().Str("topic", e.Topic()).Str("key", e.Key())
	switch v := e.(type) {
	case OrderPlaced:
		evt = evt.Int64("user_id", v.UserID).Int("items", len(v.ProductIDs)).Int64("time", v.Time)
	case ProductRated:
		evt = evt.Int64("user_id", v.UserID).Float64("value", v.Value)
	}
	evt.Msg("Shop event")
	return nil
}

// RegisterDefaultConsumers subscribes ActivityLog to every shop topic.
func (r *Router) RegisterDefaultConsumers() {
	r.AddConsumer("activity-log-orders", TopicOrderPlaced, ActivityLog)
	r.AddConsumer("activity-log-ratings", TopicProductRated, ActivityLog)
}
