// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package graph

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/metrics"
	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	// Name labels the breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// MinRequests and FailureRatio decide when the breaker opens.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerConfig opens after 60% failures over at least 10 calls and
// retries after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "graph-store",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerStore wraps a Store with a circuit breaker and per-call metrics.
//
// Caller errors (not found, constraint violations, conflicts) pass through
// without counting as failures. While the breaker is open every call fails
// fast with ErrStoreUnavailable.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

var _ Store = (*BreakerStore)(nil)

// NewBreakerStore decorates next.
func NewBreakerStore(next Store, cfg BreakerConfig) *BreakerStore {
	d := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = d.Name
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = d.MaxRequests
	}
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = d.MinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = d.FailureRatio
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil || isCallerError(err) || isCancellation(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerStore{next: next, cb: cb, name: cfg.Name}
}

// State returns the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// execute runs fn through the breaker and records store metrics under op.
func (b *BreakerStore) execute(op string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := b.cb.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		err = opError(op, ErrStoreUnavailable)
	case isCancellation(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "cancelled").Inc()
	case err != nil && !isCallerError(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	}

	metrics.RecordStoreQuery(op, time.Since(start), ErrorKind(err))
	return result, err
}

// call adapts a typed store method to execute.
func call[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	result, err := b.execute(op, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := result.(T)
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func (b *BreakerStore) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	return call(b, "create_category", func() (models.Category, error) { return b.next.CreateCategory(ctx, name) })
}

func (b *BreakerStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return call(b, "list_categories", func() ([]models.Category, error) { return b.next.ListCategories(ctx) })
}

func (b *BreakerStore) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	return call(b, "create_product", func() (models.Product, error) { return b.next.CreateProduct(ctx, in) })
}

func (b *BreakerStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return call(b, "get_product", func() (models.Product, error) { return b.next.GetProduct(ctx, id) })
}

func (b *BreakerStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return call(b, "list_products", func() ([]models.Product, error) { return b.next.ListProducts(ctx) })
}

func (b *BreakerStore) RateProduct(ctx context.Context, productID, userID int64, value float64) (models.RatingAck, error) {
	return call(b, "rate_product", func() (models.RatingAck, error) { return b.next.RateProduct(ctx, productID, userID, value) })
}

func (b *BreakerStore) TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return call(b, "top_rated_products", func() ([]models.Product, error) { return b.next.TopRatedProducts(ctx, limit) })
}

func (b *BreakerStore) AlsoBoughtWith(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	return call(b, "also_bought_with", func() ([]models.Product, error) { return b.next.AlsoBoughtWith(ctx, productID, limit) })
}

func (b *BreakerStore) RecommendedFor(ctx context.Context, userID int64, params RecommendParams) ([]models.Product, error) {
	return call(b, "recommended_for", func() ([]models.Product, error) { return b.next.RecommendedFor(ctx, userID, params) })
}

func (b *BreakerStore) PlaceOrder(ctx context.Context, userID int64, productIDs []int64, at time.Time) (models.PlacedOrder, error) {
	return call(b, "place_order", func() (models.PlacedOrder, error) { return b.next.PlaceOrder(ctx, userID, productIDs, at) })
}

func (b *BreakerStore) OrderHistory(ctx context.Context, userID int64) ([]models.PlacedOrder, error) {
	return call(b, "order_history", func() ([]models.PlacedOrder, error) { return b.next.OrderHistory(ctx, userID) })
}

func (b *BreakerStore) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	return call(b, "create_user", func() (models.User, error) { return b.next.CreateUser(ctx, name, email, passwordHash) })
}

func (b *BreakerStore) UserByEmail(ctx context.Context, email string) (models.UserAccount, error) {
	return call(b, "user_by_email", func() (models.UserAccount, error) { return b.next.UserByEmail(ctx, email) })
}

// Ping bypasses the breaker so that readiness reflects the real store.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *BreakerStore) Close(ctx context.Context) error {
	return b.next.Close(ctx)
}
