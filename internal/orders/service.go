// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package orders places orders and reads a user's order history.
package orders

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fadikk367/lego-shop-server/internal/events"
	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/metrics"
	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Service places orders.
type Service struct {
	store     graph.OrderStore
	publisher events.Publisher
	now       Clock
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the order timestamp source.
func WithClock(now Clock) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithPublisher sets the publisher for OrderPlaced events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewService creates an order service.
func NewService(store graph.OrderStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: events.NopPublisher{},
		now:       time.Now,
		logger:    logging.WithComponent("orders"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder creates an order for userID containing productIDs. Duplicate
// ids collapse to a single line. If the user or any product does not exist
// the call fails with graph.ErrConstraintViolation and nothing is written.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, productIDs []int64) (models.PlacedOrder, error) {
	if len(productIDs) == 0 {
		return models.PlacedOrder{}, validation.NewError("products", "min", "order must contain at least one product")
	}
	in := models.OrderInput{UserID: userID, ProductIDs: productIDs}
	if err := validation.ValidateStruct(&in); err != nil {
		return models.PlacedOrder{}, err
	}

	ids := models.DedupeIDs(productIDs)
	order, err := s.store.PlaceOrder(ctx, userID, ids, s.now())
	if err != nil {
		return models.PlacedOrder{}, err
	}

	metrics.RecordOrderPlaced(len(ids))
	logging.Ctx(ctx).Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int("items", len(ids)).
		Msg("Order placed")

	events.PublishBestEffort(ctx, s.publisher, events.OrderPlaced{
		OrderID:    order.ID,
		UserID:     userID,
		ProductIDs: order.ProductIDs(),
		Time:       order.Time,
	})
	return order, nil
}

// OrderHistory returns userID's orders, newest first, each product carrying
// the user's own rating when one exists. An unknown user has no orders.
func (s *Service) OrderHistory(ctx context.Context, userID int64) ([]models.PlacedOrder, error) {
	history, err := s.store.OrderHistory(ctx, userID)
	if err != nil {
		s.logger.Debug().Err(err).Int64("user_id", userID).Msg("Order history failed")
		return nil, err
	}
	return history, nil
}
