// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package catalog manages categories, products and product ratings.
package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fadikk367/lego-shop-server/internal/events"
	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/metrics"
	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

// Service validates catalog requests before they reach the store.
type Service struct {
	store     graph.CatalogStore
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewService creates a catalog service. A nil publisher disables events.
func NewService(store graph.CatalogStore, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logging.WithComponent("catalog"),
	}
}

// CreateCategory creates a category named name, trimmed.
func (s *Service) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	in := models.CategoryInput{Name: strings.TrimSpace(name)}
	if err := validation.ValidateStruct(&in); err != nil {
		return models.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, in.Name)
	if err != nil {
		return models.Category{}, err
	}
	s.logger.Info().Int64("category_id", c.ID).Str("name", c.Name).Msg("Category created")
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateProduct creates a product in an existing category. An unknown
// category yields graph.ErrConstraintViolation.
func (s *Service) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	in.Normalize()
	if err := validation.ValidateStruct(&in); err != nil {
		return models.Product{}, err
	}
	p, err := s.store.CreateProduct(ctx, in)
	if err != nil {
		return models.Product{}, err
	}
	s.logger.Info().Int64("product_id", p.ID).Int64("category_id", in.CategoryID).Msg("Product created")
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// RateProduct records userID's rating of productID, replacing any earlier
// one, and publishes ProductRated.
func (s *Service) RateProduct(ctx context.Context, productID, userID int64, value float64) (models.RatingAck, error) {
	in := models.RateInput{UserID: userID, Value: value}
	if err := validation.ValidateStruct(&in); err != nil {
		return models.RatingAck{}, err
	}

	ack, err := s.store.RateProduct(ctx, productID, userID, value)
	if err != nil {
		return models.RatingAck{}, err
	}
	metrics.RatingsUpserted.Inc()

	events.PublishBestEffort(ctx, s.publisher, events.ProductRated{
		ProductID: productID,
		UserID:    userID,
		Value:     ack.Value,
	})
	return ack, nil
}
