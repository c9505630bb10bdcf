// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package recommend serves the three product rankings: top rated,
// bought together, and recommended for a user.
//
// The heavy lifting happens in the store (Cypher aggregation for Neo4j, the
// algorithms package for the in-memory graph). Service applies the
// configured limits and neighbor counts.
package recommend

import (
	"context"

	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// Config holds ranking limits.
type Config struct {
	TopRatedLimit   int `koanf:"top_rated_limit"`
	AlsoBoughtLimit int `koanf:"also_bought_limit"`
	RecommendLimit  int `koanf:"recommend_limit"`
	Neighbors       int `koanf:"neighbors"`
	MinShared       int `koanf:"min_shared"`
}

// DefaultConfig returns five results per ranking and ten neighbors sharing
// at least two ratings.
func DefaultConfig() Config {
	return Config{
		TopRatedLimit:   5,
		AlsoBoughtLimit: 5,
		RecommendLimit:  5,
		Neighbors:       10,
		MinShared:       2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopRatedLimit <= 0 {
		c.TopRatedLimit = d.TopRatedLimit
	}
	if c.AlsoBoughtLimit <= 0 {
		c.AlsoBoughtLimit = d.AlsoBoughtLimit
	}
	if c.RecommendLimit <= 0 {
		c.RecommendLimit = d.RecommendLimit
	}
	if c.Neighbors <= 0 {
		c.Neighbors = d.Neighbors
	}
	if c.MinShared < 2 {
		c.MinShared = d.MinShared
	}
	return c
}

// Service ranks products.
type Service struct {
	store graph.RankingStore
	cfg   Config
}

// NewService creates a ranking service. Zero config fields take defaults.
func NewService(store graph.RankingStore, cfg Config) *Service {
	return &Service{store: store, cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// TopRated returns up to limit products with at least one rating, by mean
// rating descending. limit <= 0 uses the configured default.
func (s *Service) TopRated(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = s.cfg.TopRatedLimit
	}
	return s.store.TopRatedProducts(ctx, limit)
}

// AlsoBoughtWith returns the products most often ordered together with
// productID, by number of shared orders. An unknown product yields none.
func (s *Service) AlsoBoughtWith(ctx context.Context, productID int64) ([]models.Product, error) {
	return s.store.AlsoBoughtWith(ctx, productID, s.cfg.AlsoBoughtLimit)
}

// RecommendedFor returns products userID has not rated, scored by the
// ratings of the most similar users. An unknown user yields none.
func (s *Service) RecommendedFor(ctx context.Context, userID int64) ([]models.Product, error) {
	return s.store.RecommendedFor(ctx, userID, graph.RecommendParams{
		Neighbors: s.cfg.Neighbors,
		MinShared: s.cfg.MinShared,
		Limit:     s.cfg.RecommendLimit,
	})
}
