// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package graph is the shop's graph store adapter.
//
// Store is the only way the rest of the server touches catalog, order and
// rating state. Two implementations exist:
//
//   - Neo4jStore runs parameterized Cypher through the official driver. Every
//     call opens its own session, runs one managed transaction and closes the
//     session on every exit path.
//   - MemoryStore keeps the same graph in process as adjacency lists indexed
//     by relationship kind and ranks with the recommend/algorithms functions.
//
// BreakerStore decorates either one with a circuit breaker and query metrics.
//
// All errors returned by a Store satisfy errors.Is against exactly one of
// ErrStoreUnavailable, ErrQueryFailed, ErrNotFound or ErrConflict
// (ErrConstraintViolation is a refinement of ErrQueryFailed).
//
// Unknown-id policy, applied by every implementation:
//
//   - lookups of a single entity (GetProduct) and RateProduct: ErrNotFound
//   - writes that link to other entities (CreateProduct, PlaceOrder):
//     ErrConstraintViolation, and nothing is written
//   - rankings and listings keyed by an id (AlsoBoughtWith, RecommendedFor,
//     OrderHistory): an empty result
package graph

import (
	"context"
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// Relationship kinds.
const (
	RelBelongsTo = "BELONGS_TO"
	RelPlaced    = "PLACED"
	RelContains  = "CONTAINS"
	RelRates     = "RATES"
)

// RecommendParams bounds the similarity recommender.
type RecommendParams struct {
	// Neighbors is the size of the neighbor set.
	Neighbors int
	// MinShared is the minimum number of co-rated products for a neighbor.
	MinShared int
	// Limit is the number of products returned.
	Limit int
}

// DefaultRecommendParams returns 10 neighbors, 2 shared ratings, 5 results.
func DefaultRecommendParams() RecommendParams {
	return RecommendParams{Neighbors: 10, MinShared: 2, Limit: 5}
}

func (p RecommendParams) withDefaults() RecommendParams {
	d := DefaultRecommendParams()
	if p.Neighbors <= 0 {
		p.Neighbors = d.Neighbors
	}
	if p.MinShared < 2 {
		p.MinShared = d.MinShared
	}
	if p.Limit <= 0 {
		p.Limit = d.Limit
	}
	return p
}

// CatalogStore covers categories, products and ratings.
type CatalogStore interface {
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	RateProduct(ctx context.Context, productID, userID int64, value float64) (models.RatingAck, error)
}

// RankingStore covers the three analytical queries.
type RankingStore interface {
	TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error)
	AlsoBoughtWith(ctx context.Context, productID int64, limit int) ([]models.Product, error)
	RecommendedFor(ctx context.Context, userID int64, params RecommendParams) ([]models.Product, error)
}

// OrderStore covers order placement and history.
type OrderStore interface {
	// PlaceOrder writes the Order node, its PLACED edge and one CONTAINS edge
	// per distinct product atomically. productIDs must already be deduplicated.
	PlaceOrder(ctx context.Context, userID int64, productIDs []int64, at time.Time) (models.PlacedOrder, error)
	OrderHistory(ctx context.Context, userID int64) ([]models.PlacedOrder, error)
}

// UserStore covers registration and credential lookup.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.UserAccount, error)
}

// Store is the full adapter contract.
type Store interface {
	CatalogStore
	RankingStore
	OrderStore
	UserStore

	// Ping checks that the store answers queries.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// epochMillis converts t to the order timestamp representation.
func epochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
