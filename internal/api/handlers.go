// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/auth"
	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// CatalogService is the catalog behavior the handlers need.
type CatalogService interface {
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	RateProduct(ctx context.Context, productID, userID int64, value float64) (models.RatingAck, error)
}

// RankingService serves the product rankings.
type RankingService interface {
	TopRated(ctx context.Context, limit int) ([]models.Product, error)
	AlsoBoughtWith(ctx context.Context, productID int64) ([]models.Product, error)
	RecommendedFor(ctx context.Context, userID int64) ([]models.Product, error)
}

// OrderService places orders and reads history.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, productIDs []int64) (models.PlacedOrder, error)
	OrderHistory(ctx context.Context, userID int64) ([]models.PlacedOrder, error)
}

// IdentityService registers and logs in users.
type IdentityService interface {
	Register(ctx context.Context, in models.RegisterInput, ip string) (models.User, error)
	Login(ctx context.Context, in models.LoginInput, ip string) (auth.Session, error)
}

// Pinger reports store reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the HTTP routes.
type Handler struct {
	catalog   CatalogService
	ranking   RankingService
	orders    OrderService
	identity  IdentityService
	authz     *auth.Middleware
	store     Pinger
	startTime time.Time

	// readyTimeout bounds the readiness probe's store ping.
	readyTimeout time.Duration
}

// Services bundles the handler dependencies.
type Services struct {
	Catalog  CatalogService
	Ranking  RankingService
	Orders   OrderService
	Identity IdentityService
	Auth     *auth.Middleware
	Store    Pinger
}

// NewHandler creates the route handlers.
func NewHandler(s Services) *Handler {
	authz := s.Auth
	if authz == nil {
		authz = auth.NewMiddleware(nil, "none")
	}
	return &Handler{
		catalog:      s.Catalog,
		ranking:      s.Ranking,
		orders:       s.Orders,
		identity:     s.Identity,
		authz:        authz,
		store:        s.Store,
		startTime:    time.Now(),
		readyTimeout: 2 * time.Second,
	}
}

// Welcome answers GET / with a plain banner outside the envelope.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Welcome to LEGO recommendation api"})
}

// authorize checks that the request may act as userID and writes the error
// response when not.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, userID int64) bool {
	if err := h.authz.Authorize(r.Context(), userID); err != nil {
		respondServiceError(w, r, err)
		return false
	}
	return true
}
