// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Fadikk367/lego-shop-server/internal/auth"
	"github.com/Fadikk367/lego-shop-server/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. auth may be nil, which means no token handling.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	if authMW == nil {
		authMW = auth.NewMiddleware(nil, "none")
	}
	authMW.SetErrorWriter(writeAuthError)
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, auth: authMW, chiMiddleware: chiMW}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(router.auth.Authenticate)

		r.Get("/", h.Welcome)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", h.CreateCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", h.CreateProduct)
			r.Get("/most-rated", h.MostRated)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetProduct)
				r.Get("/also-bought", h.AlsoBought)
				r.With(router.chiMiddleware.RateLimitWrite(), router.auth.RequireAuth).Post("/rate", h.RateProduct)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/register", h.Register)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
			r.With(router.auth.RequireAuth).Get("/{id}/recommendations", h.Recommendations)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(router.auth.RequireAuth)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", h.PlaceOrder)
			r.Get("/history", h.OrderHistory)
		})
	})

	return r
}
