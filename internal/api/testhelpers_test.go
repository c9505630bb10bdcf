// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fadikk367/lego-shop-server/internal/auth"
	"github.com/Fadikk367/lego-shop-server/internal/catalog"
	"github.com/Fadikk367/lego-shop-server/internal/config"
	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/orders"
	"github.com/Fadikk367/lego-shop-server/internal/recommend"
)

const testJWTSecret = "api_test_secret_with_at_least_32_characters"

// testServer is a full router over an in-memory graph.
type testServer struct {
	handler http.Handler
	store   *graph.MemoryStore
	jwt     *auth.JWTManager
}

func newTestServer(t *testing.T, authMode string) *testServer {
	t.Helper()
	store := graph.NewMemoryStore()

	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testJWTSecret, SessionTimeout: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	identity, err := auth.NewService(store, jwtManager, auth.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatal(err)
	}
	authMW := auth.NewMiddleware(jwtManager, authMode)

	fixed := time.UnixMilli(1_700_000_000_000)
	h := NewHandler(Services{
		Catalog:  catalog.NewService(store, nil),
		Ranking:  recommend.NewService(store, recommend.DefaultConfig()),
		Orders:   orders.NewService(store, orders.WithClock(func() time.Time { return fixed })),
		Identity: identity,
		Auth:     authMW,
		Store:    store,
	})

	chiCfg := DefaultChiMiddlewareConfig()
	chiCfg.RateLimitDisabled = true
	router := NewRouter(h, authMW, NewChiMiddleware(chiCfg))

	return &testServer{handler: router.Setup(), store: store, jwt: jwtManager}
}

// envelope is APIResponse with Data left raw for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatal(err)
			}
			raw = string(b)
		}
		reader = bytes.NewReader([]byte(raw))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: response is not JSON: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

// seedCatalog creates one category, three products and two users.
func (s *testServer) seedCatalog(t *testing.T) (models.Category, []models.Product, []models.User) {
	t.Helper()
	ctx := t.Context()
	c, err := s.store.CreateCategory(ctx, "Technic")
	if err != nil {
		t.Fatal(err)
	}
	var products []models.Product
	for _, name := range []string{"Crane", "Excavator", "Bulldozer"} {
		p, err := s.store.CreateProduct(ctx, models.ProductInput{Name: name, Price: 99.99, CategoryID: c.ID, Elements: 1000})
		if err != nil {
			t.Fatal(err)
		}
		products = append(products, p)
	}
	var users []models.User
	for _, email := range []string{"ann@example.com", "ben@example.com"} {
		u, err := s.store.CreateUser(ctx, "user", email, "hash")
		if err != nil {
			t.Fatal(err)
		}
		users = append(users, u)
	}
	return c, products, users
}

func (s *testServer) tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	token, _, err := s.jwt.GenerateToken(u)
	if err != nil {
		t.Fatal(err)
	}
	return token
}
