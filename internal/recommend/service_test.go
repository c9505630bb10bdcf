// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// fakeRanking records the arguments it was called with.
type fakeRanking struct {
	limit  int
	params graph.RecommendParams
}

func (f *fakeRanking) TopRatedProducts(_ context.Context, limit int) ([]models.Product, error) {
	f.limit = limit
	return nil, nil
}

func (f *fakeRanking) AlsoBoughtWith(_ context.Context, _ int64, limit int) ([]models.Product, error) {
	f.limit = limit
	return nil, nil
}

func (f *fakeRanking) RecommendedFor(_ context.Context, _ int64, params graph.RecommendParams) ([]models.Product, error) {
	f.params = params
	return nil, nil
}

func TestService_Limits(t *testing.T) {
	fake := &fakeRanking{}
	svc := NewService(fake, Config{AlsoBoughtLimit: 3, Neighbors: 4})

	tests := []struct {
		name  string
		call  func()
		limit int
	}{
		{"top rated default", func() { _, _ = svc.TopRated(t.Context(), 0) }, 5},
		{"top rated negative", func() { _, _ = svc.TopRated(t.Context(), -2) }, 5},
		{"top rated explicit", func() { _, _ = svc.TopRated(t.Context(), 12) }, 12},
		{"also bought configured", func() { _, _ = svc.AlsoBoughtWith(t.Context(), 1) }, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.call()
			if fake.limit != tt.limit {
				t.Errorf("limit = %d, want %d", fake.limit, tt.limit)
			}
		})
	}

	_, _ = svc.RecommendedFor(t.Context(), 1)
	want := graph.RecommendParams{Neighbors: 4, MinShared: 2, Limit: 5}
	if diff := cmp.Diff(want, fake.params); diff != "" {
		t.Errorf("RecommendedFor params mismatch (-want +got):\n%s", diff)
	}
}

func TestService_OverMemoryStore(t *testing.T) {
	store := graph.NewMemoryStore()
	ctx := t.Context()
	svc := NewService(store, DefaultConfig())

	c, _ := store.CreateCategory(ctx, "Creator")
	var p []models.Product
	for _, name := range []string{"Treehouse", "Lighthouse", "Castle"} {
		prod, err := store.CreateProduct(ctx, models.ProductInput{Name: name, Price: 1, CategoryID: c.ID})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		p = append(p, prod)
	}
	u, _ := store.CreateUser(ctx, "A", "a@example.com", "h")

	for _, basket := range [][]int64{{p[0].ID, p[1].ID}, {p[0].ID, p[1].ID, p[2].ID}} {
		if _, err := store.PlaceOrder(ctx, u.ID, basket, time.Now()); err != nil {
			t.Fatalf("PlaceOrder: %v", err)
		}
	}
	if _, err := store.RateProduct(ctx, p[2].ID, u.ID, 5); err != nil {
		t.Fatalf("RateProduct: %v", err)
	}

	bought, err := svc.AlsoBoughtWith(ctx, p[0].ID)
	if err != nil {
		t.Fatalf("AlsoBoughtWith: %v", err)
	}
	if diff := cmp.Diff([]models.Product{p[1], p[2]}, bought); diff != "" {
		t.Errorf("AlsoBoughtWith() mismatch (-want +got):\n%s", diff)
	}

	top, err := svc.TopRated(ctx, 0)
	if err != nil {
		t.Fatalf("TopRated: %v", err)
	}
	if diff := cmp.Diff([]models.Product{p[2]}, top); diff != "" {
		t.Errorf("TopRated() mismatch (-want +got):\n%s", diff)
	}

	recs, err := svc.RecommendedFor(ctx, u.ID)
	if err != nil {
		t.Fatalf("RecommendedFor: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("RecommendedFor() with no neighbors = %v, want empty", recs)
	}
}
