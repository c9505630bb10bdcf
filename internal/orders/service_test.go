// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Fadikk367/lego-shop-server/internal/events"
	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

type seeded struct {
	store    *graph.MemoryStore
	user     models.User
	products []models.Product
}

func seed(t *testing.T) seeded {
	t.Helper()
	ctx := t.Context()
	store := graph.NewMemoryStore()

	c, err := store.CreateCategory(ctx, "Friends")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	u, err := store.CreateUser(ctx, "Olivia", "olivia@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	s := seeded{store: store, user: u}
	for _, name := range []string{"Cafe", "Vet Clinic", "Treehouse"} {
		p, err := store.CreateProduct(ctx, models.ProductInput{Name: name, Price: 20, CategoryID: c.ID})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		s.products = append(s.products, p)
	}
	return s
}

func fixedClock(ms int64) Clock {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestService_PlaceOrder(t *testing.T) {
	s := seed(t)
	pub := &recordingPublisher{}
	svc := NewService(s.store, WithClock(fixedClock(1700000000000)), WithPublisher(pub))
	p := s.products

	order, err := svc.PlaceOrder(t.Context(), s.user.ID, []int64{p[1].ID, p[0].ID, p[1].ID})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if order.Time != 1700000000000 {
		t.Errorf("Time = %d, want clock value", order.Time)
	}
	want := []models.OrderedProduct{{Product: p[1]}, {Product: p[0]}}
	if diff := cmp.Diff(want, order.Products); diff != "" {
		t.Errorf("Products mismatch (-want +got):\n%s", diff)
	}
	if n := s.store.Counts()[graph.RelContains]; n != 2 {
		t.Errorf("CONTAINS edges = %d, want 2 after dedupe", n)
	}

	wantEvents := []events.Event{events.OrderPlaced{
		OrderID:    order.ID,
		UserID:     s.user.ID,
		ProductIDs: []int64{p[1].ID, p[0].ID},
		Time:       1700000000000,
	}}
	if diff := cmp.Diff(wantEvents, pub.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestService_PlaceOrderRejects(t *testing.T) {
	s := seed(t)
	pub := &recordingPublisher{}
	svc := NewService(s.store, WithPublisher(pub))

	tests := []struct {
		name     string
		userID   int64
		products []int64
		check    func(error) bool
	}{
		{
			name:     "empty order",
			userID:   s.user.ID,
			products: nil,
			check: func(err error) bool {
				var verr *validation.RequestValidationError
				return errors.As(err, &verr)
			},
		},
		{
			name:     "unknown product",
			userID:   s.user.ID,
			products: []int64{s.products[0].ID, s.products[1].ID, 999},
			check:    func(err error) bool { return errors.Is(err, graph.ErrConstraintViolation) },
		},
		{
			name:     "unknown user",
			userID:   7,
			products: []int64{s.products[0].ID},
			check:    func(err error) bool { return errors.Is(err, graph.ErrConstraintViolation) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.store.Counts()
			_, err := svc.PlaceOrder(t.Context(), tt.userID, tt.products)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(before, s.store.Counts()); diff != "" {
				t.Errorf("rejected order changed the graph (-before +after):\n%s", diff)
			}
		})
	}

	if len(pub.events) != 0 {
		t.Errorf("rejected orders published %d events", len(pub.events))
	}
}

func TestService_OrderHistory(t *testing.T) {
	s := seed(t)
	ms := int64(1000)
	svc := NewService(s.store, WithClock(func() time.Time {
		ms += 1000
		return time.UnixMilli(ms)
	}))
	ctx := t.Context()
	p := s.products

	first, err := svc.PlaceOrder(ctx, s.user.ID, []int64{p[0].ID})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	second, err := svc.PlaceOrder(ctx, s.user.ID, []int64{p[1].ID, p[2].ID})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if _, err := s.store.RateProduct(ctx, p[2].ID, s.user.ID, 3); err != nil {
		t.Fatalf("RateProduct: %v", err)
	}

	history, err := svc.OrderHistory(ctx, s.user.ID)
	if err != nil {
		t.Fatalf("OrderHistory: %v", err)
	}

	rating := 3.0
	want := []models.PlacedOrder{
		{ID: second.ID, Time: 3000, Products: []models.OrderedProduct{{Product: p[1]}, {Product: p[2], Rating: &rating}}},
		{ID: first.ID, Time: 2000, Products: []models.OrderedProduct{{Product: p[0]}}},
	}
	if diff := cmp.Diff(want, history); diff != "" {
		t.Errorf("OrderHistory() mismatch (-want +got):\n%s", diff)
	}

	empty, err := svc.OrderHistory(ctx, 123456)
	if err != nil {
		t.Fatalf("OrderHistory(unknown): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown user history = %v, want empty", empty)
	}
}
