// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package models

import (
	"fmt"
	"strings"
)

// Kind names the node label an id belongs to. Ids are only unique per kind
// as far as callers are concerned, so a bare int64 never travels alone in
// error messages or events.
type Kind string

const (
	KindUser     Kind = "User"
	KindProduct  Kind = "Product"
	KindCategory Kind = "Category"
	KindOrder    Kind = "Order"
)

// EntityRef is an id tagged with the kind of node it refers to.
type EntityRef struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

// Ref builds an EntityRef.
func Ref(kind Kind, id int64) EntityRef {
	return EntityRef{Kind: kind, ID: id}
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s(%d)", r.Kind, r.ID)
}

// User is a registered shop customer. The password hash never leaves the
// store through this type; see UserAccount.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the user's entity reference.
func (u User) Ref() EntityRef { return Ref(KindUser, u.ID) }

// UserAccount is a User together with its stored credential hash. It is only
// used by the login flow.
type UserAccount struct {
	User
	PasswordHash string `json:"-"`
}

// Category groups products. Every product belongs to exactly one.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ref returns the category's entity reference.
func (c Category) Ref() EntityRef { return Ref(KindCategory, c.ID) }

// Product is a read-only snapshot of a product node. Category is the name of
// the category reached through BELONGS_TO.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Elements    int64   `json:"elements"`
	Minifigures int64   `json:"minifigures"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"`
}

// Ref returns the product's entity reference.
func (p Product) Ref() EntityRef { return Ref(KindProduct, p.ID) }

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	CategoryID  int64   `json:"categoryId" validate:"required,gt=0"`
	Elements    int64   `json:"elements" validate:"gte=0"`
	Minifigures int64   `json:"minifigures" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,max=2048"`
}

// Normalize trims the free-text fields in place.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

// Rating bounds. Values outside are rejected before reaching the store.
const (
	MinRating = 1
	MaxRating = 5
)

// RatingAck acknowledges an upserted RATES edge.
type RatingAck struct {
	ID    int64   `json:"id"`
	Value float64 `json:"value"`
}

// Rating is one RATES edge, as consumed by the ranking algorithms.
type Rating struct {
	UserID    int64
	ProductID int64
	Value     float64
}

// OrderedProduct is a product inside an order. Rating holds the ordering
// user's own rating and is nil when the user has not rated the product (or
// when the order was just placed).
type OrderedProduct struct {
	Product
	Rating *float64 `json:"rate,omitempty"`
}

// PlacedOrder is an Order node with its timestamp (epoch milliseconds) and
// contained products.
type PlacedOrder struct {
	ID       int64            `json:"id"`
	Time     int64            `json:"time"`
	Products []OrderedProduct `json:"products"`
}

// Ref returns the order's entity reference.
func (o PlacedOrder) Ref() EntityRef { return Ref(KindOrder, o.ID) }

// ProductIDs returns the ids of the order's products in order.
func (o PlacedOrder) ProductIDs() []int64 {
	ids := make([]int64, len(o.Products))
	for i := range o.Products {
		ids[i] = o.Products[i].ID
	}
	return ids
}

// DedupeIDs returns ids with later duplicates removed, preserving the first
// occurrence order. An order holds one CONTAINS edge per distinct product.
func DedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
