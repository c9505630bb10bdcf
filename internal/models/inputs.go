// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package models

import "strings"

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// RateInput is the payload for rating a product.
type RateInput struct {
	UserID int64   `json:"userId" validate:"required,gt=0"`
	Value  float64 `json:"value" validate:"rating"`
}

// OrderInput is the payload for placing an order. Products may be sent either
// as a list of {id} objects or as a flat id list; IDs merges both.
type OrderInput struct {
	UserID     int64     `json:"userId" validate:"required,gt=0"`
	Products   []OrderID `json:"products,omitempty" validate:"omitempty,dive"`
	ProductIDs []int64   `json:"productIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// OrderID is one entry of OrderInput.Products.
type OrderID struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// IDs returns every referenced product id, object entries first.
func (in OrderInput) IDs() []int64 {
	ids := make([]int64, 0, len(in.Products)+len(in.ProductIDs))
	for _, p := range in.Products {
		ids = append(ids, p.ID)
	}
	return append(ids, in.ProductIDs...)
}

// RegisterInput is the payload for creating an account. bcrypt ignores bytes
// past 72, so longer passwords are rejected instead of silently truncated.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Normalize trims the name and canonicalizes the email.
func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
}

// LoginInput is the payload for logging in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NormalizeEmail lowercases and trims an email address. Emails are stored
// and looked up in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
