// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package graph

import (
	"fmt"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// fields is one result row (or one nested map inside a row) keyed by the
// column names the query declares. Every getter fails with ErrQueryFailed
// when the key is missing or holds an unexpected type, so a query/mapper
// mismatch surfaces as an error instead of a zero value.
type fields map[string]any

func missingField(key string) error {
	return fmt.Errorf("%w: result column %q missing", ErrQueryFailed, key)
}

func badField(key string, v any) error {
	return fmt.Errorf("%w: result column %q has type %T", ErrQueryFailed, key, v)
}

func (f fields) value(key string) (any, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, missingField(key)
	}
	return v, nil
}

func (f fields) Int64(key string) (int64, error) {
	v, err := f.value(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, badField(key, v)
	}
}

// Float accepts integers as well; seed data often stores whole prices as ints.
func (f fields) Float(key string) (float64, error) {
	v, err := f.value(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, badField(key, v)
	}
}

// OptionalFloat returns nil for a missing or null column.
func (f fields) OptionalFloat(key string) (*float64, error) {
	if v, ok := f[key]; !ok || v == nil {
		return nil, nil
	}
	n, err := f.Float(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f fields) String(key string) (string, error) {
	v, err := f.value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", badField(key, v)
	}
	return s, nil
}

// OptionalString returns "" for a null column.
func (f fields) OptionalString(key string) (string, error) {
	if v, ok := f[key]; !ok || v == nil {
		return "", nil
	}
	return f.String(key)
}

// Maps returns a list column of maps, as produced by collect({...}).
func (f fields) Maps(key string) ([]fields, error) {
	v, err := f.value(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, badField(key, v)
	}
	out := make([]fields, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, badField(fmt.Sprintf("%s[%d]", key, i), item)
		}
		out = append(out, fields(m))
	}
	return out, nil
}

// toProduct maps the product projection shared by all product queries.
func (f fields) toProduct() (models.Product, error) {
	var (
		p   models.Product
		err error
	)
	if p.ID, err = f.Int64("id"); err != nil {
		return p, err
	}
	if p.Name, err = f.String("name"); err != nil {
		return p, err
	}
	if p.Price, err = f.Float("price"); err != nil {
		return p, err
	}
	if p.Elements, err = f.Int64("elements"); err != nil {
		return p, err
	}
	if p.Minifigures, err = f.Int64("minifigures"); err != nil {
		return p, err
	}
	if p.ImageURL, err = f.OptionalString("imageUrl"); err != nil {
		return p, err
	}
	if p.Category, err = f.String("category"); err != nil {
		return p, err
	}
	return p, nil
}

func (f fields) toCategory() (models.Category, error) {
	id, err := f.Int64("id")
	if err != nil {
		return models.Category{}, err
	}
	name, err := f.String("name")
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{ID: id, Name: name}, nil
}

func (f fields) toUser() (models.User, error) {
	var (
		u   models.User
		err error
	)
	if u.ID, err = f.Int64("id"); err != nil {
		return u, err
	}
	if u.Name, err = f.String("name"); err != nil {
		return u, err
	}
	if u.Email, err = f.String("email"); err != nil {
		return u, err
	}
	return u, nil
}

func (f fields) toPlacedOrder() (models.PlacedOrder, error) {
	var (
		o   models.PlacedOrder
		err error
	)
	if o.ID, err = f.Int64("id"); err != nil {
		return o, err
	}
	if o.Time, err = f.Int64("time"); err != nil {
		return o, err
	}
	items, err := f.Maps("products")
	if err != nil {
		return o, err
	}
	o.Products = make([]models.OrderedProduct, 0, len(items))
	for _, item := range items {
		p, err := item.toProduct()
		if err != nil {
			return o, err
		}
		rating, err := item.OptionalFloat("rate")
		if err != nil {
			return o, err
		}
		o.Products = append(o.Products, models.OrderedProduct{Product: p, Rating: rating})
	}
	return o, nil
}

// mapRows applies fn to every row.
func mapRows[T any](rows []fields, fn func(fields) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := fn(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Int64s returns a list column of integers, as produced by collect(id(n)).
func (f fields) Int64s(key string) ([]int64, error) {
	v, err := f.value(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, badField(key, v)
	}
	out := make([]int64, 0, len(list))
	for i, item := range list {
		n, ok := item.(int64)
		if !ok {
			return nil, badField(fmt.Sprintf("%s[%d]", key, i), item)
		}
		out = append(out, n)
	}
	return out, nil
}
