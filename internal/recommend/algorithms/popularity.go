// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package algorithms

import (
	"context"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// TopRated ranks products by the arithmetic mean of their ratings.
//
// Only products that appear in ratings are considered, so a product with no
// RATES edge is never ranked as if it had a zero score.
func TopRated(ctx context.Context, ratings []models.Rating, limit int) ([]Scored, error) {
	type acc struct {
		sum   float64
		count int
	}

	perProduct := make(map[int64]*acc)
	for i, r := range ratings {
		if i%1024 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		a := perProduct[r.ProductID]
		if a == nil {
			a = &acc{}
			perProduct[r.ProductID] = a
		}
		a.sum += r.Value
		a.count++
	}

	means := make(map[int64]float64, len(perProduct))
	for id, a := range perProduct {
		means[id] = a.sum / float64(a.count)
	}

	return rank(means, limit), nil
}
