// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package algorithms

import (
	"context"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// CoPurchased counts, for every product sharing at least one order with seed,
// the number of such orders, and returns the top limit products by that count.
//
// Each order is one basket of product ids. A product listed twice in the same
// basket still counts once for that order. The seed itself is never returned,
// and a seed that was never ordered yields an empty result.
func CoPurchased(ctx context.Context, orders [][]int64, seed int64, limit int) ([]Scored, error) {
	counts := make(map[int64]float64)

	for _, basket := range orders {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		ids := models.DedupeIDs(basket)
		if !contains(ids, seed) {
			continue
		}
		for _, id := range ids {
			if id != seed {
				counts[id]++
			}
		}
	}

	return rank(counts, limit), nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
