// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package algorithms implements the ranking functions behind the shop's
// recommendation endpoints.
//
// Every function is pure: it takes the relevant slice of the graph (ratings
// or order contents) and returns ranked ids. The in-memory store feeds them
// from its adjacency lists; the Neo4j store expresses the same rules in Cypher.
//
//   - TopRated: mean rating per product
//   - CoPurchased: number of orders shared with a seed product
//   - UserBasedCF: Pearson user-KNN with score-weighted aggregation
package algorithms

import (
	"context"
	"sort"
)

// Scored is an id with the score it was ranked by.
type Scored struct {
	ID    int64
	Score float64
}

// IDs returns the ids of scored in rank order.
func IDs(scored []Scored) []int64 {
	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	return ids
}

// rank orders scores descending and keeps at most limit entries.
// Equal scores fall back to ascending id so results are reproducible.
func rank(scores map[int64]float64, limit int) []Scored {
	scored := make([]Scored, 0, len(scores))
	for id, score := range scores {
		scored = append(scored, Scored{ID: id, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// ContextCancelled checks if the context has been cancelled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
