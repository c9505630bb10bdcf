// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package algorithms

import (
	"context"
	"math"
	"sort"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// KNNConfig contains configuration for user-based collaborative filtering.
type KNNConfig struct {
	// K is the number of neighbors kept after ranking by similarity.
	K int

	// MinCommonItems is the minimum number of products both users must have
	// rated. Pearson correlation over a single pair is degenerate.
	MinCommonItems int

	// Limit is the number of recommended products returned.
	Limit int
}

// DefaultKNNConfig returns the shop's recommendation defaults.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		K:              10,
		MinCommonItems: 2,
		Limit:          5,
	}
}

func (c KNNConfig) withDefaults() KNNConfig {
	d := DefaultKNNConfig()
	if c.K <= 0 {
		c.K = d.K
	}
	if c.MinCommonItems < 2 {
		c.MinCommonItems = d.MinCommonItems
	}
	if c.Limit <= 0 {
		c.Limit = d.Limit
	}
	return c
}

// neighbor represents a similar user with their similarity score.
type neighbor struct {
	ID         int64
	Similarity float64
}

// userVectors indexes ratings as user -> product -> value.
func userVectors(ratings []models.Rating) map[int64]map[int64]float64 {
	vectors := make(map[int64]map[int64]float64)
	for _, r := range ratings {
		if vectors[r.UserID] == nil {
			vectors[r.UserID] = make(map[int64]float64)
		}
		vectors[r.UserID][r.ProductID] = r.Value
	}
	return vectors
}

func meanOf(vec map[int64]float64) float64 {
	if len(vec) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vec {
		sum += v
	}
	return sum / float64(len(vec))
}

// UserBasedCF recommends products to target from the ratings of its most
// similar users.
//
// Similarity is the Pearson correlation over the products both users rated,
// centered on each user's mean over all of their ratings:
//
//	nom   = sum_p (r1(p) - mean1) * (r2(p) - mean2)
//	denom = sqrt(sum_p (r1(p) - mean1)^2 * sum_p (r2(p) - mean2)^2)
//
// Users sharing fewer than MinCommonItems products, or with denom == 0, are
// not neighbors. The K most similar remain. Each product the target has not
// rated scores sum_n sim(target, n) * r(n, p) over neighbors that rated it.
func UserBasedCF(ctx context.Context, ratings []models.Rating, target int64, cfg KNNConfig) ([]Scored, error) {
	cfg = cfg.withDefaults()

	vectors := userVectors(ratings)
	targetVec := vectors[target]
	if len(targetVec) == 0 {
		return nil, nil
	}

	neighbors, err := computeUserNeighbors(ctx, vectors, target, cfg)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	scores := make(map[int64]float64)
	for _, n := range neighbors {
		for productID, value := range vectors[n.ID] {
			if _, rated := targetVec[productID]; rated {
				continue
			}
			scores[productID] += n.Similarity * value
		}
	}

	return rank(scores, cfg.Limit), nil
}

// computeUserNeighbors returns the K users most correlated with target.
func computeUserNeighbors(ctx context.Context, vectors map[int64]map[int64]float64, target int64, cfg KNNConfig) ([]neighbor, error) {
	targetVec := vectors[target]
	targetMean := meanOf(targetVec)

	neighbors := make([]neighbor, 0)
	for otherID, otherVec := range vectors {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		if otherID == target {
			continue
		}

		common := commonItems(targetVec, otherVec)
		if len(common) < cfg.MinCommonItems {
			continue
		}

		sim, ok := pearsonSim(targetVec, otherVec, targetMean, meanOf(otherVec), common)
		if !ok {
			continue
		}
		neighbors = append(neighbors, neighbor{ID: otherID, Similarity: sim})
	}

	// Sort by similarity (descending) and take top K
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	if len(neighbors) > cfg.K {
		neighbors = neighbors[:cfg.K]
	}

	return neighbors, nil
}

func commonItems(a, b map[int64]float64) []int64 {
	var common []int64
	for item := range a {
		if _, ok := b[item]; ok {
			common = append(common, item)
		}
	}
	return common
}

// pearsonSim reports false when the correlation is undefined.
func pearsonSim(a, b map[int64]float64, meanA, meanB float64, common []int64) (float64, bool) {
	var num, denA, denB float64
	for _, item := range common {
		diffA := a[item] - meanA
		diffB := b[item] - meanB
		num += diffA * diffB
		denA += diffA * diffA
		denB += diffB * diffB
	}

	denom := math.Sqrt(denA * denB)
	if denom == 0 {
		return 0, false
	}

	sim := num / denom
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, false
	}
	return sim, true
}
