// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package algorithms

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

func r(user, product int64, value float64) models.Rating {
	return models.Rating{UserID: user, ProductID: product, Value: value}
}

func TestTopRated(t *testing.T) {
	tests := []struct {
		name    string
		ratings []models.Rating
		limit   int
		want    []int64
	}{
		{
			name:    "no ratings",
			ratings: nil,
			limit:   5,
			want:    []int64{},
		},
		{
			name: "orders by mean not by count",
			ratings: []models.Rating{
				r(1, 10, 5), r(2, 10, 1), // mean 3
				r(1, 11, 4),                           // mean 4
				r(1, 12, 2), r(2, 12, 2), r(3, 12, 2), // mean 2
			},
			limit: 5,
			want:  []int64{11, 10, 12},
		},
		{
			name: "truncates to limit",
			ratings: []models.Rating{
				r(1, 1, 1), r(1, 2, 2), r(1, 3, 3), r(1, 4, 4),
			},
			limit: 2,
			want:  []int64{4, 3},
		},
		{
			name: "ties break by id",
			ratings: []models.Rating{
				r(1, 9, 4), r(1, 3, 4),
			},
			limit: 5,
			want:  []int64{3, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TopRated(context.Background(), tt.ratings, tt.limit)
			if err != nil {
				t.Fatalf("TopRated() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, IDs(got)); diff != "" {
				t.Errorf("TopRated() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTopRated_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := TopRated(ctx, []models.Rating{r(1, 1, 5)}, 5); err == nil {
		t.Error("expected context error")
	}
}

func TestCoPurchased(t *testing.T) {
	tests := []struct {
		name   string
		orders [][]int64
		seed   int64
		want   []Scored
	}{
		{
			name:   "ranks by shared order count",
			orders: [][]int64{{1, 2}, {1, 3}, {1, 2}},
			seed:   1,
			want:   []Scored{{ID: 2, Score: 2}, {ID: 3, Score: 1}},
		},
		{
			name:   "seed never ordered",
			orders: [][]int64{{2, 3}},
			seed:   1,
			want:   []Scored{},
		},
		{
			name:   "ignores orders without seed",
			orders: [][]int64{{1, 2}, {2, 3}, {3, 4}},
			seed:   1,
			want:   []Scored{{ID: 2, Score: 1}},
		},
		{
			name:   "duplicates inside a basket count once",
			orders: [][]int64{{1, 2, 2, 1}},
			seed:   1,
			want:   []Scored{{ID: 2, Score: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoPurchased(context.Background(), tt.orders, tt.seed, 5)
			if err != nil {
				t.Fatalf("CoPurchased() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CoPurchased() mismatch (-want +got):\n%s", diff)
			}
			for _, s := range got {
				if s.ID == tt.seed {
					t.Errorf("seed %d returned in its own results", tt.seed)
				}
			}
		})
	}
}

func TestCoPurchased_Limit(t *testing.T) {
	orders := [][]int64{{1, 2, 3, 4, 5, 6, 7, 8}}
	got, err := CoPurchased(context.Background(), orders, 1, 5)
	if err != nil {
		t.Fatalf("CoPurchased() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

// Target user 1 rated p1=5, p2=3 (mean 4).
var knnRatings = []models.Rating{
	r(1, 1, 5), r(1, 2, 3),
	r(2, 1, 4), r(2, 2, 5), r(2, 3, 5), // anti-correlated with 1
	r(3, 1, 1), r(3, 2, 1), r(3, 3, 2), // zero correlation with 1
	r(4, 1, 5), r(4, 2, 2), r(4, 4, 4), // positively correlated with 1
}

func TestUserBasedCF(t *testing.T) {
	got, err := UserBasedCF(context.Background(), knnRatings, 1, DefaultKNNConfig())
	if err != nil {
		t.Fatalf("UserBasedCF() error = %v", err)
	}

	simU2 := -1 / math.Sqrt(2*5.0/9)
	simU4 := 3 / math.Sqrt(2*41.0/9)
	want := []Scored{
		{ID: 4, Score: simU4 * 4},
		{ID: 3, Score: simU2*5 + 0*2},
	}

	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b float64) bool {
		return math.Abs(a-b) < 1e-9
	})); diff != "" {
		t.Errorf("UserBasedCF() mismatch (-want +got):\n%s", diff)
	}

	for _, s := range got {
		if s.ID == 1 || s.ID == 2 {
			t.Errorf("recommended product %d already rated by target", s.ID)
		}
		if math.IsNaN(s.Score) {
			t.Errorf("NaN score for product %d", s.ID)
		}
	}
}

func TestUserBasedCF_EmptyCases(t *testing.T) {
	tests := []struct {
		name    string
		ratings []models.Rating
		target  int64
	}{
		{
			name:    "target has no ratings",
			ratings: knnRatings,
			target:  99,
		},
		{
			name:    "empty graph",
			ratings: nil,
			target:  1,
		},
		{
			name: "single shared product is not enough",
			ratings: []models.Rating{
				r(1, 1, 5), r(1, 2, 1),
				r(2, 1, 4), r(2, 5, 5),
			},
			target: 1,
		},
		{
			name: "target has no variance",
			ratings: []models.Rating{
				r(1, 1, 3), r(1, 2, 3),
				r(2, 1, 4), r(2, 2, 1), r(2, 5, 5),
			},
			target: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserBasedCF(context.Background(), tt.ratings, tt.target, DefaultKNNConfig())
			if err != nil {
				t.Fatalf("UserBasedCF() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("UserBasedCF() = %v, want empty", got)
			}
		})
	}
}

func TestComputeUserNeighbors_CapsAtK(t *testing.T) {
	ratings := []models.Rating{r(1, 1, 5), r(1, 2, 1)}
	for u := int64(2); u <= 20; u++ {
		ratings = append(ratings, r(u, 1, 5), r(u, 2, 1), r(u, 100+u, 3))
	}

	cfg := KNNConfig{K: 3}.withDefaults()
	neighbors, err := computeUserNeighbors(context.Background(), userVectors(ratings), 1, cfg)
	if err != nil {
		t.Fatalf("computeUserNeighbors() error = %v", err)
	}
	if len(neighbors) != 3 {
		t.Fatalf("len(neighbors) = %d, want 3", len(neighbors))
	}
	for i := 1; i < len(neighbors); i++ {
		if neighbors[i].Similarity > neighbors[i-1].Similarity {
			t.Errorf("neighbors not sorted descending: %v", neighbors)
		}
	}
}

func TestKNNConfig_WithDefaults(t *testing.T) {
	cfg := KNNConfig{MinCommonItems: 1}.withDefaults()
	if cfg.K != 10 || cfg.MinCommonItems != 2 || cfg.Limit != 5 {
		t.Errorf("withDefaults() = %+v", cfg)
	}
}
