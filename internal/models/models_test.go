// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestDedupeIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want []int64
	}{
		{name: "empty", in: nil, want: []int64{}},
		{name: "no duplicates", in: []int64{3, 1, 2}, want: []int64{3, 1, 2}},
		{name: "keeps first occurrence", in: []int64{2, 1, 2, 3, 1}, want: []int64{2, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DedupeIDs(tt.in)); diff != "" {
				t.Errorf("DedupeIDs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntityRef_String(t *testing.T) {
	p := Product{ID: 42}
	if got := p.Ref().String(); got != "Product(42)" {
		t.Errorf("Ref().String() = %q, want %q", got, "Product(42)")
	}
	if got := (User{ID: 7}).Ref(); got.Kind != KindUser || got.ID != 7 {
		t.Errorf("User.Ref() = %+v", got)
	}
}

func TestOrderedProduct_JSON(t *testing.T) {
	rating := 4.0
	order := PlacedOrder{
		ID:   10,
		Time: 1700000000000,
		Products: []OrderedProduct{
			{Product: Product{ID: 1, Name: "Bookshop", Category: "Modular"}, Rating: &rating},
			{Product: Product{ID: 2, Name: "Police Station", Category: "Modular"}},
		},
	}

	data, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	products := decoded["products"].([]any)
	first := products[0].(map[string]any)
	if first["rate"] != 4.0 {
		t.Errorf("first product rate = %v, want 4", first["rate"])
	}
	if first["name"] != "Bookshop" {
		t.Errorf("embedded product fields not flattened: %v", first)
	}
	if _, ok := products[1].(map[string]any)["rate"]; ok {
		t.Error("unrated product should omit rate")
	}
}

func TestProductInput_Normalize(t *testing.T) {
	in := ProductInput{Name: "  Bookshop ", ImageURL: " http://img/1.png\n"}
	in.Normalize()
	if in.Name != "Bookshop" || in.ImageURL != "http://img/1.png" {
		t.Errorf("Normalize() = %+v", in)
	}
}
