// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package events

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Topics carrying shop domain events.
const (
	TopicOrderPlaced  = "shop.orders.placed"
	TopicProductRated = "shop.ratings.upserted"
)

// Event is a domain fact published after its store write committed.
type Event interface {
	// Topic is the topic the event is published on.
	Topic() string
	// Key identifies the entity the event is about, for logs and tracing.
	Key() string
}

// OrderPlaced is published after an order and all its edges were written.
type OrderPlaced struct {
	OrderID    int64   `json:"orderId"`
	UserID     int64   `json:"userId"`
	ProductIDs []int64 `json:"productIds"`
	Time       int64   `json:"time"`
}

func (e OrderPlaced) Topic() string { return TopicOrderPlaced }
func (e OrderPlaced) Key() string   { return fmt.Sprintf("order:%d", e.OrderID) }

// ProductRated is published after a RATES edge was created or updated.
type ProductRated struct {
	ProductID int64   `json:"productId"`
	UserID    int64   `json:"userId"`
	Value     float64 `json:"value"`
}

func (e ProductRated) Topic() string { return TopicProductRated }
func (e ProductRated) Key() string   { return fmt.Sprintf("product:%d", e.ProductID) }

// Decode unmarshals a payload received on topic into its event type.
func Decode(topic string, payload []byte) (Event, error) {
	switch topic {
	case TopicOrderPlaced:
		var e OrderPlaced
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		return e, nil
	case TopicProductRated:
		var e ProductRated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
}
