// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package models defines the record types shared by the store, the services and
the HTTP layer.

Every record is a plain value snapshot: nothing here holds a reference back to
store state. Records that correspond to graph nodes expose Ref, which pairs the
store-assigned id with the node kind.

Node kinds:

  - User: id, name, email
  - Product: id, name, price, elements, minifigures, imageUrl, category name
  - Category: id, name
  - Order: id, time (epoch milliseconds)

Relationships: BELONGS_TO (Product to Category), PLACED (User to Order, with
time), CONTAINS (Order to Product, one per distinct product) and RATES (User to
Product, with value, upserted).
*/
package models
