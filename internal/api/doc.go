// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package api serves the shop's HTTP interface.

Every JSON response except the welcome banner uses one envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

# Routes

	GET  /                              welcome banner
	GET  /categories                    list categories
	POST /categories                    create a category
	GET  /products                      list products
	POST /products                      create a product
	GET  /products/most-rated           top rated products (?limit=)
	GET  /products/{id}                 one product
	POST /products/{id}/rate            rate a product
	GET  /products/{id}/also-bought     products bought together with {id}
	GET  /users/{id}/recommendations    recommendations for a user
	POST /users/register                create an account
	POST /users/login                   log in, returns a bearer token
	POST /orders                        place an order
	GET  /orders/history?user={id}      a user's orders, newest first
	GET  /health/live, /health/ready    probes
	GET  /metrics                       Prometheus exposition

# Error Mapping

Service errors are translated in one place (respondServiceError):

	validation failure          400 VALIDATION_ERROR
	bad credentials             401 UNAUTHORIZED
	token user mismatch         403 FORBIDDEN
	unknown id                  404 NOT_FOUND
	duplicate email             409 CONFLICT
	order/product references    422 CONSTRAINT_VIOLATION
	login attempts exhausted    429 TOO_MANY_REQUESTS
	store failure               500 INTERNAL_ERROR (generic message)
	store unreachable           503 SERVICE_UNAVAILABLE
*/
package api
