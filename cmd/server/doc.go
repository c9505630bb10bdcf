// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package main is the entry point for the LEGO shop server.

The server exposes the shop catalog, orders and recommendations over HTTP on
top of a property graph (Neo4j, or an in-memory graph for development).

# Application Architecture

Long-lived components run under a suture v4 supervisor tree:

	RootSupervisor ("lego-shop")
	├── DataSupervisor ("data-layer")
	│   ├── Store monitor (periodic graph store ping)
	│   └── Login limiter sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event router (OrderPlaced, ProductRated consumers)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Initialization order:

 1. Configuration: koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog with JSON or console output
 3. Graph store: Neo4j (schema constraints applied on start) or memory,
    behind a circuit breaker
 4. Events: watermill bus (in-process, or NATS JetStream when NATS_URL is set)
 5. Services: catalog, recommendations, orders, identity
 6. HTTP: chi router with request id, access log, CORS, rate limits, metrics
 7. Supervisor tree, until SIGINT or SIGTERM

# Configuration

	STORE_BACKEND=neo4j          # neo4j or memory
	NEO4J_URI=neo4j://localhost:7687
	NEO4J_USERNAME=neo4j
	NEO4J_PASSWORD=<password>
	HTTP_PORT=8000               # PORT also accepted
	AUTH_MODE=none               # none or jwt
	JWT_SECRET=<32+ chars>       # required for jwt mode
	NATS_URL=                    # empty keeps events in process
	LOG_LEVEL=info
	LOG_FORMAT=json

See package config for the full list.

# Endpoints

	GET  /                               welcome message
	GET  /categories, POST /categories
	GET  /products, POST /products
	GET  /products/most-rated?limit=N
	GET  /products/{id}
	GET  /products/{id}/also-bought
	POST /products/{id}/rate
	GET  /users/{id}/recommendations
	POST /users/register, POST /users/login
	POST /orders, GET /orders/history?user={id}
	GET  /health/live, /health/ready, /metrics
*/
package main
