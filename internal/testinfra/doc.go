// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run the graph database and the
// message broker the server talks to in production, so store and event tests
// exercise the real query engine and the real JetStream API.
//
// # Neo4j Container
//
//	func TestNeo4jStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    db, err := testinfra.NewNeo4jContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, db)
//
//	    store, err := graph.NewNeo4jStore(ctx, graph.Neo4jConfig{
//	        URI:      db.BoltURL,
//	        Username: db.Username,
//	        Password: db.Password,
//	    })
//	    // ...
//	}
//
// # NATS Container
//
// NewNATSContainer starts a JetStream-enabled nats-server and exposes its
// client URL for the event bus tests.
//
// # CI Considerations
//
// These tests require Docker and the `integration` build tag:
//
//	go test -tags integration ./...
//
// Tests are skipped gracefully if Docker is unavailable. First runs download
// the images; later runs use the local cache.
package testinfra
