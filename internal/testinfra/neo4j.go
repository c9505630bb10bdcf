// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNeo4jImage is the community edition used in development.
	DefaultNeo4jImage = "neo4j:5-community"

	// DefaultBoltPort is the Bolt protocol port inside the container.
	DefaultBoltPort = "7687"

	// DefaultNeo4jPassword is the initial password set through NEO4J_AUTH.
	// Neo4j 5 rejects passwords shorter than 8 characters.
	DefaultNeo4jPassword = "lego-shop-test"
)

// Neo4jContainer represents a running Neo4j container for testing.
type Neo4jContainer struct {
	testcontainers.Container
	BoltURL  string
	Username string
	Password string
}

// Neo4jOption configures the Neo4j container.
type Neo4jOption func(*neo4jConfig)

type neo4jConfig struct {
	image        string
	password     string
	startTimeout time.Duration
}

// WithNeo4jImage sets a custom Neo4j Docker image.
func WithNeo4jImage(image string) Neo4jOption {
	return func(c *neo4jConfig) {
		c.image = image
	}
}

// WithNeo4jPassword sets the password of the neo4j user.
func WithNeo4jPassword(password string) Neo4jOption {
	return func(c *neo4jConfig) {
		c.password = password
	}
}

// WithNeo4jStartTimeout sets the timeout for waiting for Bolt to accept connections.
func WithNeo4jStartTimeout(timeout time.Duration) Neo4jOption {
	return func(c *neo4jConfig) {
		c.startTimeout = timeout
	}
}

// NewNeo4jContainer creates and starts a new Neo4j container for testing.
func NewNeo4jContainer(ctx context.Context, opts ...Neo4jOption) (*Neo4jContainer, error) {
	cfg := &neo4jConfig{
		image:        DefaultNeo4jImage,
		password:     DefaultNeo4jPassword,
		startTimeout: 120 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultBoltPort + "/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH":                         "neo4j/" + cfg.password,
			"NEO4J_server_memory_heap_max__size": "512m",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultBoltPort+"/tcp"),
			wait.ForLog("Started."),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j container: %w", err)
	}

	url, err := container.PortEndpoint(ctx, DefaultBoltPort+"/tcp", "bolt")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get bolt endpoint: %w", err)
	}

	return &Neo4jContainer{
		Container: container,
		BoltURL:   url,
		Username:  "neo4j",
		Password:  cfg.password,
	}, nil
}
