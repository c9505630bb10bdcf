// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package config loads the shop server configuration.

Sources are layered with koanf, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, or config.yaml in the working
    directory, or /etc/lego-shop/config.yaml
 3. Environment variables listed in envMappings

# Environment Variables

Server:
  - HTTP_PORT (PORT also accepted): listen port (default: 8000)
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_TIMEOUT: request timeout (default: 30s)
  - ENVIRONMENT: development or production

Graph store:
  - STORE_BACKEND: neo4j or memory (default: neo4j)
  - NEO4J_URI (URL also accepted): bolt URI (default: neo4j://localhost:7687)
  - NEO4J_USERNAME, NEO4J_PASSWORD, NEO4J_DATABASE
  - NEO4J_QUERY_TIMEOUT: per-call timeout (default: 10s)
  - BREAKER_*: circuit breaker tuning

Security:
  - AUTH_MODE: none or jwt (default: none)
  - JWT_SECRET: HS256 signing secret, at least 32 characters in jwt mode
  - SESSION_TIMEOUT: token lifetime (default: 24h)
  - BCRYPT_COST: password hashing cost (default: 12)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated list

Events:
  - EVENTS_ENABLED (default: true), NATS_URL (empty selects the in-process bus)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config

import (
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Store     StoreConfig      `koanf:"store"`
	Neo4j     Neo4jConfig      `koanf:"neo4j"`
	Breaker   BreakerConfig    `koanf:"breaker"`
	Security  SecurityConfig   `koanf:"security"`
	Events    EventsConfig     `koanf:"events"`
	Logging   LoggingConfig    `koanf:"logging"`
	Recommend recommend.Config `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// StoreConfig selects the graph store implementation.
type StoreConfig struct {
	// Backend is "neo4j" or "memory". The memory graph does not survive a
	// restart and is meant for local development and demos.
	Backend string `koanf:"backend"`
}

// Store backends.
const (
	BackendNeo4j  = "neo4j"
	BackendMemory = "memory"
)

// Neo4jConfig holds the Neo4j connection settings
type Neo4jConfig struct {
	URI                   string        `koanf:"uri"`
	Username              string        `koanf:"username"`
	Password              string        `koanf:"password"`
	Database              string        `koanf:"database"`
	QueryTimeout          time.Duration `koanf:"query_timeout"`
	ConnectTimeout        time.Duration `koanf:"connect_timeout"`
	MaxConnectionPoolSize int           `koanf:"max_connection_pool_size"`
	EnsureSchema          bool          `koanf:"ensure_schema"`
}

// BreakerConfig tunes the circuit breaker in front of the store.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SecurityConfig holds authentication and rate limiting settings
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// WriteRateLimit caps mutating requests per IP per RateLimitWindow.
	WriteRateLimit int `koanf:"write_rate_limit"`

	// LoginRateLimit caps login attempts per IP per RateLimitWindow. The auth
	// service additionally limits attempts per email.
	LoginRateLimit int `koanf:"login_rate_limit"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// Authentication modes.
const (
	AuthModeNone = "none"
	AuthModeJWT  = "jwt"
)

// EventsConfig configures domain event publishing.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// NATSURL selects NATS JetStream. Empty keeps events in process.
	NATSURL    string `koanf:"nats_url"`
	StreamName string `koanf:"stream_name"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller adds file:line to every entry.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AuthEnabled reports whether bearer tokens are required.
func (c *SecurityConfig) AuthEnabled() bool {
	return c.AuthMode == AuthModeJWT
}
