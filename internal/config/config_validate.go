// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateStore,
		c.validateBreaker,
		c.validateSecurity,
		c.validateEvents,
		c.validateLogging,
		c.validateRecommend,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateStore validates the store backend and, for neo4j, its connection settings
func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendMemory:
		return nil
	case BackendNeo4j:
		return c.validateNeo4j()
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: %s, %s (got %q)", BackendNeo4j, BackendMemory, c.Store.Backend)
	}
}

var validNeo4jSchemes = map[string]bool{
	"neo4j": true, "neo4j+s": true, "neo4j+ssc": true,
	"bolt": true, "bolt+s": true, "bolt+ssc": true,
}

func (c *Config) validateNeo4j() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("NEO4J_URI is required when STORE_BACKEND is neo4j")
	}
	u, err := url.Parse(c.Neo4j.URI)
	if err != nil {
		return fmt.Errorf("NEO4J_URI is invalid: %w", err)
	}
	if !validNeo4jSchemes[u.Scheme] {
		return fmt.Errorf("NEO4J_URI scheme must be neo4j or bolt (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("NEO4J_URI must include a host")
	}
	if c.Neo4j.QueryTimeout <= 0 {
		return fmt.Errorf("NEO4J_QUERY_TIMEOUT must be positive")
	}
	if c.Neo4j.MaxConnectionPoolSize < 0 {
		return fmt.Errorf("NEO4J_MAX_CONNECTION_POOL_SIZE must not be negative")
	}
	return nil
}

// validateBreaker validates circuit breaker settings
func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

var validAuthModes = map[string]bool{
	AuthModeNone: true,
	AuthModeJWT:  true,
}

// validateSecurity validates authentication and rate limit settings
func (c *Config) validateSecurity() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt (got %q)", c.Security.AuthMode)
	}
	// Login issues tokens in every mode, so a secret is needed whenever one is
	// configured; jwt mode requires it.
	if c.Security.AuthMode == AuthModeJWT || c.Security.JWTSecret != "" {
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 || c.Security.WriteRateLimit <= 0 || c.Security.LoginRateLimit <= 0 {
		return fmt.Errorf("rate limits must be positive (or set DISABLE_RATE_LIMIT=true)")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// containsPlaceholder reports whether s looks like a value copied from an example file.
func containsPlaceholder(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range []string{"changeme", "change_me", "replace_with", "your_secret", "placeholder"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled || c.Events.NATSURL == "" {
		return nil
	}
	if c.Events.StreamName == "" || strings.ContainsAny(c.Events.StreamName, ".*> ") {
		return fmt.Errorf("EVENTS_STREAM_NAME must be non-empty and must not contain '.', '*', '>' or spaces")
	}
	return nil
}

var (
	validLogLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.TopRatedLimit < 0 || r.AlsoBoughtLimit < 0 || r.RecommendLimit < 0 || r.Neighbors < 0 {
		return fmt.Errorf("RECOMMEND_* limits must not be negative")
	}
	if r.MinShared != 0 && r.MinShared < 2 {
		return fmt.Errorf("RECOMMEND_MIN_SHARED must be at least 2")
	}
	return nil
}
