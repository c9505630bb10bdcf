// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Fadikk367/lego-shop-server/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lego-shop/config.yaml",
	"/etc/lego-shop/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Store: StoreConfig{
			Backend: BackendNeo4j,
		},
		Neo4j: Neo4jConfig{
			URI:                   "neo4j://localhost:7687",
			Username:              "neo4j",
			Password:              "",
			Database:              "",
			QueryTimeout:          10 * time.Second,
			ConnectTimeout:        5 * time.Second,
			MaxConnectionPoolSize: 50,
			EnsureSchema:          true,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Security: SecurityConfig{
			AuthMode:          AuthModeNone,
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			BcryptCost:        12,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			WriteRateLimit:    30,
			LoginRateLimit:    10,
			CORSOrigins:       []string{"*"},
		},
		Events: EventsConfig{
			Enabled:    true,
			NATSURL:    "",
			StreamName: "SHOP",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: recommend.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := applyEnvAliases(k, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to apply environment aliases: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Graph store
	"store_backend":                  "store.backend",
	"neo4j_uri":                      "neo4j.uri",
	"neo4j_username":                 "neo4j.username",
	"neo4j_password":                 "neo4j.password",
	"neo4j_database":                 "neo4j.database",
	"neo4j_query_timeout":            "neo4j.query_timeout",
	"neo4j_connect_timeout":          "neo4j.connect_timeout",
	"neo4j_max_connection_pool_size": "neo4j.max_connection_pool_size",
	"neo4j_ensure_schema":            "neo4j.ensure_schema",

	// Circuit breaker
	"breaker_enabled":       "breaker.enabled",
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"write_rate_limit":    "security.write_rate_limit",
	"login_rate_limit":    "security.login_rate_limit",
	"cors_origins":        "security.cors_origins",

	// Events
	"events_enabled":     "events.enabled",
	"nats_url":           "events.nats_url",
	"events_stream_name": "events.stream_name",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendations
	"recommend_top_rated_limit":   "recommend.top_rated_limit",
	"recommend_also_bought_limit": "recommend.also_bought_limit",
	"recommend_limit":             "recommend.recommend_limit",
	"recommend_neighbors":         "recommend.neighbors",
	"recommend_min_shared":        "recommend.min_shared",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - NEO4J_URI -> neo4j.uri
//   - RECOMMEND_NEIGHBORS -> recommend.neighbors
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// envAlias is a short variable name accepted in place of a canonical one.
type envAlias struct {
	alias     string
	canonical string
	path      string
}

// envAliases are honored only when the canonical variable is unset. The
// platform-style PORT and URL names are common in container hosts.
var envAliases = []envAlias{
	{alias: "PORT", canonical: "HTTP_PORT", path: "server.port"},
	{alias: "URL", canonical: "NEO4J_URI", path: "neo4j.uri"},
	{alias: "NEO4J_USER", canonical: "NEO4J_USERNAME", path: "neo4j.username"},
}

func applyEnvAliases(k *koanf.Koanf, lookup func(string) (string, bool)) error {
	for _, a := range envAliases {
		if _, set := lookup(a.canonical); set {
			continue
		}
		val, ok := lookup(a.alias)
		if !ok || val == "" {
			continue
		}
		if err := k.Set(a.path, val); err != nil {
			return fmt.Errorf("failed to set %s from %s: %w", a.path, a.alias, err)
		}
	}
	return nil
}
