// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/knadh/koanf/v2"
)

const testSecret = "k3J9w0cQe8Zq1Lr7Yt5Vx2Nb4Mh6Gd0Fs"

// isolate moves the test into an empty directory and clears the variables
// that would otherwise leak in from the host.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, name := range []string{ConfigPathEnvVar, "PORT", "URL", "NEO4J_USER", "HTTP_PORT", "NEO4J_URI", "NEO4J_USERNAME", "AUTH_MODE", "JWT_SECRET", "STORE_BACKEND"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendNeo4j {
		t.Errorf("Store.Backend = %q, want neo4j", cfg.Store.Backend)
	}
	if cfg.Neo4j.QueryTimeout != 10*time.Second {
		t.Errorf("Neo4j.QueryTimeout = %v, want 10s", cfg.Neo4j.QueryTimeout)
	}
	if cfg.Security.AuthMode != AuthModeNone {
		t.Errorf("Security.AuthMode = %q, want none", cfg.Security.AuthMode)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Errorf("Security.BcryptCost = %d, want 12", cfg.Security.BcryptCost)
	}
	if cfg.Security.WriteRateLimit != 30 {
		t.Errorf("Security.WriteRateLimit = %d, want 30", cfg.Security.WriteRateLimit)
	}
	if cfg.Recommend.Neighbors != 10 || cfg.Recommend.MinShared != 2 {
		t.Errorf("Recommend = %+v, want 10 neighbors and 2 shared", cfg.Recommend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"http_port", "server.port"},
		{"NEO4J_URI", "neo4j.uri"},
		{"NEO4J_QUERY_TIMEOUT", "neo4j.query_timeout"},
		{"STORE_BACKEND", "store.backend"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"NATS_URL", "events.nats_url"},
		{"RECOMMEND_NEIGHBORS", "recommend.neighbors"},
		{"LOG_FORMAT", "logging.format"},

		// Unmapped variables are dropped
		{"HOME", ""},
		{"PATH", ""},
		{"PORT", ""},
		{"USER", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApplyEnvAliases(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantPort any
		wantURI  any
	}{
		{
			name:     "alias used when canonical unset",
			env:      map[string]string{"PORT": "9090", "URL": "bolt://db:7687"},
			wantPort: "9090",
			wantURI:  "bolt://db:7687",
		},
		{
			name:     "canonical wins",
			env:      map[string]string{"PORT": "9090", "HTTP_PORT": "8080"},
			wantPort: nil,
			wantURI:  nil,
		},
		{
			name:     "empty alias ignored",
			env:      map[string]string{"PORT": ""},
			wantPort: nil,
			wantURI:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := koanf.New(".")
			lookup := func(name string) (string, bool) {
				v, ok := tt.env[name]
				return v, ok
			}
			if err := applyEnvAliases(k, lookup); err != nil {
				t.Fatalf("applyEnvAliases: %v", err)
			}
			if got := k.Get("server.port"); got != tt.wantPort {
				t.Errorf("server.port = %v, want %v", got, tt.wantPort)
			}
			if got := k.Get("neo4j.uri"); got != tt.wantURI {
				t.Errorf("neo4j.uri = %v, want %v", got, tt.wantURI)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	isolate(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty in empty directory", got)
	}

	if err := os.WriteFile("config.yaml", []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}

	t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() with missing CONFIG_PATH = %q, want fallback config.yaml", got)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NEO4J_QUERY_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("RECOMMEND_NEIGHBORS", "20")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Neo4j.QueryTimeout != 3*time.Second {
		t.Errorf("Neo4j.QueryTimeout = %v, want 3s", cfg.Neo4j.QueryTimeout)
	}
	if diff := cmp.Diff([]string{"https://shop.example", "https://admin.example"}, cfg.Security.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Recommend.Neighbors != 20 {
		t.Errorf("Recommend.Neighbors = %d, want 20", cfg.Recommend.Neighbors)
	}
	// Untouched values keep their defaults
	if cfg.Recommend.MinShared != 2 {
		t.Errorf("Recommend.MinShared = %d, want 2", cfg.Recommend.MinShared)
	}
}

func TestLoadWithKoanfAliases(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "7000")
	t.Setenv("URL", "bolt://graph:7687")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Neo4j.URI != "bolt://graph:7687" {
		t.Errorf("Neo4j.URI = %q, want bolt://graph:7687", cfg.Neo4j.URI)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	isolate(t)

	configContent := `
server:
  port: 8500
store:
  backend: memory
logging:
  level: warn
  format: console
recommend:
  top_rated_limit: 8
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 8500 {
		t.Errorf("Server.Port = %d, want 8500 from file", cfg.Server.Port)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console from file", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error from env", cfg.Logging.Level)
	}
	if cfg.Recommend.TopRatedLimit != 8 {
		t.Errorf("Recommend.TopRatedLimit = %d, want 8", cfg.Recommend.TopRatedLimit)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}},
		{"unknown backend", map[string]string{"STORE_BACKEND": "sqlite"}},
		{"jwt without secret", map[string]string{"AUTH_MODE": "jwt"}},
		{"short secret", map[string]string{"AUTH_MODE": "jwt", "JWT_SECRET": "short"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"zero query timeout", map[string]string{"NEO4J_QUERY_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadWithKoanf(); err == nil {
				t.Error("LoadWithKoanf() succeeded, want validation error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory backend skips neo4j", func(c *Config) {
			c.Store.Backend = BackendMemory
			c.Neo4j.URI = ""
		}, false},
		{"neo4j requires uri", func(c *Config) { c.Neo4j.URI = "" }, true},
		{"neo4j rejects http scheme", func(c *Config) { c.Neo4j.URI = "http://localhost:7474" }, true},
		{"neo4j+s accepted", func(c *Config) { c.Neo4j.URI = "neo4j+s://abc.databases.neo4j.io" }, false},
		{"jwt with secret", func(c *Config) {
			c.Security.AuthMode = AuthModeJWT
			c.Security.JWTSecret = testSecret
		}, false},
		{"placeholder secret", func(c *Config) {
			c.Security.AuthMode = AuthModeJWT
			c.Security.JWTSecret = "changeme-changeme-changeme-changeme"
		}, true},
		{"short secret in none mode", func(c *Config) { c.Security.JWTSecret = "short" }, true},
		{"unknown auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, true},
		{"bcrypt cost too low", func(c *Config) { c.Security.BcryptCost = 3 }, true},
		{"zero rate limit", func(c *Config) { c.Security.WriteRateLimit = 0 }, true},
		{"zero rate limit when disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.WriteRateLimit = 0
		}, false},
		{"stream name with dot", func(c *Config) {
			c.Events.NATSURL = "nats://localhost:4222"
			c.Events.StreamName = "shop.events"
		}, true},
		{"breaker ratio above one", func(c *Config) { c.Breaker.FailureRatio = 1.5 }, true},
		{"breaker disabled ignores ratio", func(c *Config) {
			c.Breaker.Enabled = false
			c.Breaker.FailureRatio = 0
		}, false},
		{"min shared below two", func(c *Config) { c.Recommend.MinShared = 1 }, true},
		{"console format", func(c *Config) { c.Logging.Format = "console" }, false},
		{"xml format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
