// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	ListenAddr  string
	DBPath      string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// HasGitHubToken reports whether a token is configured. Absence is valid:
// requests run unauthenticated at GitHub's lower rate limit.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. CONTRIBLENS_GITHUB_TOKEN is optional. Optional variables with
// defaults: CONTRIBLENS_LISTEN_ADDR (127.0.0.1:8080), CONTRIBLENS_DB_PATH
// (contriblens.db), CONTRIBLENS_CACHE_TTL (5m), CONTRIBLENS_HTTP_TIMEOUT (10s).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken: os.Getenv("CONTRIBLENS_GITHUB_TOKEN"),
		ListenAddr:  "127.0.0.1:8080",
		DBPath:      "contriblens.db",
		CacheTTL:    5 * time.Minute,
		HTTPTimeout: 10 * time.Second,
	}

	if v, ok := os.LookupEnv("CONTRIBLENS_LISTEN_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("CONTRIBLENS_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("CONTRIBLENS_CACHE_TTL"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CONTRIBLENS_CACHE_TTL has invalid duration %q: %w", v, err)
		}
		cfg.CacheTTL = parsed
	}

	if v, ok := os.LookupEnv("CONTRIBLENS_HTTP_TIMEOUT"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CONTRIBLENS_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	return cfg, nil
}
