package config

import "os"

// Resolver yields the ClickHouse endpoint and database for each request.
// The environment is consulted on every call so that a reloaded .env takes
// effect on the next fetch; the static values are fallbacks.
type Resolver struct {
	URL      string
	Database string
}

// NewResolver returns a Resolver falling back to the values in cfg.
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		return &Resolver{URL: DefaultClickHouseURL, Database: DefaultClickHouseDatabase}
	}
	return &Resolver{URL: cfg.ClickHouseURL, Database: cfg.ClickHouseDatabase}
}

// Endpoint returns CLICKHOUSE_URL or the static fallback.
func (r *Resolver) Endpoint() string {
	if v := os.Getenv(EnvClickHouseURL); v != "" {
		return v
	}
	if r.URL == "" {
		return DefaultClickHouseURL
	}
	return r.URL
}

// DatabaseName returns CLICKHOUSE_DATABASE or the static fallback.
func (r *Resolver) DatabaseName() string {
	if v := os.Getenv(EnvClickHouseDatabase); v != "" {
		return v
	}
	if r.Database == "" {
		return DefaultClickHouseDatabase
	}
	return r.Database
}
