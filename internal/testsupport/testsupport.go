// Package testsupport provides shared helpers for package tests: configs
// seeded with per-test temp directories and stores with registered cleanup.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"marquee/internal/config"
	"marquee/internal/media"
	"marquee/internal/store"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.APIKey = "test"
	cfg.Logging.Level = "error"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCatalogKey sets the catalog API key on the test config.
func WithCatalogKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.APIKey = key
	}
}

// WithLLMKey sets the generative service API key on the test config.
func WithLLMKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.APIKey = key
	}
}

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedRecord upserts a record into the store for tests.
func SeedRecord(t testing.TB, st *store.Store, record media.Record) media.Record {
	t.Helper()

	stored, err := st.Upsert(context.Background(), record.ID, record)
	if err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return stored
}
