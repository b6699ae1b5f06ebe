package config

import (
	"testing"

	"github.com/slighter12/go-lib/database/postgres"
)

func TestFinalize_RequiresPostgresSection(t *testing.T) {
	cfg := &Config{}

	if err := finalize(cfg); err == nil {
		t.Fatal("expected an error for a config without a postgres section")
	}
}

func TestFinalize_DefaultsMaxRequestBodySize(t *testing.T) {
	cfg := &Config{Postgres: &postgres.DBConn{}}

	if err := finalize(cfg); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.HTTP.MaxRequestBodySize != defaultMaxRequestBodySize {
		t.Fatalf("MaxRequestBodySize = %q, want %q", cfg.HTTP.MaxRequestBodySize, defaultMaxRequestBodySize)
	}
}
