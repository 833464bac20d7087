package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("ReadTimeoutSec = %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.DefaultTopK != 5 {
		t.Errorf("DefaultTopK = %d, want 5", cfg.Search.DefaultTopK)
	}
	if cfg.Search.OverfetchFactor != 3 {
		t.Errorf("OverfetchFactor = %d, want 3", cfg.Search.OverfetchFactor)
	}
	if cfg.Search.OverfetchFloor != 10 {
		t.Errorf("OverfetchFloor = %d, want 10", cfg.Search.OverfetchFloor)
	}
	if cfg.Search.RecommendHeadroom != 1 {
		t.Errorf("RecommendHeadroom = %d, want 1", cfg.Search.RecommendHeadroom)
	}
	if cfg.Catalog.Path != "data/products.json" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Index.HNSWM != 32 || cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("HNSW defaults = %d/%d, want 32/400", cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Search.OverfetchFactor = 5
	cfg.ApplyDefaults()
	if cfg.Search.OverfetchFactor != 5 {
		t.Errorf("explicit OverfetchFactor overwritten: %d", cfg.Search.OverfetchFactor)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"no model", func(c *Config) { c.Embedding.Model = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SHOPSENSE_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${SHOPSENSE_TEST_KEY}")))
	if got != "api_key: secret" {
		t.Errorf("expandEnvVars = %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${SHOPSENSE_UNSET:-localhost:6379}")))
	if got != "addr: localhost:6379" {
		t.Errorf("expandEnvVars with default = %q", got)
	}
}
