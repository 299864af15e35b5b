package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.MarketplaceURL != DefaultMarketplaceURL {
		t.Errorf("MarketplaceURL = %q, want default", cfg.MarketplaceURL)
	}
	if cfg.DefaultCommand != DefaultCommand {
		t.Errorf("DefaultCommand = %q, want default", cfg.DefaultCommand)
	}
	if cfg.CatalogTTL != DefaultCatalogTTL {
		t.Errorf("CatalogTTL = %v, want default", cfg.CatalogTTL)
	}
}

func TestLoadAppliesFileValues(t *testing.T) {
	path := writeConfig(t, `
marketplace_url: https://mirror.example.com
default_command: idea-ultimate
catalog_ttl: 90m
`)

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() returned error: %v", err)
	}
	if cfg.MarketplaceURL != "https://mirror.example.com" {
		t.Errorf("MarketplaceURL = %q", cfg.MarketplaceURL)
	}
	if cfg.DefaultCommand != "idea-ultimate" {
		t.Errorf("DefaultCommand = %q", cfg.DefaultCommand)
	}
	if cfg.CatalogTTL != 90*time.Minute {
		t.Errorf("CatalogTTL = %v, want 90m", cfg.CatalogTTL)
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, "default_command: idea-eap\n")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() returned error: %v", err)
	}
	if cfg.DefaultCommand != "idea-eap" {
		t.Errorf("DefaultCommand = %q", cfg.DefaultCommand)
	}
	if cfg.MarketplaceURL != DefaultMarketplaceURL {
		t.Errorf("MarketplaceURL = %q, want default", cfg.MarketplaceURL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken yaml", "marketplace_url: [unterminated\n"},
		{"unknown field", "marketplce_url: typo\n"},
		{"bad duration", "catalog_ttl: one day\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadFrom(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error for a malformed config file")
			}
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "marketplace_url: https://from-file.example.com\n")
	t.Setenv(EnvMarketplaceURL, "https://from-env.example.com")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() returned error: %v", err)
	}
	if cfg.MarketplaceURL != "https://from-env.example.com" {
		t.Errorf("env override lost: %q", cfg.MarketplaceURL)
	}
}

func TestEmptyFileIsValid(t *testing.T) {
	cfg, err := loadFrom(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty file should not error: %v", err)
	}
	if cfg.MarketplaceURL != DefaultMarketplaceURL {
		t.Errorf("MarketplaceURL = %q, want default", cfg.MarketplaceURL)
	}
}
