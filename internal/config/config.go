// Package config loads the optional ideactl configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMarketplaceURL is the JetBrains plugin marketplace base URL.
	DefaultMarketplaceURL = "https://plugins.jetbrains.com"
	// DefaultCommand is used when no installed IDE can be located.
	DefaultCommand = "idea"
	// DefaultCatalogTTL is how long the popular-plugin catalog cache stays fresh.
	DefaultCatalogTTL = 24 * time.Hour

	// EnvMarketplaceURL overrides the marketplace base URL when set.
	EnvMarketplaceURL = "IDEACTL_MARKETPLACE_URL"
)

// Config is the resolved configuration after defaults, the config file
// and environment overrides have been applied.
type Config struct {
	MarketplaceURL string
	DefaultCommand string
	CatalogTTL     time.Duration
}

// fileConfig is the raw on-disk shape. Durations are strings so users
// can write "24h" or "90m".
type fileConfig struct {
	MarketplaceURL string `yaml:"marketplace_url"`
	DefaultCommand string `yaml:"default_command"`
	CatalogTTL     string `yaml:"catalog_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MarketplaceURL: DefaultMarketplaceURL,
		DefaultCommand: DefaultCommand,
		CatalogTTL:     DefaultCatalogTTL,
	}
}

// Path returns the config file location, derived from XDG_CONFIG_HOME
// with a ~/.config fallback.
func Path() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "ideactl", "config.yaml")
}

// Load resolves the configuration. A missing file is not an error; a
// malformed one is, since the file is user-authored. Environment
// overrides win over file values.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.MarketplaceURL != "" {
		cfg.MarketplaceURL = fc.MarketplaceURL
	}
	if fc.DefaultCommand != "" {
		cfg.DefaultCommand = fc.DefaultCommand
	}
	if fc.CatalogTTL != "" {
		ttl, err := time.ParseDuration(fc.CatalogTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid catalog_ttl %q: %w", fc.CatalogTTL, err)
		}
		cfg.CatalogTTL = ttl
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if url := os.Getenv(EnvMarketplaceURL); url != "" {
		cfg.MarketplaceURL = url
	}
}
