package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// catalogFile is the on-disk shape of the popular-catalog cache.
type catalogFile struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Plugins   []Plugin  `json:"plugins"`
}

// Cache persists sweep results so the selector can open without
// re-fetching forty categories.
type Cache struct {
	dir    string
	path   string
	ttl    time.Duration
	logger *log.Logger
}

// NewCache creates a catalog cache rooted at cacheDir.
func NewCache(cacheDir string, ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{
		dir:    cacheDir,
		path:   filepath.Join(cacheDir, "catalog.json"),
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached catalog and whether it is stale. Missing or
// unreadable caches count as stale with no plugins.
func (cc *Cache) Load() ([]Plugin, bool) {
	info, err := os.Stat(cc.path)
	if err != nil {
		return nil, true
	}

	data, err := os.ReadFile(cc.path)
	if err != nil {
		cc.logger.Debug("Failed to read catalog cache", "error", err)
		return nil, true
	}

	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		cc.logger.Debug("Failed to parse catalog cache", "error", err)
		return nil, true
	}

	age := time.Since(info.ModTime())
	if age < cc.ttl {
		cc.logger.Debug("Using cached catalog",
			"age", age.Round(time.Minute), "plugins", len(cf.Plugins))
		return cf.Plugins, false
	}

	cc.logger.Debug("Catalog cache is stale", "age", age.Round(time.Hour))
	return cf.Plugins, true
}

// Save writes the catalog cache.
func (cc *Cache) Save(plugins []Plugin) error {
	if err := os.MkdirAll(cc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(catalogFile{
		FetchedAt: time.Now().UTC(),
		Plugins:   plugins,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(cc.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// GetCatalog returns the popular catalog, serving a fresh cache when
// possible. forceRefresh bypasses the TTL check. A sweep that fails or
// comes back empty falls back to stale cached data when any exists, so
// an offline run still has a catalog.
func GetCatalog(ctx context.Context, client *Client, cache *Cache, forceRefresh bool, onProgress ProgressFunc) ([]Plugin, error) {
	cached, stale := cache.Load()
	if cached != nil && !stale && !forceRefresh {
		return cached, nil
	}

	fresh, err := client.FetchPopular(ctx, onProgress)
	if err != nil || len(fresh) == 0 {
		if len(cached) > 0 {
			client.logger.Warn("Catalog sweep failed, using stale cache",
				"error", err, "plugins", len(cached))
			return cached, nil
		}
		if err == nil {
			err = errors.New("sweep returned no plugins")
		}
		return nil, fmt.Errorf("failed to fetch catalog and no cache available: %w", err)
	}

	if err := cache.Save(fresh); err != nil {
		client.logger.Warn("Failed to save catalog cache", "error", err)
	}
	return fresh, nil
}
