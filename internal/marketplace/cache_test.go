package marketplace

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func testCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	return NewCache(t.TempDir(), ttl, log.New(io.Discard))
}

func TestCacheSaveLoadRoundTrip(t *testing.T) {
	cache := testCache(t, time.Hour)

	plugins := []Plugin{
		{ID: 1, XMLID: "a.b.c", Name: "ABC", Organization: "Acme", Downloads: 42, LatestVersion: "1.0"},
		{ID: 2, XMLID: "d.e.f", Name: "DEF", Organization: "Unknown"},
	}
	if err := cache.Save(plugins); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, stale := cache.Load()
	if stale {
		t.Error("fresh cache reported stale")
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(loaded))
	}
	if loaded[0] != plugins[0] || loaded[1] != plugins[1] {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestCacheMissingAndCorrupt(t *testing.T) {
	cache := testCache(t, time.Hour)

	if plugins, stale := cache.Load(); plugins != nil || !stale {
		t.Errorf("missing cache: got (%v, %v), want (nil, true)", plugins, stale)
	}

	if err := os.MkdirAll(cache.dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cache.path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if plugins, stale := cache.Load(); plugins != nil || !stale {
		t.Errorf("corrupt cache: got (%v, %v), want (nil, true)", plugins, stale)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := testCache(t, time.Hour)

	if err := cache.Save([]Plugin{{XMLID: "x"}}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(cache.path, old, old); err != nil {
		t.Fatal(err)
	}

	plugins, stale := cache.Load()
	if !stale {
		t.Error("expired cache not reported stale")
	}
	if len(plugins) != 1 {
		t.Errorf("stale cache should still return data, got %d plugins", len(plugins))
	}
}

func TestGetCatalogServesFreshCacheWithoutNetwork(t *testing.T) {
	cache := testCache(t, time.Hour)
	if err := cache.Save([]Plugin{{XMLID: "cached.plugin"}}); err != nil {
		t.Fatal(err)
	}

	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected network call: %s", req.URL.String())
		return nil, nil
	})

	plugins, err := GetCatalog(context.Background(), client, cache, false, nil)
	if err != nil {
		t.Fatalf("GetCatalog() returned error: %v", err)
	}
	if len(plugins) != 1 || plugins[0].XMLID != "cached.plugin" {
		t.Errorf("unexpected catalog: %+v", plugins)
	}
}

func TestGetCatalogFallsBackToStaleCache(t *testing.T) {
	cache := testCache(t, time.Hour)
	if err := cache.Save([]Plugin{{XMLID: "stale.plugin"}}); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(cache.path, old, old); err != nil {
		t.Fatal(err)
	}

	// Every sweep request fails, so the stale copy is all there is
	client := testClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, ""), nil
	})

	plugins, err := GetCatalog(context.Background(), client, cache, false, nil)
	if err != nil {
		t.Fatalf("GetCatalog() returned error: %v", err)
	}
	if len(plugins) != 1 || plugins[0].XMLID != "stale.plugin" {
		t.Errorf("expected stale fallback, got %+v", plugins)
	}
}

func TestGetCatalogFailsWithoutAnyCache(t *testing.T) {
	cache := testCache(t, time.Hour)
	client := testClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, ""), nil
	})

	if _, err := GetCatalog(context.Background(), client, cache, false, nil); err == nil {
		t.Fatal("expected error when sweep fails and no cache exists")
	}
}

func TestGetCatalogRefreshBypassesFreshCache(t *testing.T) {
	cache := testCache(t, time.Hour)
	if err := cache.Save([]Plugin{{XMLID: "cached.plugin"}}); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	swept := false
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		swept = true
		mu.Unlock()
		if req.URL.Query().Get("search") == "java" {
			return jsonResponse(http.StatusOK, `[{"id": 1, "xmlId": "fresh.plugin", "name": "Fresh", "downloads": 1}]`), nil
		}
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	plugins, err := GetCatalog(context.Background(), client, cache, true, nil)
	if err != nil {
		t.Fatalf("GetCatalog() returned error: %v", err)
	}
	if !swept {
		t.Error("refresh did not trigger a sweep")
	}
	if len(plugins) != 1 || plugins[0].XMLID != "fresh.plugin" {
		t.Errorf("unexpected refreshed catalog: %+v", plugins)
	}

	// The fresh sweep replaces the cache on disk
	reloaded, stale := cache.Load()
	if stale || len(reloaded) != 1 || reloaded[0].XMLID != "fresh.plugin" {
		t.Errorf("cache not refreshed: stale=%v plugins=%+v", stale, reloaded)
	}
}
