package marketplace

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	c := New("https://plugins.example.com", log.New(io.Discard))
	c.client = &http.Client{Transport: rt}
	return c
}

func TestTypeaheadParsesAndNormalizes(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/api/searchPlugins") {
			t.Fatalf("expected search endpoint, got %s", req.URL.String())
		}
		if got := req.URL.Query().Get("search"); got != "rust lang" {
			t.Fatalf("unexpected search param: %q", got)
		}
		if req.Header.Get("User-Agent") == "" {
			t.Fatal("expected User-Agent header")
		}
		return jsonResponse(http.StatusOK, `{
			"total": 3,
			"plugins": [
				{"id": 22407, "xmlId": "org.rust.lang", "name": "Rust", "downloads": 3000000, "organization": "JetBrains"},
				{"id": 631, "xmlId": "org.example.vendorobj", "name": "VendorObj", "downloads": 10, "vendor": {"name": "Acme"}},
				{"id": 632, "xmlId": "org.example.anon", "name": "Anon", "downloads": -5}
			]
		}`), nil
	})

	plugins, err := c.Typeahead(context.Background(), "rust lang")
	if err != nil {
		t.Fatalf("Typeahead() returned error: %v", err)
	}
	if len(plugins) != 3 {
		t.Fatalf("expected 3 plugins, got %d", len(plugins))
	}

	if plugins[0].XMLID != "org.rust.lang" || plugins[0].Organization != "JetBrains" {
		t.Errorf("unexpected first plugin: %+v", plugins[0])
	}
	if plugins[1].Organization != "Acme" {
		t.Errorf("vendor object not used: got %q", plugins[1].Organization)
	}
	if plugins[2].Organization != UnknownOrganization {
		t.Errorf("missing vendor should normalize to %q, got %q", UnknownOrganization, plugins[2].Organization)
	}
	if plugins[2].Downloads != 0 {
		t.Errorf("negative downloads should clamp to 0, got %d", plugins[2].Downloads)
	}
}

func TestTypeaheadShortQuerySkipsNetwork(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request for short query: %s", req.URL.String())
		return nil, nil
	})

	for _, query := range []string{"", "r", "  r  "} {
		if _, err := c.Typeahead(context.Background(), query); !errors.Is(err, ErrQueryTooShort) {
			t.Errorf("Typeahead(%q) error = %v, want ErrQueryTooShort", query, err)
		}
	}
}

func TestTypeaheadCapsResults(t *testing.T) {
	var entries []string
	for i := 0; i < MaxTypeaheadResults+5; i++ {
		entries = append(entries, `{"id": 1, "xmlId": "plugin.`+string(rune('a'+i))+`", "name": "P"}`)
	}
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"plugins": [`+strings.Join(entries, ",")+`]}`), nil
	})

	plugins, err := c.Typeahead(context.Background(), "plugin")
	if err != nil {
		t.Fatalf("Typeahead() returned error: %v", err)
	}
	if len(plugins) != MaxTypeaheadResults {
		t.Fatalf("expected %d plugins, got %d", MaxTypeaheadResults, len(plugins))
	}
}

func TestBrowseAcceptsBothResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 1, "xmlId": "com.acme.one", "name": "One", "vendor": "Acme Inc"}]`},
		{"wrapped", `{"plugins": [{"id": 1, "xmlId": "com.acme.one", "name": "One", "vendor": "Acme Inc"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(req *http.Request) (*http.Response, error) {
				if !strings.Contains(req.URL.Path, "/api/plugins") {
					t.Fatalf("expected plugin list endpoint, got %s", req.URL.String())
				}
				return jsonResponse(http.StatusOK, tt.body), nil
			})

			plugins, err := c.Browse(context.Background(), "acme", 50)
			if err != nil {
				t.Fatalf("Browse() returned error: %v", err)
			}
			if len(plugins) != 1 {
				t.Fatalf("expected 1 plugin, got %d", len(plugins))
			}
			if plugins[0].Organization != "Acme Inc" {
				t.Errorf("string vendor not used: got %q", plugins[0].Organization)
			}
		})
	}
}

func TestLatestUpdateCompatibilityFallback(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantVersion string
		wantCompat  string
	}{
		{
			"sinceUntil wins",
			`[{"version": "1.2.3", "sinceUntil": "2023.1+", "since": "231", "until": "233.*"}]`,
			"1.2.3", "2023.1+",
		},
		{
			"since and until pair",
			`[{"version": "0.9", "since": "231", "until": "233.*"}]`,
			"0.9", "231 - 233.*",
		},
		{
			"since only",
			`[{"version": "0.9", "since": "231"}]`,
			"0.9", "231+",
		},
		{
			"compatibleVersions map",
			`[{"version": "2.0", "compatibleVersions": {"IDEA": "2024.1+", "CLION": "2023.2"}}]`,
			"2.0", "2024.1+",
		},
		{
			"no updates",
			`[]`,
			"", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(req *http.Request) (*http.Response, error) {
				if !strings.Contains(req.URL.Path, "/api/plugins/42/updates") {
					t.Fatalf("expected updates endpoint, got %s", req.URL.String())
				}
				return jsonResponse(http.StatusOK, tt.body), nil
			})

			version, compat, err := c.LatestUpdate(context.Background(), 42)
			if err != nil {
				t.Fatalf("LatestUpdate() returned error: %v", err)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if compat != tt.wantCompat {
				t.Errorf("compat = %q, want %q", compat, tt.wantCompat)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		rt       roundTripFunc
		wantKind ErrorKind
	}{
		{
			"rate limited",
			func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, ""), nil
			},
			KindRateLimited,
		},
		{
			"server error",
			func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusServiceUnavailable, ""), nil
			},
			KindServer,
		},
		{
			"unexpected status",
			func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusNotFound, ""), nil
			},
			KindStatus,
		},
		{
			"connection refused",
			func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			KindConnection,
		},
		{
			"deadline exceeded",
			func(*http.Request) (*http.Response, error) {
				return nil, context.DeadlineExceeded
			},
			KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, tt.rt)

			_, err := c.Typeahead(context.Background(), "query")
			if err == nil {
				t.Fatal("expected error")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %d, want %d (error: %v)", apiErr.Kind, tt.wantKind, apiErr)
			}
		})
	}
}

func TestSoftWrappersDegradeToEmpty(t *testing.T) {
	c := testClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, ""), nil
	})

	if got := c.TypeaheadSoft(context.Background(), "query"); len(got) != 0 {
		t.Errorf("TypeaheadSoft on failure = %v, want empty", got)
	}
	if got := c.BrowseSoft(context.Background(), "query", 10); len(got) != 0 {
		t.Errorf("BrowseSoft on failure = %v, want empty", got)
	}
	if got := c.TypeaheadSoft(context.Background(), "x"); len(got) != 0 {
		t.Errorf("TypeaheadSoft on short query = %v, want empty", got)
	}
}
