package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

const userAgent = "ideactl/1.0 (JetBrains plugin basket)"

// ErrQueryTooShort is returned for queries below MinQueryLength; no
// network call is made for these.
var ErrQueryTooShort = errors.New("query too short")

// ErrorKind classifies a marketplace call failure.
type ErrorKind int

const (
	KindConnection ErrorKind = iota
	KindTimeout
	KindRateLimited
	KindServer
	KindStatus
)

// APIError is a classified marketplace failure.
type APIError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("%s timed out", e.Op)
	case KindRateLimited:
		return fmt.Sprintf("%s was rate limited by the marketplace", e.Op)
	case KindServer:
		return fmt.Sprintf("%s failed with server error %d", e.Op, e.Status)
	case KindStatus:
		return fmt.Sprintf("%s returned unexpected status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Client talks to the JetBrains plugin marketplace. One shared HTTP
// client, per-operation deadlines via context so each endpoint keeps
// its own budget.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// New creates a marketplace client for the given base URL.
func New(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
	}
}

// Typeahead runs an interactive search. Queries shorter than
// MinQueryLength (after trimming) short-circuit to ErrQueryTooShort
// without touching the network. Results are capped at
// MaxTypeaheadResults.
func (c *Client) Typeahead(ctx context.Context, query string) ([]Plugin, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	ctx, cancel := context.WithTimeout(ctx, TypeaheadTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/searchPlugins?search=%s&max=%d",
		c.baseURL, url.QueryEscape(query), MaxTypeaheadResults)

	body, err := c.get(ctx, "plugin search", endpoint)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	plugins := make([]Plugin, 0, len(sr.Plugins))
	for _, w := range sr.Plugins {
		plugins = append(plugins, w.normalize())
	}
	if len(plugins) > MaxTypeaheadResults {
		plugins = plugins[:MaxTypeaheadResults]
	}

	c.logger.Debug("Search done", "query", query, "hits", len(plugins))
	return plugins, nil
}

// TypeaheadSoft is Typeahead for interactive flows: every failure,
// including a too-short query, degrades to an empty slice. Real
// failures are logged, never surfaced to the UI.
func (c *Client) TypeaheadSoft(ctx context.Context, query string) []Plugin {
	plugins, err := c.Typeahead(ctx, query)
	if err != nil {
		if !errors.Is(err, ErrQueryTooShort) {
			c.logger.Warn("Marketplace search failed", "query", query, "error", err)
		}
		return nil
	}
	return plugins
}

// Browse searches the legacy plugin list endpoint, used for the
// category sweep. The endpoint historically returned a bare JSON
// array; some deployments wrap it like the search endpoint, so both
// shapes are accepted.
func (c *Client) Browse(ctx context.Context, query string, max int) ([]Plugin, error) {
	ctx, cancel := context.WithTimeout(ctx, BrowseTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/plugins?search=%s&max=%d",
		c.baseURL, url.QueryEscape(query), max)

	body, err := c.get(ctx, "category browse", endpoint)
	if err != nil {
		return nil, err
	}

	var wire []wirePlugin
	if err := json.Unmarshal(body, &wire); err != nil {
		var sr searchResponse
		if err2 := json.Unmarshal(body, &sr); err2 != nil {
			return nil, fmt.Errorf("failed to parse plugin list: %w", err)
		}
		wire = sr.Plugins
	}

	plugins := make([]Plugin, 0, len(wire))
	for _, w := range wire {
		plugins = append(plugins, w.normalize())
	}
	return plugins, nil
}

// BrowseSoft is Browse with failures degraded to an empty slice.
func (c *Client) BrowseSoft(ctx context.Context, query string, max int) []Plugin {
	plugins, err := c.Browse(ctx, query, max)
	if err != nil {
		c.logger.Warn("Category browse failed", "category", query, "error", err)
		return nil
	}
	return plugins
}

// LatestUpdate fetches the newest update of a plugin and returns its
// version and compatibility range. An empty update list yields empty
// strings, not an error.
func (c *Client) LatestUpdate(ctx context.Context, pluginID int) (version, compat string, err error) {
	ctx, cancel := context.WithTimeout(ctx, UpdateTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/plugins/%d/updates?size=1", c.baseURL, pluginID)

	body, err := c.get(ctx, "update lookup", endpoint)
	if err != nil {
		return "", "", err
	}

	var updates []wireUpdate
	if err := json.Unmarshal(body, &updates); err != nil {
		return "", "", fmt.Errorf("failed to parse updates: %w", err)
	}
	if len(updates) == 0 {
		return "", "", nil
	}

	u := updates[0]
	return u.Version, compatRange(u), nil
}

// get performs one GET and classifies failures into APIError kinds.
func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		kind := KindConnection
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			kind = KindTimeout
		}
		return nil, &APIError{Kind: kind, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{Kind: KindRateLimited, Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, &APIError{Kind: KindServer, Op: op, Status: resp.StatusCode}
	default:
		return nil, &APIError{Kind: KindStatus, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
