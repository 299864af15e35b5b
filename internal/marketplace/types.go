package marketplace

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Plugin is one marketplace plugin as ideactl sees it. XMLID is the
// canonical identity used for cache merges, basket membership and the
// generated install command.
type Plugin struct {
	ID            int    `json:"id,omitempty"`
	XMLID         string `json:"xmlId"`
	Name          string `json:"name"`
	Organization  string `json:"organization"`
	Downloads     int    `json:"downloads"`
	LatestVersion string `json:"latestVersion,omitempty"`
	IdeaVersion   string `json:"ideaVersion,omitempty"`
}

// PluginDetail is the expanded record behind `ideactl info`.
type PluginDetail struct {
	Plugin
	Description string   // plain text, rendered from the marketplace HTML
	Tags        []string
	Rating      float64
	Link        string // absolute marketplace page URL
}

// Constants
const (
	// TypeaheadTimeout bounds interactive search calls
	TypeaheadTimeout = 10 * time.Second
	// BrowseTimeout bounds category sweep calls
	BrowseTimeout = 15 * time.Second
	// UpdateTimeout bounds per-plugin version lookups
	UpdateTimeout = 5 * time.Second
	// DetailTimeout bounds plugin detail fetches
	DetailTimeout = 10 * time.Second

	// MinQueryLength is the shortest query worth sending upstream
	MinQueryLength = 2
	// MaxTypeaheadResults caps a single typeahead response
	MaxTypeaheadResults = 10

	// UnknownOrganization is substituted when the wire record names no vendor
	UnknownOrganization = "Unknown"
)

// wirePlugin covers both search endpoints. The modern endpoint nests
// the vendor in an object and carries an organization string; the
// legacy one may flatten the vendor to a bare string. Both funnel
// through normalize.
type wirePlugin struct {
	ID           int             `json:"id"`
	XMLID        string          `json:"xmlId"`
	Name         string          `json:"name"`
	Organization string          `json:"organization"`
	Downloads    int             `json:"downloads"`
	Vendor       json.RawMessage `json:"vendor"`
}

// searchResponse is the /api/searchPlugins wrapper shape.
type searchResponse struct {
	Total   int          `json:"total"`
	Plugins []wirePlugin `json:"plugins"`
}

// wireUpdate is one entry of /api/plugins/{id}/updates, newest first.
// Compatibility information appears in one of three shapes depending
// on plugin age; see compatRange.
type wireUpdate struct {
	ID                 int               `json:"id"`
	Version            string            `json:"version"`
	Since              string            `json:"since"`
	Until              string            `json:"until"`
	SinceUntil         string            `json:"sinceUntil"`
	CompatibleVersions map[string]string `json:"compatibleVersions"`
}

// wireDetail is the /api/plugins/{id} shape.
type wireDetail struct {
	ID           int             `json:"id"`
	XMLID        string          `json:"xmlId"`
	Name         string          `json:"name"`
	Link         string          `json:"link"`
	Description  string          `json:"description"`
	Downloads    int             `json:"downloads"`
	Rating       float64         `json:"rating"`
	Organization string          `json:"organization"`
	Vendor       json.RawMessage `json:"vendor"`
	Tags         []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// normalize converts a wire record into a Plugin. This is the single
// place where marketplace quirks are smoothed out: a missing vendor
// becomes UnknownOrganization and negative download counts clamp to
// zero.
func (w wirePlugin) normalize() Plugin {
	org := w.Organization
	if org == "" {
		org = vendorName(w.Vendor)
	}
	if org == "" {
		org = UnknownOrganization
	}

	downloads := w.Downloads
	if downloads < 0 {
		downloads = 0
	}

	return Plugin{
		ID:           w.ID,
		XMLID:        w.XMLID,
		Name:         w.Name,
		Organization: org,
		Downloads:    downloads,
	}
}

// vendorName extracts a vendor name from either wire encoding: a bare
// string or an object with a name field.
func vendorName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Name)
	}

	return ""
}

// compatRange resolves the compatibility range of an update, falling
// back through the shapes the marketplace has used over time:
// sinceUntil when present, then the since/until pair, then the
// compatibleVersions map (IDEA entry preferred, else the first key in
// sorted order so the result is deterministic).
func compatRange(u wireUpdate) string {
	if u.SinceUntil != "" {
		return u.SinceUntil
	}

	switch {
	case u.Since != "" && u.Until != "":
		return u.Since + " - " + u.Until
	case u.Since != "":
		return u.Since + "+"
	case u.Until != "":
		return "up to " + u.Until
	}

	if len(u.CompatibleVersions) > 0 {
		if v, ok := u.CompatibleVersions["IDEA"]; ok {
			return v
		}
		keys := make([]string, 0, len(u.CompatibleVersions))
		for k := range u.CompatibleVersions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return u.CompatibleVersions[keys[0]]
	}

	return ""
}

// SortByDownloads orders plugins by download count, highest first.
// The sort is stable so ties keep their existing order.
func SortByDownloads(plugins []Plugin) {
	sort.SliceStable(plugins, func(i, j int) bool {
		return plugins[i].Downloads > plugins[j].Downloads
	})
}
