package selector

import (
	"sort"
	"strings"

	"github.com/bnema/ideactl/internal/marketplace"
)

// matchScore weighs how well a plugin matches a lowercase query: a
// name hit counts double an id-only hit, no hit scores zero.
func matchScore(p marketplace.Plugin, query string) int {
	if strings.Contains(strings.ToLower(p.Name), query) {
		return 2
	}
	if strings.Contains(strings.ToLower(p.XMLID), query) {
		return 1
	}
	return 0
}

// filterLocal returns the plugins matching the query in cache order.
// An empty query returns the whole cache.
func filterLocal(plugins []marketplace.Plugin, query string) []marketplace.Plugin {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]marketplace.Plugin, len(plugins))
		copy(out, plugins)
		return out
	}

	var out []marketplace.Plugin
	for _, p := range plugins {
		if matchScore(p, query) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// rankMatches filters like filterLocal but orders by relevance: name
// matches before id-only matches, download count breaking ties. The
// sort is stable so equal plugins keep cache order.
func rankMatches(plugins []marketplace.Plugin, query string) []marketplace.Plugin {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return filterLocal(plugins, "")
	}

	matched := filterLocal(plugins, query)
	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matchScore(matched[i], query), matchScore(matched[j], query)
		if si != sj {
			return si > sj
		}
		return matched[i].Downloads > matched[j].Downloads
	})
	return matched
}

// visibleWindow returns the half-open row range displayed for a
// cursor position: centered when possible, clamped at both ends.
func visibleWindow(total, cursor, rows int) (start, end int) {
	if total <= rows {
		return 0, total
	}

	start = cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start > total-rows {
		start = total - rows
	}
	return start, start + rows
}
