package marketplace

import (
	"context"
	"sync"
)

const (
	// SweepPerCategory caps each category request in the popular sweep
	SweepPerCategory = 50
	// EnrichCount is how many plugins get version enrichment after the sweep
	EnrichCount = 100
	// enrichWorkers bounds concurrent update lookups
	enrichWorkers = 8
)

// popularCategories drives the popular-catalog sweep: curated keywords
// spanning languages, tooling, quality, AI, themes, editors, formats,
// testing and cloud.
var popularCategories = []string{
	"java", "kotlin", "python", "go", "javascript", "typescript",
	"rust", "php", "ruby", "scala", "sql", "database",
	"docker", "kubernetes", "git", "terminal",
	"theme", "icons", "keymap", "editor", "vim",
	"productivity", "code quality", "linter", "formatter",
	"debugger", "test", "coverage",
	"ai", "assistant", "completion",
	"spring", "maven", "gradle", "node", "react",
	"markdown", "yaml", "json", "protobuf",
	"cloud", "aws",
}

// ProgressFunc reports sweep progress after each category.
type ProgressFunc func(done, total int, category string)

// Categories returns the sweep keyword list.
func Categories() []string {
	out := make([]string, len(popularCategories))
	copy(out, popularCategories)
	return out
}

// FetchPopular sweeps the curated categories sequentially, merges the
// results by xmlId (first seen wins), orders them by downloads and
// enriches the top of the list with version information. Individual
// category failures are logged and skipped; the only hard failure is
// context cancellation.
func (c *Client) FetchPopular(ctx context.Context, onProgress ProgressFunc) ([]Plugin, error) {
	merged := make([]Plugin, 0, 512)
	index := make(map[string]int)

	for i, category := range popularCategories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		merged = MergePlugins(merged, index, c.BrowseSoft(ctx, category, SweepPerCategory))
		if onProgress != nil {
			onProgress(i+1, len(popularCategories), category)
		}
	}

	SortByDownloads(merged)
	c.EnrichTop(ctx, merged, EnrichCount)

	c.logger.Info("Popular catalog fetched",
		"categories", len(popularCategories), "plugins", len(merged))
	return merged, nil
}

// MergePlugins folds incoming plugins into merged, keyed by xmlId with
// first-seen-wins semantics: a record whose xmlId is already indexed
// never overwrites the existing one. index maps xmlId to position in
// merged and is updated in place. Records without an xmlId are
// dropped.
func MergePlugins(merged []Plugin, index map[string]int, incoming []Plugin) []Plugin {
	for _, p := range incoming {
		if p.XMLID == "" {
			continue
		}
		if _, seen := index[p.XMLID]; seen {
			continue
		}
		index[p.XMLID] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

// EnrichTop fills LatestVersion and IdeaVersion for the first n
// plugins using a bounded worker fan-out. Plugins without a numeric id
// are skipped and lookup failures leave the fields empty.
func (c *Client) EnrichTop(ctx context.Context, plugins []Plugin, n int) {
	if n > len(plugins) {
		n = len(plugins)
	}

	sem := make(chan struct{}, enrichWorkers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		if plugins[i].ID == 0 {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(p *Plugin) {
			defer wg.Done()
			defer func() { <-sem }()

			version, compat, err := c.LatestUpdate(ctx, p.ID)
			if err != nil {
				c.logger.Debug("Version lookup failed", "plugin", p.XMLID, "error", err)
				return
			}
			p.LatestVersion = version
			p.IdeaVersion = compat
		}(&plugins[i])
	}

	wg.Wait()
}
