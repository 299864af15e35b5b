package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/marketplace"
	"github.com/bnema/ideactl/internal/ui/progress"
	"github.com/bnema/ideactl/internal/ui/selector"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the marketplace and pick plugins for the basket",
	Long: `Open the interactive plugin search.

The popular catalog is cached locally for 24 hours and merged with live
typeahead results as you type. Toggle plugins with space; confirming
adds them to the basket.

Examples:
  ideactl search            # Browse the popular catalog
  ideactl search rust       # Start with a query pre-filled
  ideactl search --refresh  # Re-fetch the catalog first`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolP("refresh", "r", false, "Force refresh the catalog cache")
}

func runSearch(cmd *cobra.Command, args []string) error {
	refresh, _ := cmd.Flags().GetBool("refresh")

	seed := ""
	if len(args) > 0 {
		seed = args[0]
	}

	if err := requireTTY(); err != nil {
		return err
	}
	return runSelector(newStore(), seed, refresh)
}

// runSelector opens the selector pre-seeded with the basket and folds
// the confirmed selection back into it.
func runSelector(store *basket.Store, seed string, refresh bool) error {
	basketEntries := store.List()
	preselected := make([]marketplace.Plugin, 0, len(basketEntries))
	for _, e := range basketEntries {
		preselected = append(preselected, marketplace.Plugin{
			XMLID:        e.XMLID,
			Name:         e.Name,
			Organization: e.Organization,
		})
	}

	chosen, err := selector.Run(newClient(), newCatalogCache(), logger, selector.Options{
		SeedQuery:    seed,
		Preselected:  preselected,
		ForceRefresh: refresh,
	})
	if errors.Is(err, selector.ErrCancelled) {
		fmt.Println("Selection cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	entries := make([]basket.Entry, 0, len(chosen))
	for _, p := range chosen {
		entries = append(entries, basket.Entry{
			XMLID:        p.XMLID,
			Name:         p.Name,
			Organization: p.Organization,
		})
	}

	added, skipped, err := store.AddAll(entries)
	if err != nil {
		return fmt.Errorf("failed to update basket: %w", err)
	}

	progress.PrintComplete(fmt.Sprintf("%d added, %d already selected", added, skipped))
	progress.PrintSummary("Basket holds %d plugin(s)", store.Len())
	return nil
}
