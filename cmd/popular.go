package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/marketplace"
	"github.com/bnema/ideactl/internal/ui/progress"
)

// popularTableRows caps the plain-table output; the JSON output keeps
// the full catalog.
const popularTableRows = 50

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the most-downloaded marketplace plugins",
	Long: `Sweep the marketplace's curated categories and print the merged
catalog ordered by downloads. The result is cached locally.

Examples:
  ideactl popular             # Table of the top plugins
  ideactl popular --refresh   # Bypass the cache
  ideactl popular --json      # Full catalog as JSON`,
	RunE: runPopular,
}

func init() {
	rootCmd.AddCommand(popularCmd)

	popularCmd.Flags().BoolP("refresh", "r", false, "Force refresh the catalog cache")
	popularCmd.Flags().Bool("json", false, "Output as JSON")
}

func runPopular(cmd *cobra.Command, args []string) error {
	refresh, _ := cmd.Flags().GetBool("refresh")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	plugins, err := fetchCatalog(refresh, !jsonOutput)
	if err != nil {
		return err
	}

	if jsonOutput {
		output := struct {
			Plugins []marketplace.Plugin `json:"plugins"`
			Total   int                  `json:"total"`
		}{Plugins: plugins, Total: len(plugins)}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tNAME\tXML ID\tDOWNLOADS\tVERSION")
	for i, p := range plugins {
		if i >= popularTableRows {
			break
		}
		version := p.LatestVersion
		if version == "" {
			version = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", i+1, p.Name, p.XMLID, p.Downloads, version)
	}
	_ = w.Flush()

	fmt.Printf("\n%d plugin(s) in catalog\n", len(plugins))
	return nil
}

// fetchCatalog loads the popular catalog, printing an in-place sweep
// progress line when showProgress is set.
func fetchCatalog(refresh, showProgress bool) ([]marketplace.Plugin, error) {
	var onProgress marketplace.ProgressFunc
	if showProgress {
		onProgress = func(done, total int, category string) {
			fmt.Printf("\r%-60s", progress.SweepLine(done, total, category))
			if done == total {
				fmt.Printf("\r%-60s\r", "")
			}
		}
	}

	return marketplace.GetCatalog(context.Background(), newClient(), newCatalogCache(), refresh, onProgress)
}
