package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/basket"
	basketui "github.com/bnema/ideactl/internal/ui/basket"
	"github.com/bnema/ideactl/internal/ui/styles"
)

var basketCmd = &cobra.Command{
	Use:   "basket",
	Short: "Review and edit the plugin basket",
	Long: `Review the persistent plugin basket.

Without flags and with a terminal this opens the interactive view.

Examples:
  ideactl basket              # Interactive view
  ideactl basket --list       # Plain table
  ideactl basket --versions   # Table with latest version per plugin
  ideactl basket --json       # JSON output for scripting`,
	RunE: runBasketView,
}

func init() {
	rootCmd.AddCommand(basketCmd)

	basketCmd.Flags().BoolP("list", "l", false, "Output as plain text list (non-interactive)")
	basketCmd.Flags().Bool("json", false, "Output as JSON (non-interactive)")
	basketCmd.Flags().Bool("versions", false, "Look up the latest version of each plugin")
}

func runBasketView(cmd *cobra.Command, args []string) error {
	listOutput, _ := cmd.Flags().GetBool("list")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	versions, _ := cmd.Flags().GetBool("versions")

	store := newStore()

	if jsonOutput {
		return basketJSON(store)
	}
	if listOutput || versions || !isTTY() {
		return basketTable(store, versions)
	}
	return basketui.Run(store)
}

func basketJSON(store *basket.Store) error {
	output := struct {
		SelectedPlugins []basket.Entry `json:"selectedPlugins"`
		Total           int            `json:"total"`
	}{
		SelectedPlugins: store.List(),
		Total:           store.Len(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func basketTable(store *basket.Store, withVersions bool) error {
	entries := store.List()
	if len(entries) == 0 {
		fmt.Println("Basket is empty")
		fmt.Println("\nAdd plugins with: ideactl search")
		return nil
	}

	var versions map[string]entryVersion
	if withVersions {
		versions = fetchVersions(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if withVersions {
		_, _ = fmt.Fprintln(w, "NAME\tXML ID\tORGANIZATION\tVERSION\tCOMPATIBILITY")
	} else {
		_, _ = fmt.Fprintln(w, "NAME\tXML ID\tORGANIZATION")
	}

	for _, e := range entries {
		if withVersions {
			v := versions[e.XMLID]
			version := v.version
			if version == "" {
				version = "-"
			}
			compat := v.compat
			if compat == "" {
				compat = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.XMLID, e.Organization, version, compat)
		} else {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.XMLID, e.Organization)
		}
	}

	_ = w.Flush()

	fmt.Printf("\n%d plugin(s) in basket\n", len(entries))
	fmt.Printf("Basket file: %s\n", store.Path())
	return nil
}

type entryVersion struct {
	version string
	compat  string
}

// fetchVersions resolves each basket entry to its numeric id and asks
// for its newest update, a bounded fan-out of two calls per entry.
// Failures leave the entry out of the map and render as "-".
func fetchVersions(entries []basket.Entry) map[string]entryVersion {
	client := newClient()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, 4)
		out = make(map[string]entryVersion, len(entries))
	)

	fmt.Println(styles.MutedText.Render("Looking up latest versions..."))

	for _, e := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(e basket.Entry) {
			defer wg.Done()
			defer func() { <-sem }()

			ctx := context.Background()
			p, err := client.ResolveXMLID(ctx, e.XMLID)
			if err != nil || p == nil || p.ID == 0 {
				return
			}
			version, compat, err := client.LatestUpdate(ctx, p.ID)
			if err != nil {
				return
			}

			mu.Lock()
			out[e.XMLID] = entryVersion{version: version, compat: compat}
			mu.Unlock()
		}(e)
	}
	wg.Wait()

	return out
}
