package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/installcmd"
	"github.com/bnema/ideactl/internal/marketplace"
	"github.com/bnema/ideactl/internal/ui/progress"
	"github.com/bnema/ideactl/internal/ui/styles"
)

var importCmd = &cobra.Command{
	Use:   "import <command>",
	Short: "Parse an installPlugins command back into the basket",
	Long: `Extract plugin ids from an installPlugins command and add them to
the basket. The inverse of generate, for commands shared by others.

Example:
  ideactl import 'idea installPlugins org.rust.lang IdeaVIM "Key Promoter X"'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	return importCommand(newStore(), strings.Join(args, " "))
}

func importCommand(store *basket.Store, command string) error {
	ids := installcmd.Decode(command)
	if len(ids) == 0 {
		fmt.Println(styles.FormatWarning("no installPlugins command found in input"))
		return nil
	}

	entries := make([]basket.Entry, 0, len(ids))
	for _, id := range ids {
		// Imported ids have no metadata; the name shows the id until a
		// later lookup enriches it
		entries = append(entries, basket.Entry{
			XMLID:        id,
			Name:         id,
			Organization: marketplace.UnknownOrganization,
		})
	}

	added, skipped, err := store.AddAll(entries)
	if err != nil {
		return fmt.Errorf("failed to update basket: %w", err)
	}

	progress.PrintComplete(fmt.Sprintf("%d imported, %d already selected", added, skipped))
	progress.PrintSummary("Basket holds %d plugin(s)", store.Len())
	return nil
}
