package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/ui/styles"
)

var infoCmd = &cobra.Command{
	Use:   "info <xmlId>",
	Short: "Show marketplace details for a plugin",
	Long: `Look up a plugin by xmlId and print its marketplace record,
including the description rendered as plain text.

Example:
  ideactl info org.rust.lang`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	xmlID := args[0]
	client := newClient()
	ctx := context.Background()

	p, err := client.ResolveXMLID(ctx, xmlID)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", xmlID, err)
	}
	if p == nil {
		return fmt.Errorf("plugin %q not found on the marketplace", xmlID)
	}

	detail, err := client.Detail(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch plugin detail: %w", err)
	}

	version, compat, err := client.LatestUpdate(ctx, p.ID)
	if err != nil {
		logger.Debug("Version lookup failed", "plugin", xmlID, "error", err)
	}

	fmt.Println(styles.Title.Render(detail.Name))
	fmt.Println()
	fmt.Printf("Xml id:        %s\n", detail.XMLID)
	fmt.Printf("Organization:  %s\n", detail.Organization)
	if detail.Downloads > 0 {
		fmt.Printf("Downloads:     %d\n", detail.Downloads)
	}
	if detail.Rating > 0 {
		fmt.Printf("Rating:        %.1f\n", detail.Rating)
	}
	if version != "" {
		fmt.Printf("Version:       %s\n", version)
	}
	if compat != "" {
		fmt.Printf("Compatible:    %s\n", compat)
	}
	if len(detail.Tags) > 0 {
		fmt.Printf("Tags:          %s\n", strings.Join(detail.Tags, ", "))
	}
	if detail.Link != "" {
		fmt.Printf("Page:          %s\n", detail.Link)
	}

	if detail.Description != "" {
		fmt.Println()
		fmt.Println(detail.Description)
	}

	if newStore().Contains(detail.XMLID) {
		fmt.Println()
		fmt.Println(styles.FormatInBasketBadge())
	}
	return nil
}
