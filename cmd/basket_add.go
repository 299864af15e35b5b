package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/marketplace"
	"github.com/bnema/ideactl/internal/ui/progress"
)

var basketAddCmd = &cobra.Command{
	Use:   "add <xmlId>",
	Short: "Add a plugin to the basket by xmlId",
	Long: `Add a plugin to the basket by its marketplace xmlId.

The id is looked up on the marketplace for its display name and vendor;
when the lookup fails the bare id is stored and enriched later.

Example:
  ideactl basket add org.rust.lang`,
	Args: cobra.ExactArgs(1),
	RunE: runBasketAdd,
}

func init() {
	basketCmd.AddCommand(basketAddCmd)
}

func runBasketAdd(cmd *cobra.Command, args []string) error {
	xmlID := args[0]
	store := newStore()

	entry := basket.Entry{
		XMLID:        xmlID,
		Name:         xmlID,
		Organization: marketplace.UnknownOrganization,
	}

	// Best effort: an offline add still works with the bare id
	if p, err := newClient().ResolveXMLID(context.Background(), xmlID); err == nil && p != nil {
		entry.XMLID = p.XMLID
		entry.Name = p.Name
		entry.Organization = p.Organization
	} else if err != nil {
		logger.Warn("Marketplace lookup failed, storing bare id", "xmlId", xmlID, "error", err)
	}

	switch err := store.Add(entry); {
	case errors.Is(err, basket.ErrAlreadySelected):
		fmt.Printf("%s is already selected\n", entry.XMLID)
		return nil
	case err != nil:
		return err
	}

	progress.PrintComplete(fmt.Sprintf("Added %s (%s)", entry.Name, entry.XMLID))
	return nil
}
