package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/ui/progress"
)

var basketRemoveCmd = &cobra.Command{
	Use:   "remove <xmlId>",
	Short: "Remove a plugin from the basket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()

		switch err := store.Remove(args[0]); {
		case errors.Is(err, basket.ErrNotSelected):
			fmt.Printf("%s is not in the basket\n", args[0])
			return nil
		case err != nil:
			return err
		}

		progress.PrintComplete(fmt.Sprintf("Removed %s", args[0]))
		return nil
	},
}

func init() {
	basketCmd.AddCommand(basketRemoveCmd)
}
