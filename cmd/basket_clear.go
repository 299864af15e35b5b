package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/ui/progress"
)

var basketClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the basket",
	Long: `Remove every plugin from the basket.

A backup of the current basket file is kept next to it.`,
	RunE: runBasketClear,
}

func init() {
	basketCmd.AddCommand(basketClearCmd)
	basketClearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runBasketClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	store := newStore()

	if store.Len() == 0 {
		fmt.Println("Basket is already empty")
		return nil
	}

	if !yes {
		fmt.Printf("Clear %d plugin(s) from the basket? [y/N]: ", store.Len())
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := store.Clear(); err != nil {
		return err
	}

	progress.PrintComplete("Basket cleared")
	return nil
}
