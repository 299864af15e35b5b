package cmd

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/installcmd"
	"github.com/bnema/ideactl/internal/ui/picker"
	"github.com/bnema/ideactl/internal/ui/progress"
	"github.com/bnema/ideactl/internal/ui/styles"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the installPlugins command for the basket",
	Long: `Build the shell command that installs every basket plugin.

The local filesystem is probed for installed IDEs; with several installs
you pick one, with none the default command name is used.

Examples:
  ideactl generate                  # Detect the IDE and print the command
  ideactl generate --copy           # Also place it on the clipboard
  ideactl generate --ide /opt/idea/bin/idea.sh`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolP("copy", "c", false, "Copy the command to the clipboard")
	generateCmd.Flags().String("ide", "", "Use this executable instead of detecting")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	copyToClipboard, _ := cmd.Flags().GetBool("copy")
	idePath, _ := cmd.Flags().GetString("ide")

	return generateFromStore(newStore(), copyToClipboard, idePath)
}

// generateFromStore builds and prints the install command. A cancelled
// IDE prompt aborts with no command printed and no clipboard write.
func generateFromStore(store *basket.Store, copyToClipboard bool, idePath string) error {
	ids := store.IDs()
	if len(ids) == 0 {
		fmt.Println("Basket is empty; nothing to install")
		fmt.Println("\nAdd plugins with: ideactl search")
		return nil
	}

	exe := idePath
	if exe == "" {
		var err error
		exe, err = resolveExecutable()
		if errors.Is(err, picker.ErrCancelled) {
			fmt.Println("Cancelled")
			return nil
		}
		if err != nil {
			return err
		}
	}

	command := installcmd.Encode(exe, ids)

	fmt.Println()
	fmt.Println("  " + styles.Command.Render(command))
	fmt.Println()

	if copyToClipboard {
		if err := clipboard.WriteAll(command); err != nil {
			progress.PrintWarning("Clipboard unavailable: " + err.Error())
			progress.PrintDetail("copy the command above manually")
		} else {
			progress.PrintComplete("Copied to clipboard")
		}
	}

	progress.PrintSummary("%d plugin(s); run the command in your shell to install", len(ids))
	return nil
}
