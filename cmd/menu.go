package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	basketui "github.com/bnema/ideactl/internal/ui/basket"
	"github.com/bnema/ideactl/internal/ui/menu"
	"github.com/bnema/ideactl/internal/ui/progress"
	"github.com/bnema/ideactl/internal/ui/styles"
)

// runMenu drives the top-level interactive loop for a bare invocation.
// Action errors are reported and the menu resumes; only failures of
// the menu itself bubble up.
func runMenu(cmd *cobra.Command, args []string) error {
	if !isTTY() {
		return cmd.Help()
	}

	for {
		store := newStore()

		action, err := menu.Run(store.Len())
		if err != nil {
			return err
		}

		switch action {
		case menu.ActionQuit:
			return nil
		case menu.ActionSearch:
			err = runSelector(store, "", false)
		case menu.ActionBasket:
			err = basketui.Run(store)
		case menu.ActionGenerate:
			err = generateFromStore(store, true, "")
		case menu.ActionImport:
			err = promptImport()
		case menu.ActionIDEs:
			err = printIDEs(false)
		case menu.ActionRefresh:
			err = refreshCatalog()
		}

		if err != nil {
			logger.Error("Menu action failed", "action", action, "error", err)
			fmt.Println(styles.FormatError(err.Error()))
		}

		if action != menu.ActionQuit {
			pause()
		}
	}
}

// promptImport reads one command line from stdin and imports it.
func promptImport() error {
	fmt.Print("Paste an installPlugins command: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		fmt.Println("Nothing to import")
		return nil
	}
	return importCommand(newStore(), line)
}

// refreshCatalog re-runs the popular sweep, replacing the cache.
func refreshCatalog() error {
	plugins, err := fetchCatalog(true, true)
	if err != nil {
		return err
	}
	progress.PrintComplete(fmt.Sprintf("Catalog refreshed: %d plugins", len(plugins)))
	return nil
}

// pause waits for enter so output stays readable between TUI screens.
func pause() {
	fmt.Print(styles.MutedText.Render("\npress enter to continue"))
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	fmt.Println()
}
