package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/bnema/ideactl/internal/basket"
	"github.com/bnema/ideactl/internal/ide"
	"github.com/bnema/ideactl/internal/marketplace"
	"github.com/bnema/ideactl/internal/ui/picker"
	"github.com/bnema/ideactl/internal/ui/styles"
)

// cacheDir returns the ideactl cache directory.
func cacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "ideactl")
}

func newClient() *marketplace.Client {
	return marketplace.New(cfg.MarketplaceURL, logger)
}

func newCatalogCache() *marketplace.Cache {
	return marketplace.NewCache(cacheDir(), cfg.CatalogTTL, logger)
}

func newStore() *basket.Store {
	s := basket.NewStore(basket.DefaultPath(), logger)
	s.Load()
	return s
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// requireTTY guards interactive commands.
func requireTTY() error {
	if !isTTY() {
		return errors.New("interactive mode requires a terminal")
	}
	return nil
}

// resolveExecutable applies the installation policy: no candidates
// fall back to the configured default command, a single candidate is
// auto-selected, several prompt the user. A cancelled prompt returns
// picker.ErrCancelled so the caller can abort without output.
func resolveExecutable() (string, error) {
	candidates := ide.NewLocator(logger).Detect()

	switch len(candidates) {
	case 0:
		fmt.Println(styles.FormatWarning(
			fmt.Sprintf("No installed IDE found, falling back to %q", cfg.DefaultCommand)))
		return cfg.DefaultCommand, nil
	case 1:
		fmt.Printf("Using %s\n", styles.NormalText.Bold(true).Render(candidates[0].DisplayName))
		return candidates[0].ExecutablePath, nil
	default:
		if err := requireTTY(); err != nil {
			return "", fmt.Errorf("%d IDEs detected but stdin is not a terminal; pass --ide <path>", len(candidates))
		}
		return picker.Run(candidates, cfg.DefaultCommand)
	}
}
