package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/config"
	applog "github.com/bnema/ideactl/internal/logger"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose bool
	logger  *log.Logger
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "ideactl",
	Short:   "JetBrains plugin basket CLI",
	Version: version + " (" + commit + ")",
	Long: `Search the JetBrains plugin marketplace, keep a persistent basket of
plugins and generate the installPlugins command for your installed IDE.

Quick start:
  ideactl search rust     Search the marketplace and pick plugins
  ideactl generate        Build the install command for the basket`,
	SilenceUsage: true,
	RunE:         runMenu,
}

func Execute() {
	defer applog.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger = applog.Init(verbose)

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
}
