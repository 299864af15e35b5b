package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/ideactl/internal/ide"
)

var idesCmd = &cobra.Command{
	Use:   "ides",
	Short: "List detected IDE installations",
	Long: `Probe the well-known install locations for this platform, including
the JetBrains Toolbox layout, and list every IDE executable found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return printIDEs(jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(idesCmd)
	idesCmd.Flags().Bool("json", false, "Output as JSON")
}

func printIDEs(jsonOutput bool) error {
	candidates := ide.NewLocator(logger).Detect()

	if jsonOutput {
		output := struct {
			IDEs  []ide.Candidate `json:"ides"`
			Total int             `json:"total"`
		}{IDEs: candidates, Total: len(candidates)}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	if len(candidates) == 0 {
		fmt.Println("No installed IDE found")
		fmt.Printf("\nGenerated commands will use the default command %q\n", cfg.DefaultCommand)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEXECUTABLE")
	for _, c := range candidates {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", c.DisplayName, c.ExecutablePath)
	}
	_ = w.Flush()

	fmt.Printf("\n%d IDE(s) detected\n", len(candidates))
	return nil
}
