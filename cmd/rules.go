package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lintbridge/lintbridge/pkg/codacy"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the ESLint rules lintbridge can map to Codacy patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := codacy.SupportedRules()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ESLINT RULE\tCODACY PATTERN")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, codacy.PatternID(name))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d rules supported\n", len(names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
