package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lintbridge/lintbridge/internal/utils"
	"github.com/lintbridge/lintbridge/pkg/storage"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past sync runs from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		limit, _ := cmd.Flags().GetInt("limit")

		absPath, err := utils.GetAbsDBPath(dbPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("no run history found at %s", absPath)
		}

		db, err := storage.Open(absPath)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tNAME\tORG\tPROVIDER\tSTANDARD\tPATTERNS\tRESULT")
		for _, r := range runs {
			result := "ok"
			if !r.Succeeded {
				result = "failed"
			}
			standard := r.StandardID
			if standard == "" {
				standard = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Name, r.Organization, r.Provider, standard, r.PatternsCount, result)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringP("dbpath", "", "", "Run-history database path (default ~/.config/lintbridge/lintbridge.sqlite)")
	runsCmd.Flags().IntP("limit", "", 20, "Maximum number of runs to show")
}
