package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lintbridge/lintbridge/internal/utils"
	"github.com/lintbridge/lintbridge/pkg/codacy"
	"github.com/lintbridge/lintbridge/pkg/eslint"
	"github.com/lintbridge/lintbridge/pkg/report"
	"github.com/lintbridge/lintbridge/pkg/storage"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create a Codacy coding standard from an ESLint configuration",
	Long: `Reads a resolved ESLint configuration (the JSON output of
'eslint --print-config', or a module.exports-style .eslintrc.js), maps its
rules onto Codacy's ESLint patterns and creates a coding standard:
the standard is created, every other tool is disabled, the ESLint tool is
configured with the mapped patterns in one call, and the standard is
promoted. A JSON report of the run is always written, including on partial
failure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("eslint-config")
		name, _ := cmd.Flags().GetString("name")
		organization, _ := cmd.Flags().GetString("organization")
		providerFlag, _ := cmd.Flags().GetString("provider")
		token, _ := cmd.Flags().GetString("token")
		apiURL, _ := cmd.Flags().GetString("api-url")
		output, _ := cmd.Flags().GetString("output")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		languages, _ := cmd.Flags().GetStringSlice("languages")
		dbPath, _ := cmd.Flags().GetString("dbpath")
		noHistory, _ := cmd.Flags().GetBool("no-history")
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
		timeout, _ := rootCmd.PersistentFlags().GetDuration("timeout")

		provider, err := codacy.ParseProvider(providerFlag)
		if err != nil {
			return err
		}
		if token == "" {
			token = viper.GetString("codacy.token")
		}
		if !dryRun && token == "" {
			return fmt.Errorf("no API token given (use --token or set codacy.token in the config file)")
		}
		if apiURL == "" {
			apiURL = viper.GetString("codacy.api_url")
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading ESLint config: %w", err)
		}

		rules, warnings, err := eslint.Load(content)
		if err != nil {
			return fmt.Errorf("parsing ESLint config: %w", err)
		}
		utils.Log.Infof("Parsed %d rules from %s", len(rules), configPath)
		for _, w := range warnings {
			utils.Log.Warn(w)
		}

		patterns, mapWarnings := codacy.MapRules(rules)
		for _, w := range mapWarnings {
			utils.Log.Warn(w)
		}
		warnings = append(warnings, mapWarnings...)
		utils.Log.Infof("Mapped %d rules onto Codacy patterns", len(patterns))

		spec := codacy.StandardSpec{
			Name:         name,
			Organization: organization,
			Provider:     provider,
			Languages:    languages,
			Patterns:     patterns,
		}

		rep := report.New(spec)
		rep.Warnings = warnings

		if dryRun {
			rep.DryRun = true
			encoded, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		}

		ops, err := codacy.BuildOperations(spec)
		if err != nil {
			return fmt.Errorf("assembling operations: %w", err)
		}

		client := codacy.NewClient(apiURL, string(provider), organization, token, timeout, codacy.DefaultRetryPolicy())
		if proxy != "" {
			if err := client.SetProxy(proxy); err != nil {
				return err
			}
		}

		standardID, results := codacy.Execute(client, ops)
		rep.StandardID = standardID
		rep.Operations = results

		if output == "" {
			output = report.DefaultFilename(name)
		}
		if err := rep.WriteFile(output); err != nil {
			utils.Log.Errorf("Could not write report: %s", err)
		} else {
			utils.Log.Infof("Report written to %s", output)
		}

		if !noHistory {
			if err := recordHistory(cmd.Context(), dbPath, rep); err != nil {
				utils.Log.Warnf("Could not record run history: %s", err)
			}
		}

		if !rep.Succeeded() {
			return fmt.Errorf("sync finished with failures, see %s", output)
		}
		utils.Log.Infof("Coding standard %q is live (id %s)", name, standardID)
		return nil
	},
}

// recordHistory appends the run outcome to the local history database,
// behind a file lock so concurrent invocations don't trample each other.
func recordHistory(ctx context.Context, dbPath string, rep *report.Report) error {
	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return err
	}

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := storage.Open(absPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ops := make([]storage.RunOperation, 0, len(rep.Operations))
	for _, op := range rep.Operations {
		ops = append(ops, storage.RunOperation{
			Operation: op.Operation,
			Status:    string(op.Status),
			Attempts:  op.Attempts,
			Error:     op.Error,
		})
	}

	_, err = db.RecordRun(ctx, storage.Run{
		Name:          rep.Name,
		Organization:  rep.Organization,
		Provider:      rep.Provider,
		StandardID:    rep.StandardID,
		PatternsCount: rep.PatternsCount,
		Succeeded:     rep.Succeeded(),
	}, ops)
	return err
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringP("eslint-config", "f", "", "Path to the resolved ESLint config (JSON or .eslintrc.js)")
	syncCmd.Flags().StringP("name", "n", "", "Name for the coding standard")
	syncCmd.Flags().StringP("organization", "o", "", "Codacy organization name")
	syncCmd.Flags().StringP("provider", "p", "", "Git provider (gh, gl or bb)")
	syncCmd.Flags().StringP("token", "t", "", "Codacy API token (falls back to codacy.token in the config file)")
	syncCmd.Flags().StringP("api-url", "", "", "Codacy API base URL")
	syncCmd.Flags().StringP("output", "", "", "Report file path (default <name>_result.json)")
	syncCmd.Flags().BoolP("dry-run", "", false, "Map the rules and print the standard without calling the API")
	syncCmd.Flags().StringSliceP("languages", "", []string{"Javascript", "TypeScript"}, "Languages for the coding standard")
	syncCmd.Flags().StringP("dbpath", "", "", "Run-history database path (default ~/.config/lintbridge/lintbridge.sqlite)")
	syncCmd.Flags().BoolP("no-history", "", false, "Do not record this run in the history database")
	syncCmd.MarkFlagRequired("eslint-config")
	syncCmd.MarkFlagRequired("name")
	syncCmd.MarkFlagRequired("organization")
	syncCmd.MarkFlagRequired("provider")
}
