package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/types"
)

var (
	keywordsFile   string
	keywordsGender string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Inspect the featured keywords registry",
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List featured keywords with registry health",
	Args:  cobra.NoArgs,
	RunE:  runKeywordsList,
}

var keywordsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a featured keywords file",
	Long:  "Loads the registry file and fails if it cannot be read or parsed. Rejected entries are reported as warnings.",
	Args:  cobra.NoArgs,
	RunE:  runKeywordsValidate,
}

func init() {
	keywordsCmd.PersistentFlags().StringVarP(&keywordsFile, "file", "f", "", "Featured keywords JSON file (overrides config)")
	keywordsListCmd.Flags().StringVarP(&keywordsGender, "gender", "g", "", "Only list entries for ladies or mens")

	keywordsCmd.AddCommand(keywordsListCmd, keywordsValidateCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func keywordsPath() string {
	if keywordsFile != "" {
		return keywordsFile
	}
	return cfg.Featured.Path
}

func runKeywordsList(cmd *cobra.Command, _ []string) error {
	registry := featured.NewRegistry(keywordsPath(), logger.Named("featured"))

	entries := registry.All()
	if keywordsGender != "" {
		gender, err := types.ParseGender(keywordsGender)
		if err != nil {
			return err
		}
		entries = registry.ByGender(gender)
	}
	if entries == nil {
		entries = []types.FeaturedKeyword{}
	}

	return printJSON(cmd, map[string]any{
		"keywords":      entries,
		"health_status": registry.Health(),
	})
}

func runKeywordsValidate(cmd *cobra.Command, _ []string) error {
	path := keywordsPath()
	result := featured.Load(path)

	if err := printJSON(cmd, map[string]any{
		"file_path":      path,
		"valid_entries":  len(result.Entries),
		"warnings":       result.Warnings,
		"warnings_count": len(result.Warnings),
	}); err != nil {
		return err
	}

	if result.Err != nil {
		return fmt.Errorf("featured keywords file is invalid: %w", result.Err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Validation passed: %d entries, %d warnings\n", len(result.Entries), len(result.Warnings))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
