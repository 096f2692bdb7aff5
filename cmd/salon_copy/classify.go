package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/keyword"
	"github.com/jonathan/salon-copy/internal/types"
)

var (
	classifyGender   string
	classifyFeatured string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <keyword>",
	Short: "Classify a keyword against the featured registry",
	Long:  "Classifies a keyword offline and prints the classification as JSON. No scraping or model calls are made.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyGender, "gender", "g", "", "Target gender: ladies or mens (default ladies)")
	classifyCmd.Flags().StringVarP(&classifyFeatured, "featured", "f", "", "Featured keywords JSON file (overrides config)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	gender, err := types.ParseGender(classifyGender)
	if err != nil {
		return err
	}

	path := cfg.Featured.Path
	if classifyFeatured != "" {
		path = classifyFeatured
	}
	registry := featured.NewRegistry(path, logger.Named("featured"))
	classifier := keyword.NewClassifier(registry, logger.Named("keyword"))

	result := classifier.Classify(args[0], gender)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
