package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/salon-copy/internal/export"
	"github.com/jonathan/salon-copy/internal/observability"
	"github.com/jonathan/salon-copy/internal/pipeline"
	"github.com/jonathan/salon-copy/internal/types"
)

var (
	generateGender  string
	generateSeason  string
	generateModel   string
	generateCSV     bool
	generateOutput  string
	generateVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <keyword>",
	Short: "Generate listing copy for one keyword",
	Long:  "Runs the full pipeline once (scrape, classify, prompt, model call, validation) and writes the items as JSON or CSV.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateGender, "gender", "g", "", "Target gender: ladies or mens (default ladies)")
	generateCmd.Flags().StringVarP(&generateSeason, "season", "s", "", "Optional season hint, e.g. 春")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "Model id (default from config)")
	generateCmd.Flags().BoolVar(&generateCSV, "csv", false, "Write CSV instead of JSON")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Output file (default stdout)")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print classification, request and item summaries to stderr")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gender, err := types.ParseGender(generateGender)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.close()

	stderr := cmd.ErrOrStderr()
	result, err := a.pipeline.Run(ctx, pipeline.Request{
		Keyword: args[0],
		Gender:  gender,
		Season:  generateSeason,
		Model:   generateModel,
	}, func(event pipeline.ProgressEvent) {
		fmt.Fprintf(stderr, "[%s] %s\n", event.Step, event.Message)
	})
	if err != nil {
		return fmt.Errorf("generation failed (%s): %w", pipeline.Outcome(err), err)
	}

	if generateVerbose {
		p := observability.NewPrinter(stderr)
		p.PrintClassification(result.Classification)
		p.PrintRequest(result.Request)
		p.PrintItems(result.Items)
	}

	w := cmd.OutOrStdout()
	if generateOutput != "" {
		f, err := os.Create(generateOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeItems(w, result, generateCSV); err != nil {
		return err
	}
	if generateOutput != "" {
		fmt.Fprintf(stderr, "Wrote %d items to %s\n", len(result.Items), generateOutput)
	}
	return nil
}

func writeItems(w io.Writer, result *pipeline.Result, asCSV bool) error {
	if asCSV {
		return export.WriteCSV(w, result.Items)
	}

	c := result.Classification
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(types.GenerateResponse{
		Success:             true,
		Templates:           result.Items,
		Status:              200,
		IsFeatured:          c.IsFeatured,
		KeywordType:         c.KeywordType,
		ProcessingMode:      c.ProcessingMode,
		OriginalKeyword:     c.OriginalKeyword,
		FeaturedKeywordInfo: c.FeaturedInfo(),
		RunID:               result.RunID.String(),
	})
}
