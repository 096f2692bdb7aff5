// Package main provides the salon_copy CLI: the HTTP API server plus offline
// classification, generation and registry tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/config"
	"github.com/jonathan/salon-copy/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "salon_copy",
	Short: "Salon marketing copy generator",
	Long: "salon_copy scrapes a hair catalog for a keyword, classifies the keyword against the " +
		"featured keyword registry and asks Gemini for listing copy that follows the catalog's style.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (default $CONFIG_FILE or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

// setup loads configuration and builds the logger for every subcommand.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Format)
	if err != nil {
		return err
	}

	cfg = loaded
	logger = l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
