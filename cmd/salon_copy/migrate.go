package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var purgeCacheCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Delete scraped titles older than the cache TTL",
	Args:  cobra.NoArgs,
	RunE:  runPurgeCache,
}

func init() {
	rootCmd.AddCommand(migrateCmd, purgeCacheCmd)
}

func requireDatabaseURL() (string, error) {
	if cfg.Database.URL == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return cfg.Database.URL, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	url, err := requireDatabaseURL()
	if err != nil {
		return err
	}
	if err := db.RunMigrations(url); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}

func runPurgeCache(cmd *cobra.Command, _ []string) error {
	url, err := requireDatabaseURL()
	if err != nil {
		return err
	}

	database, err := db.Connect(cmd.Context(), url)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := database.PurgeTitles(cmd.Context(), cfg.Scraper.CacheTTL)
	if err != nil {
		return err
	}
	logger.Info("purged title cache", zap.Int64("rows", n), zap.Duration("max_age", cfg.Scraper.CacheTTL))
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached title sets\n", n)
	return nil
}
