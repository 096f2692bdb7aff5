package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the generation, featured keyword, export and run history endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.close()

	if cfg.Featured.Watch {
		watcher, err := featured.NewWatcher(a.registry, cfg.Featured.Debounce, logger.Named("featured"))
		if err != nil {
			return fmt.Errorf("failed to create featured keywords watcher: %w", err)
		}
		watcher.OnReload = a.metrics.RecordReload
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("featured keywords watcher not started", zap.Error(err))
		}
		defer watcher.Stop()
	}

	opts := server.Options{
		Config:   cfg,
		Pipeline: a.pipeline,
		Registry: a.registry,
		Metrics:  a.metrics,
		Logger:   logger.Named("server"),
	}
	if a.database != nil {
		opts.Runs = a.database
	}
	if !cfg.Admin.Enabled() {
		logger.Info("admin routes disabled; set ADMIN_PASSWORD_HASH and JWT_SECRET to enable registry reload")
	}

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
