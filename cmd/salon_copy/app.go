package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/catalog"
	"github.com/jonathan/salon-copy/internal/config"
	"github.com/jonathan/salon-copy/internal/db"
	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/generation"
	"github.com/jonathan/salon-copy/internal/keyword"
	"github.com/jonathan/salon-copy/internal/llm"
	"github.com/jonathan/salon-copy/internal/metrics"
	"github.com/jonathan/salon-copy/internal/pipeline"
)

// app holds the collaborators shared by serve and generate.
type app struct {
	registry *featured.Registry
	metrics  *metrics.Metrics
	database *db.DB
	llm      *llm.GeminiClient
	pipeline *pipeline.Pipeline
}

// llmConfig maps the service configuration onto the Gemini client config.
func llmConfig(c config.LLMConfig) *llm.Config {
	lc := llm.DefaultConfig()
	if c.DefaultModel != "" {
		lc = lc.WithModel(llm.TierStandard, c.DefaultModel)
	}
	if c.LiteModel != "" {
		lc = lc.WithModel(llm.TierLite, c.LiteModel)
	}
	lc.Temperature = c.Temperature
	lc.MaxOutputTokens = c.MaxOutputTokens
	lc.ThinkingBudget = c.ThinkingBudget
	return lc
}

func scraperOptions(c config.ScraperConfig) catalog.Options {
	opts := catalog.DefaultOptions()
	opts.MaxPages = c.MaxPages
	opts.DelayMin = c.DelayMin
	opts.DelayMax = c.DelayMax
	opts.Timeout = c.Timeout
	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}
	return opts
}

// newApp wires the registry, optional database, scraper, model client and
// pipeline. The caller must call close.
func newApp(ctx context.Context, c *config.Config, log *zap.Logger) (*app, error) {
	if c.LLM.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	a := &app{registry: featured.NewRegistry(c.Featured.Path, log.Named("featured"))}
	a.metrics = metrics.New(a.registry)

	if c.Database.URL != "" {
		if c.Database.AutoMigrate {
			if err := db.RunMigrations(c.Database.URL); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		database, err := db.Connect(ctx, c.Database.URL)
		if err != nil {
			return nil, err
		}
		a.database = database
	} else {
		log.Info("DATABASE_URL not set; run history and title cache disabled")
	}

	mode, err := catalog.ParseMode(c.Scraper.Mode)
	if err != nil {
		a.close()
		return nil, err
	}
	scraper := catalog.New(mode, scraperOptions(c.Scraper), log.Named("catalog"))
	if a.database != nil && c.Scraper.CacheTTL > 0 {
		scraper = catalog.NewCachedScraper(scraper, a.database, c.Scraper.CacheTTL, log.Named("catalog"))
	}

	lc := llmConfig(c.LLM)
	client, err := llm.NewGeminiClient(ctx, lc, c.LLM.APIKey, log.Named("llm"))
	if err != nil {
		a.close()
		return nil, err
	}
	a.llm = client

	opts := pipeline.Options{
		Classifier:   keyword.NewClassifier(a.registry, log.Named("keyword")),
		Scraper:      scraper,
		LLM:          client,
		Builder:      generation.NewBuilder(generation.Config{MaxItems: c.Generation.MaxItems, CharLimits: c.Generation.CharLimits}),
		ResolveModel: lc.ResolveModel,
		Metrics:      a.metrics,
		Logger:       log.Named("pipeline"),
		LLMTimeout:   c.LLM.Timeout,
	}
	if a.database != nil {
		opts.Recorder = a.database
	}
	a.pipeline = pipeline.New(opts)

	return a, nil
}

func (a *app) close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.database != nil {
		a.database.Close()
	}
}
