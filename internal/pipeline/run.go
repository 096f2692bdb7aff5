// Package pipeline provides the end-to-end orchestration of one copy generation request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/salon-copy/internal/catalog"
	"github.com/jonathan/salon-copy/internal/db"
	"github.com/jonathan/salon-copy/internal/generation"
	"github.com/jonathan/salon-copy/internal/metrics"
	"github.com/jonathan/salon-copy/internal/types"
	"github.com/jonathan/salon-copy/internal/validation"
)

// DefaultLLMTimeout bounds the single model call of a run.
const DefaultLLMTimeout = 120 * time.Second

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Classifier classifies a raw keyword.
type Classifier interface {
	Classify(raw string, target types.Gender) types.Classification
}

// Generator sends a prompt to the language model.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// RunRecorder persists a finished run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *db.GenerationRun) error
}

// Request is one user generation request.
type Request struct {
	Keyword string       `json:"keyword"`
	Gender  types.Gender `json:"gender"`
	Season  string       `json:"season,omitempty"`
	Model   string       `json:"model,omitempty"`
}

// Result is the outcome of a successful run.
type Result struct {
	RunID          uuid.UUID                `json:"run_id"`
	Request        *types.GenerationRequest `json:"request"`
	Classification types.Classification     `json:"classification"`
	Items          []types.GeneratedItem    `json:"items"`
}

// Options wires the pipeline collaborators. Classifier, Scraper and LLM are
// required; the rest are optional.
type Options struct {
	Classifier   Classifier
	Scraper      catalog.Scraper
	LLM          Generator
	Builder      *generation.Builder
	ResolveModel func(id string) (string, bool)
	Recorder     RunRecorder
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	LLMTimeout   time.Duration
}

// Pipeline runs generation requests. It is safe for concurrent use.
type Pipeline struct {
	classifier   Classifier
	scraper      catalog.Scraper
	llm          Generator
	builder      *generation.Builder
	resolveModel func(id string) (string, bool)
	recorder     RunRecorder
	metrics      *metrics.Metrics
	logger       *zap.Logger
	llmTimeout   time.Duration
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		classifier:   opts.Classifier,
		scraper:      opts.Scraper,
		llm:          opts.LLM,
		builder:      opts.Builder,
		resolveModel: opts.ResolveModel,
		recorder:     opts.Recorder,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		llmTimeout:   opts.LLMTimeout,
	}
	if p.builder == nil {
		p.builder = generation.NewBuilder(generation.DefaultConfig())
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.llmTimeout <= 0 {
		p.llmTimeout = DefaultLLMTimeout
	}
	return p
}

// progress serializes callback invocations; steps may report from
// different goroutines.
type progress struct {
	mu    sync.Mutex
	runID string
	cb    ProgressCallback
}

func (p *progress) emit(step, category, message string, content any) {
	if p.cb == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cb(ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		RunID:    p.runID,
		Content:  content,
	})
}

// Run classifies the keyword while the catalog is scraped, builds the
// request, calls the model once and validates its output.
func (p *Pipeline) Run(ctx context.Context, req Request, onProgress ProgressCallback) (*Result, error) {
	start := time.Now()
	runID := uuid.New()

	ex := &execution{
		req:     req,
		keyword: strings.TrimSpace(req.Keyword),
		gender:  req.Gender,
		prog:    &progress{runID: runID.String(), cb: onProgress},
		logger:  p.logger.With(zap.String("run_id", runID.String())),
	}
	if ex.gender == "" {
		ex.gender = types.DefaultGender
	}

	err := p.execute(ctx, ex)
	p.finish(ctx, runID, ex, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:          runID,
		Request:        ex.genReq,
		Classification: ex.classification,
		Items:          ex.items,
	}, nil
}

// execution holds the state of one run.
type execution struct {
	req     Request
	keyword string
	gender  types.Gender
	prog    *progress
	logger  *zap.Logger

	classification types.Classification
	titles         []string
	genReq         *types.GenerationRequest
	items          []types.GeneratedItem
}

func (p *Pipeline) execute(ctx context.Context, ex *execution) error {
	if ex.keyword == "" {
		return &InputError{Field: "keyword", Message: "must not be empty"}
	}
	if !ex.gender.Valid() {
		return &InputError{Field: "gender", Message: fmt.Sprintf("must be %q or %q", types.GenderLadies, types.GenderMens)}
	}

	ex.logger.Info("starting generation",
		zap.String("keyword", ex.keyword),
		zap.String("gender", string(ex.gender)),
		zap.String("season", ex.req.Season))

	// Classification and scraping are independent.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t := time.Now()
		c := p.classifier.Classify(ex.keyword, ex.gender)
		p.metrics.ObserveStage(StepClassify, time.Since(t))
		p.metrics.RecordClassification(string(c.KeywordType))

		mu.Lock()
		ex.classification = c
		mu.Unlock()

		ex.prog.emit(StepClassify, CategoryInput,
			fmt.Sprintf("Classified keyword as %s", c.KeywordType), c)
		return nil
	})

	g.Go(func() error {
		t := time.Now()
		found, err := p.scraper.FetchTitles(gctx, ex.keyword, ex.gender)
		p.metrics.ObserveStage(StepScrape, time.Since(t))
		if err != nil {
			ex.logger.Error("catalog scrape failed", zap.Error(err))
			return &UpstreamError{Stage: StepScrape, Cause: err}
		}

		mu.Lock()
		ex.titles = found
		mu.Unlock()

		ex.prog.emit(StepScrape, CategoryInput,
			fmt.Sprintf("Found %d catalog titles", len(found)), map[string]int{"count": len(found)})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	ex.titles = validation.SanitizeTitles(ex.titles, ex.logger)
	if p.metrics != nil {
		p.metrics.ScrapedTitles.Observe(float64(len(ex.titles)))
	}
	if len(ex.titles) == 0 {
		ex.logger.Warn("no catalog titles for keyword", zap.String("keyword", ex.keyword))
		return ErrNoTitles
	}

	model := ex.req.Model
	if p.resolveModel != nil {
		resolved, ok := p.resolveModel(model)
		if !ok {
			ex.logger.Warn("unsupported model requested, using default",
				zap.String("requested", model), zap.String("model", resolved))
		}
		model = resolved
	}

	t := time.Now()
	built := p.builder.Build(generation.BuildInput{
		Keyword:        ex.keyword,
		Gender:         ex.gender,
		Season:         ex.req.Season,
		Model:          model,
		Titles:         ex.titles,
		Classification: ex.classification,
	})
	prompt, err := generation.RenderPrompt(built)
	if err != nil {
		return fmt.Errorf("failed to render prompt: %w", err)
	}
	p.metrics.ObserveStage(StepBuild, time.Since(t))
	ex.genReq = built
	ex.prog.emit(StepBuild, CategoryGeneration,
		fmt.Sprintf("Built %s prompt", built.Variant),
		map[string]any{"variant": built.Variant, "model": built.Model, "titles": len(built.CandidateTitles)})

	raw, err := p.generate(ctx, prompt, built.Model, ex)
	if err != nil {
		return err
	}

	t = time.Now()
	report, err := validation.ValidateReport(raw, built, ex.logger)
	p.metrics.ObserveStage(StepValidate, time.Since(t))
	if err != nil {
		var noValid *validation.NoValidItemsError
		if errors.As(err, &noValid) {
			p.metrics.RecordRejected(len(noValid.Rejected))
		}
		return err
	}
	p.metrics.RecordRejected(len(report.Rejected))
	valid := report.Items
	ex.items = valid
	ex.prog.emit(StepValidate, CategoryGeneration,
		fmt.Sprintf("Validated %d items", len(valid)), valid)
	return nil
}

func (p *Pipeline) generate(ctx context.Context, prompt, model string, ex *execution) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.llmTimeout)
	defer cancel()

	t := time.Now()
	raw, err := p.llm.Generate(callCtx, prompt, model)
	p.metrics.ObserveStage(StepGenerate, time.Since(t))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			ex.logger.Error("model call timed out", zap.Duration("timeout", p.llmTimeout))
			return "", &TimeoutError{Stage: StepGenerate, Timeout: p.llmTimeout}
		}
		ex.logger.Error("model call failed", zap.Error(err))
		return "", &UpstreamError{Stage: StepGenerate, Cause: err}
	}

	ex.prog.emit(StepGenerate, CategoryGeneration,
		fmt.Sprintf("Received %d bytes from %s", len(raw), model), nil)
	return raw, nil
}

// finish records metrics and, when configured, the run history row.
func (p *Pipeline) finish(ctx context.Context, runID uuid.UUID, ex *execution, runErr error, elapsed time.Duration) {
	c := ex.classification
	outcome := Outcome(runErr)
	p.metrics.RecordGeneration(outcome, string(c.KeywordType))

	if runErr != nil {
		ex.logger.Warn("generation failed", zap.String("outcome", outcome), zap.Error(runErr))
	} else {
		ex.logger.Info("generation complete",
			zap.Int("items", len(ex.items)), zap.Duration("elapsed", elapsed))
	}

	if p.recorder == nil {
		return
	}

	run := &db.GenerationRun{
		ID:             runID,
		Keyword:        ex.keyword,
		Gender:         string(ex.gender),
		Model:          ex.req.Model,
		KeywordType:    string(c.KeywordType),
		ProcessingMode: string(c.ProcessingMode),
		IsFeatured:     c.IsFeatured,
		TitleCount:     len(ex.titles),
		ItemCount:      len(ex.items),
		Outcome:        outcome,
		DurationMS:     elapsed.Milliseconds(),
	}
	if ex.genReq != nil {
		run.Model = ex.genReq.Model
	}
	if ex.req.Season != "" {
		season := ex.req.Season
		run.Season = &season
	}
	if c.FeaturedEntry != nil {
		name := c.FeaturedEntry.Name
		run.FeaturedKeyword = &name
	}
	if runErr != nil {
		msg := runErr.Error()
		run.ErrorMessage = &msg
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.recorder.RecordRun(recordCtx, run); err != nil {
		ex.logger.Warn("failed to record generation run", zap.Error(err))
	}
}

// Outcome maps a run error to its recorded outcome.
func Outcome(err error) string {
	var (
		inputErr   *InputError
		timeoutErr *TimeoutError
		parseErr   *validation.ParseError
		noValid    *validation.NoValidItemsError
	)
	switch {
	case err == nil:
		return db.OutcomeSuccess
	case errors.Is(err, ErrNoTitles):
		return db.OutcomeNoTitles
	case errors.As(err, &inputErr):
		return db.OutcomeInvalidInput
	case errors.As(err, &timeoutErr):
		return db.OutcomeTimeout
	case errors.As(err, &parseErr):
		return db.OutcomeParseError
	case errors.As(err, &noValid):
		return db.OutcomeNoValid
	default:
		return db.OutcomeUpstream
	}
}
