package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	legacygenai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// Client completes prompts with a Gemini model.
type Client interface {
	// Generate returns the model's raw text for prompt. An empty model id
	// selects the default model.
	Generate(ctx context.Context, prompt, model string) (string, error)
	Close() error
}

// backend is one SDK path to the Gemini API.
type backend interface {
	name() string
	generate(ctx context.Context, cfg *Config, model, prompt string) (string, error)
	close() error
}

// GeminiClient calls the google.golang.org/genai SDK and falls back to the
// older generative-ai-go SDK when the primary call fails.
type GeminiClient struct {
	config   *Config
	backends []backend
	logger   *zap.Logger
}

// NewGeminiClient creates a client with both SDK backends.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	primary, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	backends := []backend{&genaiBackend{client: primary}}

	legacy, err := legacygenai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Warn("legacy Gemini client unavailable, continuing without fallback", zap.Error(err))
	} else {
		backends = append(backends, &legacyBackend{client: legacy})
	}

	return &GeminiClient{config: config, backends: backends, logger: logger}, nil
}

// Generate tries each backend in order. It stops early once ctx is done.
func (c *GeminiClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	resolved, ok := c.config.ResolveModel(model)
	if !ok {
		c.logger.Warn("unsupported model requested, using default",
			zap.String("requested", model), zap.String("model", resolved))
	}

	var errs []error
	for _, b := range c.backends {
		text, err := b.generate(ctx, c.config, resolved, prompt)
		if err == nil {
			return text, nil
		}

		callErr := &APICallError{Backend: b.name(), Model: resolved, Cause: err}
		errs = append(errs, callErr)
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("Gemini call failed", zap.String("backend", b.name()), zap.Error(err))
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("no Gemini backend configured")
	}
	return "", errors.Join(errs...)
}

// Close releases resources held by the backends.
func (c *GeminiClient) Close() error {
	var errs []error
	for _, b := range c.backends {
		if err := b.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type genaiBackend struct {
	client *genai.Client
}

func (b *genaiBackend) name() string { return "genai" }

func (b *genaiBackend) generate(ctx context.Context, cfg *Config, model, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		MaxOutputTokens: cfg.MaxOutputTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(cfg.ThinkingBudget),
		},
	})
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (b *genaiBackend) close() error { return nil }

type legacyBackend struct {
	client *legacygenai.Client
}

func (b *legacyBackend) name() string { return "generative-ai-go" }

func (b *legacyBackend) generate(ctx context.Context, cfg *Config, model, prompt string) (string, error) {
	m := b.client.GenerativeModel(model)
	m.SetTemperature(cfg.Temperature)
	m.SetMaxOutputTokens(cfg.MaxOutputTokens)

	resp, err := m.GenerateContent(ctx, legacygenai.Text(prompt))
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

func (b *legacyBackend) close() error {
	return b.client.Close()
}

func extractTextFromResponse(resp *legacygenai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(legacygenai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(parts, ""), nil
}
