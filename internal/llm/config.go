// Package llm wraps the Gemini SDKs behind a small client interface used by
// the copy generation pipeline.
package llm

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is the cheaper, faster model
	TierLite ModelTier = "lite"
	// TierStandard is the default model
	TierStandard ModelTier = "standard"
)

// Generation defaults.
const (
	DefaultTemperature     float32 = 0.7
	DefaultMaxOutputTokens int32   = 8192
	DefaultThinkingBudget  int32   = 0
)

// Config holds model selection and sampling settings.
type Config struct {
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
	ThinkingBudget  int32
}

// DefaultConfig returns the Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		ThinkingBudget:  DefaultThinkingBudget,
	}
}

// GetModel returns the model name for a tier, falling back to standard
// then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// DefaultModel is the standard tier model.
func (c *Config) DefaultModel() string {
	return c.GetModel(TierStandard)
}

// SupportedModels lists the configured model ids, standard first.
func (c *Config) SupportedModels() []string {
	var out []string
	for _, tier := range []ModelTier{TierStandard, TierLite} {
		if m, ok := c.Models[tier]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ResolveModel maps a requested model id to a supported one. Empty or
// unsupported ids resolve to the default model and ok is false for the
// unsupported case.
func (c *Config) ResolveModel(id string) (model string, ok bool) {
	if id == "" {
		return c.DefaultModel(), true
	}
	for _, m := range c.Models {
		if m == id {
			return m, true
		}
	}
	return c.DefaultModel(), false
}

// WithModel returns a copy with a specific model for a tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
