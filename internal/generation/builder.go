// Package generation assembles language-model requests from a classified
// keyword, scraped titles and the request options.
package generation

import (
	"strings"

	"github.com/jonathan/salon-copy/internal/types"
)

// DefaultMaxItems is how many items are requested and kept.
const DefaultMaxItems = 15

// Config controls request assembly.
type Config struct {
	MaxItems   int
	CharLimits types.CharLimits
}

// DefaultConfig returns the standard listing limits.
func DefaultConfig() Config {
	return Config{
		MaxItems:   DefaultMaxItems,
		CharLimits: types.DefaultCharLimits(),
	}
}

// BuildInput is the raw material for one request.
type BuildInput struct {
	Keyword        string
	Gender         types.Gender
	Season         string
	Model          string
	Titles         []string
	Classification types.Classification
}

// Builder turns BuildInput into GenerationRequest values.
type Builder struct {
	cfg Config
}

// NewBuilder returns a builder; zero config fields fall back to defaults.
func NewBuilder(cfg Config) *Builder {
	def := DefaultConfig()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.CharLimits.Title <= 0 {
		cfg.CharLimits.Title = def.CharLimits.Title
	}
	if cfg.CharLimits.Menu <= 0 {
		cfg.CharLimits.Menu = def.CharLimits.Menu
	}
	if cfg.CharLimits.Comment <= 0 {
		cfg.CharLimits.Comment = def.CharLimits.Comment
	}
	if cfg.CharLimits.HashtagWord <= 0 {
		cfg.CharLimits.HashtagWord = def.CharLimits.HashtagWord
	}
	return &Builder{cfg: cfg}
}

// Build assembles a request. Unknown season tags mean no seasonal emphasis;
// an invalid gender falls back to the default.
func (b *Builder) Build(in BuildInput) *types.GenerationRequest {
	gender := in.Gender
	if !gender.Valid() {
		gender = types.DefaultGender
	}

	titles := make([]string, len(in.Titles))
	copy(titles, in.Titles)

	c := in.Classification
	c.SubKeywordsFeatured = cloneStrings(c.SubKeywordsFeatured)
	c.SubKeywordsNormal = cloneStrings(c.SubKeywordsNormal)
	if c.FeaturedEntry != nil {
		e := *c.FeaturedEntry
		c.FeaturedEntry = &e
	}

	return &types.GenerationRequest{
		OriginalKeyword:   in.Keyword,
		NormalizedKeyword: strings.TrimSpace(in.Keyword),
		Gender:            gender,
		Season:            types.ParseSeason(in.Season),
		Model:             in.Model,
		CandidateTitles:   titles,
		Classification:    c,
		Variant:           VariantFor(c),
		MaxItems:          b.cfg.MaxItems,
		CharLimits:        b.cfg.CharLimits,
	}
}

// VariantFor picks the instruction variant for a classification.
func VariantFor(c types.Classification) types.PromptVariant {
	if !c.IsFeatured || c.FeaturedEntry == nil {
		return types.VariantStandard
	}
	switch c.KeywordType {
	case types.KeywordTypeFeatured:
		return types.VariantFeatured
	case types.KeywordTypeMixed:
		return types.VariantMixed
	default:
		return types.VariantStandard
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
