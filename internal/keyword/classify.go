// Package keyword classifies user keywords against the featured keyword registry.
package keyword

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/types"
)

// Separators are checked in this order; only the first one present in the
// keyword is used to split it.
var Separators = []string{" ", "　", ",", "，", "/", "+", "＋"}

// Registry is the read side of the featured keyword registry.
type Registry interface {
	IsAvailable() bool
	Lookup(keyword string) (types.FeaturedKeyword, bool)
}

// Classifier decides whether a keyword is featured, normal, or a mix.
type Classifier struct {
	registry Registry
	logger   *zap.Logger
}

// NewClassifier creates a classifier over registry. A nil registry behaves
// like an unavailable one.
func NewClassifier(registry Registry, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{registry: registry, logger: logger}
}

// Split breaks a keyword into trimmed, non-empty sub-keywords.
func Split(keyword string) []string {
	sep := ""
	for _, s := range Separators {
		if strings.Contains(keyword, s) {
			sep = s
			break
		}
	}
	if sep == "" {
		if k := strings.TrimSpace(keyword); k != "" {
			return []string{k}
		}
		return nil
	}

	var pieces []string
	for _, p := range strings.Split(keyword, sep) {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Classify never fails: internal errors produce an error/fallback result.
func (c *Classifier) Classify(raw string, target types.Gender) (result types.Classification) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("keyword classification failed",
				zap.String("keyword", raw),
				zap.String("panic", fmt.Sprint(r)))
			result = fallback(raw)
		}
	}()

	keyword := strings.TrimSpace(raw)
	if keyword == "" {
		return types.Classification{
			OriginalKeyword: raw,
			KeywordType:     types.KeywordTypeNormal,
			ProcessingMode:  types.ProcessingModeStandard,
		}
	}

	pieces := Split(keyword)

	if c.registry == nil || !c.registry.IsAvailable() {
		c.logger.Debug("featured keywords unavailable, classifying as normal", zap.String("keyword", keyword))
		return types.Classification{
			OriginalKeyword:   raw,
			KeywordType:       types.KeywordTypeNormal,
			ProcessingMode:    types.ProcessingModeStandard,
			SubKeywordsNormal: pieces,
		}
	}

	var (
		featured []string
		normal   []string
		winner   *types.FeaturedKeyword
	)
	for _, p := range pieces {
		entry, ok := c.registry.Lookup(p)
		if !ok {
			normal = append(normal, p)
			continue
		}
		featured = append(featured, p)
		if winner == nil {
			e := entry
			winner = &e
		}
	}

	result = types.Classification{
		OriginalKeyword:     raw,
		SubKeywordsFeatured: featured,
		SubKeywordsNormal:   normal,
	}

	switch {
	case len(featured) > 0 && len(normal) > 0:
		result.KeywordType = types.KeywordTypeMixed
		result.ProcessingMode = types.ProcessingModeFeatured
	case len(featured) > 0:
		result.KeywordType = types.KeywordTypeFeatured
		result.ProcessingMode = types.ProcessingModeFeatured
	case len(normal) > 0:
		result.KeywordType = types.KeywordTypeNormal
		result.ProcessingMode = types.ProcessingModeStandard
	default:
		c.logger.Warn("keyword produced no sub-keywords", zap.String("keyword", raw))
		return fallback(raw)
	}

	if winner != nil {
		result.IsFeatured = true
		result.FeaturedEntry = winner
		if winner.Gender != target {
			result.GenderMismatch = true
			c.logger.Info("featured keyword gender mismatch",
				zap.String("keyword", winner.Keyword),
				zap.String("entry_gender", string(winner.Gender)),
				zap.String("request_gender", string(target)))
		}
	}

	c.logger.Debug("keyword classified",
		zap.String("keyword", raw),
		zap.String("type", string(result.KeywordType)),
		zap.Strings("featured", featured),
		zap.Strings("normal", normal))

	return result
}

func fallback(raw string) types.Classification {
	return types.Classification{
		OriginalKeyword: raw,
		KeywordType:     types.KeywordTypeError,
		ProcessingMode:  types.ProcessingModeFallback,
	}
}
