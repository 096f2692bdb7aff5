package types

// KeywordType records how a keyword was classified.
type KeywordType string

const (
	// KeywordTypeNormal means no sub-keyword is featured
	KeywordTypeNormal KeywordType = "normal"
	// KeywordTypeFeatured means every sub-keyword is featured
	KeywordTypeFeatured KeywordType = "featured"
	// KeywordTypeMixed means featured and normal sub-keywords were both present
	KeywordTypeMixed KeywordType = "mixed"
	// KeywordTypeError means classification could not produce a usable result
	KeywordTypeError KeywordType = "error"
)

// ProcessingMode is the prompt instruction path chosen for a classification.
type ProcessingMode string

const (
	// ProcessingModeStandard uses the ordinary prompt
	ProcessingModeStandard ProcessingMode = "standard"
	// ProcessingModeFeatured injects the featured condition
	ProcessingModeFeatured ProcessingMode = "featured"
	// ProcessingModeFallback is used after a classification error
	ProcessingModeFallback ProcessingMode = "fallback"
)

// Classification is the result of classifying one raw keyword. It is built
// once per request and never mutated afterwards.
type Classification struct {
	OriginalKeyword     string           `json:"original_keyword"`
	KeywordType         KeywordType      `json:"keyword_type"`
	ProcessingMode      ProcessingMode   `json:"processing_mode"`
	IsFeatured          bool             `json:"is_featured"`
	FeaturedEntry       *FeaturedKeyword `json:"featured_entry,omitempty"`
	SubKeywordsFeatured []string         `json:"sub_keywords_featured"`
	SubKeywordsNormal   []string         `json:"sub_keywords_normal"`

	// GenderMismatch is set when the winning entry targets a different
	// gender than the request. It never changes the outcome.
	GenderMismatch bool `json:"gender_mismatch,omitempty"`
}

// FeaturedInfo returns the featured entry summary, or nil.
func (c Classification) FeaturedInfo() *FeaturedKeywordInfo {
	if !c.IsFeatured || c.FeaturedEntry == nil {
		return nil
	}
	return c.FeaturedEntry.Info()
}
