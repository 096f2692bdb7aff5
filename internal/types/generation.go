package types

// CharLimits holds maximum lengths, in runes, for generated fields.
type CharLimits struct {
	Title       int `json:"title" yaml:"title"`
	Menu        int `json:"menu" yaml:"menu"`
	Comment     int `json:"comment" yaml:"comment"`
	HashtagWord int `json:"hashtag" yaml:"hashtag"`
}

// DefaultCharLimits returns the limits used by the catalog listing format.
func DefaultCharLimits() CharLimits {
	return CharLimits{
		Title:       30,
		Menu:        50,
		Comment:     120,
		HashtagWord: 20,
	}
}

// MinHashtags is the minimum number of hashtags a generated item must carry.
const MinHashtags = 7

// PromptVariant selects the instruction block used for a request.
type PromptVariant string

const (
	// VariantStandard is the ordinary prompt
	VariantStandard PromptVariant = "standard"
	// VariantFeatured injects the featured condition as the top priority
	VariantFeatured PromptVariant = "featured"
	// VariantMixed injects the featured condition and keeps the other sub-keywords in play
	VariantMixed PromptVariant = "mixed"
)

// GenerationRequest is everything the language model needs for one user
// request. It is immutable once built.
type GenerationRequest struct {
	OriginalKeyword   string         `json:"original_keyword"`
	NormalizedKeyword string         `json:"normalized_keyword"`
	Gender            Gender         `json:"gender"`
	Season            *Season        `json:"season,omitempty"`
	Model             string         `json:"model"`
	CandidateTitles   []string       `json:"candidate_titles"`
	Classification    Classification `json:"classification"`
	Variant           PromptVariant  `json:"variant"`
	MaxItems          int            `json:"max_items"`
	CharLimits        CharLimits     `json:"char_limits"`
}

// GeneratedItem is one piece of marketing copy produced by the model.
type GeneratedItem struct {
	Title    string   `json:"title"`
	Menu     string   `json:"menu"`
	Comment  string   `json:"comment"`
	Hashtags []string `json:"hashtag"`

	IsFeatured      bool           `json:"is_featured"`
	KeywordType     KeywordType    `json:"keyword_type"`
	ProcessingMode  ProcessingMode `json:"processing_mode"`
	OriginalKeyword string         `json:"original_keyword"`
}
