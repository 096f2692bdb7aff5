package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitleCacheTTL is how long scraped titles stay fresh.
const DefaultTitleCacheTTL = 24 * time.Hour

// Run outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeNoTitles     = "no_titles"
	OutcomeParseError   = "parse_error"
	OutcomeNoValid      = "no_valid_items"
	OutcomeUpstream     = "upstream_error"
	OutcomeTimeout      = "timeout"
	OutcomeInvalidInput = "invalid_input"
)

// GenerationRun is one recorded pipeline run.
type GenerationRun struct {
	ID              uuid.UUID `json:"id"`
	Keyword         string    `json:"keyword"`
	Gender          string    `json:"gender"`
	Season          *string   `json:"season,omitempty"`
	Model           string    `json:"model"`
	KeywordType     string    `json:"keyword_type"`
	ProcessingMode  string    `json:"processing_mode"`
	IsFeatured      bool      `json:"is_featured"`
	FeaturedKeyword *string   `json:"featured_keyword,omitempty"`
	TitleCount      int       `json:"title_count"`
	ItemCount       int       `json:"item_count"`
	Outcome         string    `json:"outcome"`
	ErrorMessage    *string   `json:"error_message,omitempty"`
	DurationMS      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}
