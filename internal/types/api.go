package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Keyword string `json:"keyword" validate:"required,max=100"`
	Gender  string `json:"gender,omitempty" validate:"omitempty,oneof=ladies mens"`
	Season  string `json:"season,omitempty" validate:"omitempty,max=40"`
	Model   string `json:"model,omitempty" validate:"omitempty,max=64"`
}

// Normalize trims the free-text fields in place.
func (r *GenerateRequest) Normalize() {
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.Gender = strings.TrimSpace(r.Gender)
	r.Season = strings.TrimSpace(r.Season)
	r.Model = strings.TrimSpace(r.Model)
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// GenerateResponse is the success envelope for generation.
type GenerateResponse struct {
	Success             bool                 `json:"success"`
	Templates           []GeneratedItem      `json:"templates"`
	Status              int                  `json:"status"`
	IsFeatured          bool                 `json:"is_featured"`
	KeywordType         KeywordType          `json:"keyword_type"`
	ProcessingMode      ProcessingMode       `json:"processing_mode"`
	OriginalKeyword     string               `json:"original_keyword"`
	FeaturedKeywordInfo *FeaturedKeywordInfo `json:"featured_keyword_info"`
	RunID               string               `json:"run_id,omitempty"`
}

// ErrorBody carries a user-facing message and a stable code.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorResponse is the failure envelope shared by all API endpoints.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
	Status  int       `json:"status"`
}

// AdminTokenRequest exchanges the admin password for a bearer token.
type AdminTokenRequest struct {
	Password string `json:"password" validate:"required"`
}

// Validate validates the AdminTokenRequest using the validator.
func (r *AdminTokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// AdminTokenResponse returns a signed admin token.
type AdminTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// ExportRequest is the body of POST /api/export/csv.
type ExportRequest struct {
	Keyword   string          `json:"keyword,omitempty" validate:"omitempty,max=100"`
	Templates []GeneratedItem `json:"templates" validate:"required,min=1,max=100"`
}

// Validate validates the ExportRequest using the validator.
func (r *ExportRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
