// Package server provides the HTTP REST API for the salon copy generator.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/salon-copy/internal/pipeline"
	"github.com/jonathan/salon-copy/internal/server/middleware"
)

// Error codes returned in the error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidJSON  = "INVALID_JSON"
	CodeNoResults    = "NO_RESULTS_FOUND"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
	CodeTimeout      = "UPSTREAM_TIMEOUT"
	CodeNotFound     = "NOT_FOUND"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized = middleware.CodeUnauthorized
)

// User-facing messages.
const (
	msgKeywordRequired = "キーワードを入力してください。"
	msgInvalidGender   = "無効な性別が指定されました。ladies または mens を指定してください。"
	msgInvalidJSON     = "リクエストの形式が正しくありません。Content-Typeがapplication/jsonであること、有効なJSONであることを確認してください。"
	msgNoResults       = "一致するヘアスタイルが見つかりませんでした。別のキーワードをお試しください。"
	msgInternal        = "テンプレート生成中に予期せぬエラーが発生しました。"
	msgTimeout         = "テンプレート生成がタイムアウトしました。しばらくしてから再度お試しください。"
	msgRateLimited     = "リクエストが多すぎます。しばらくしてから再度お試しください。"
	msgInvalidPassword = "パスワードが正しくありません。"
)

// ErrInvalidJSON indicates a request body that is not valid JSON.
type ErrInvalidJSON struct {
	Cause error
}

func (e *ErrInvalidJSON) Error() string {
	return "invalid JSON body: " + e.Cause.Error()
}

func (e *ErrInvalidJSON) Unwrap() error {
	return e.Cause
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// ErrInvalidCredentials indicates a wrong admin password
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid admin password"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidJSON *ErrInvalidJSON
		validation  *ErrValidation
		creds       *ErrInvalidCredentials
		input       *pipeline.InputError
		timeout     *pipeline.TimeoutError
	)
	switch {
	case errors.As(err, &invalidJSON), errors.As(err, &validation), errors.As(err, &input):
		return http.StatusBadRequest
	case errors.As(err, &creds):
		return http.StatusUnauthorized
	case errors.Is(err, pipeline.ErrNoTitles):
		return http.StatusNotFound
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the envelope code for an error.
func ErrorCode(err error) string {
	var (
		invalidJSON *ErrInvalidJSON
		validation  *ErrValidation
		creds       *ErrInvalidCredentials
		input       *pipeline.InputError
		timeout     *pipeline.TimeoutError
	)
	switch {
	case errors.As(err, &invalidJSON):
		return CodeInvalidJSON
	case errors.As(err, &validation), errors.As(err, &input):
		return CodeValidation
	case errors.As(err, &creds):
		return CodeUnauthorized
	case errors.Is(err, pipeline.ErrNoTitles):
		return CodeNoResults
	case errors.As(err, &timeout):
		return CodeTimeout
	default:
		return CodeInternal
	}
}

// ErrorMessage returns the user-facing message for an error. Internal
// failures never leak their cause.
func ErrorMessage(err error) string {
	var (
		validation *ErrValidation
		input      *pipeline.InputError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &input):
		if input.Field == "gender" {
			return msgInvalidGender
		}
		return msgKeywordRequired
	}

	switch ErrorCode(err) {
	case CodeInvalidJSON:
		return msgInvalidJSON
	case CodeUnauthorized:
		return msgInvalidPassword
	case CodeNoResults:
		return msgNoResults
	case CodeTimeout:
		return msgTimeout
	default:
		return msgInternal
	}
}
