package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/pipeline"
	"github.com/jonathan/salon-copy/internal/server/middleware"
	"github.com/jonathan/salon-copy/internal/types"
)

// handleGenerate runs one generation and returns the templates.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readGenerateRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.pipeline.Run(r.Context(), req, nil)
	if err != nil {
		s.logRunError(r, err)
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, generateResponse(result))
}

// handleGenerateStream runs one generation and streams progress as
// server-sent events, ending with a complete or error event.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.readGenerateRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, msgInternal)
		return
	}

	result, err := s.pipeline.Run(r.Context(), req, func(event pipeline.ProgressEvent) {
		if werr := sse.WriteProgress(event); werr != nil {
			s.logger.Debug("failed to write progress event", zap.Error(werr))
		}
	})
	if err != nil {
		s.logRunError(r, err)
		sse.WriteError(types.ErrorResponse{
			Success: false,
			Error:   types.ErrorBody{Message: ErrorMessage(err), Code: ErrorCode(err)},
			Status:  HTTPStatus(err),
		})
		return
	}

	sse.WriteComplete(generateResponse(result))
}

// readGenerateRequest decodes, normalizes and validates the body.
func (s *Server) readGenerateRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	var body types.GenerateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.logger.Warn("invalid generate request body",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		return pipeline.Request{}, err
	}

	body.Normalize()
	if err := body.Validate(); err != nil {
		return pipeline.Request{}, toValidationError(err)
	}

	gender, err := types.ParseGender(body.Gender)
	if err != nil {
		return pipeline.Request{}, &ErrValidation{Field: "gender", Message: msgInvalidGender}
	}

	s.logger.Info("generate request",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("keyword", body.Keyword),
		zap.String("gender", string(gender)),
		zap.String("season", body.Season),
		zap.String("model", body.Model),
	)

	return pipeline.Request{
		Keyword: body.Keyword,
		Gender:  gender,
		Season:  body.Season,
		Model:   body.Model,
	}, nil
}

func (s *Server) logRunError(r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("code", ErrorCode(err)),
		zap.Error(err),
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		s.logger.Error("generation failed", fields...)
		return
	}
	s.logger.Info("generation rejected", fields...)
}

func generateResponse(result *pipeline.Result) types.GenerateResponse {
	items := result.Items
	if items == nil {
		items = []types.GeneratedItem{}
	}
	c := result.Classification
	return types.GenerateResponse{
		Success:             true,
		Templates:           items,
		Status:              http.StatusOK,
		IsFeatured:          c.IsFeatured,
		KeywordType:         c.KeywordType,
		ProcessingMode:      c.ProcessingMode,
		OriginalKeyword:     c.OriginalKeyword,
		FeaturedKeywordInfo: c.FeaturedInfo(),
		RunID:               result.RunID.String(),
	}
}

// toValidationError converts the first validator failure into a
// user-facing ErrValidation.
func toValidationError(err error) *ErrValidation {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Field: "request", Message: "リクエストデータが不正です。"}
	}

	fe := verrs[0]
	switch {
	case fe.Field() == "Keyword" && fe.Tag() == "required":
		return &ErrValidation{Field: "keyword", Message: msgKeywordRequired}
	case fe.Field() == "Gender":
		return &ErrValidation{Field: "gender", Message: msgInvalidGender}
	case fe.Tag() == "max":
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("%s は %s 文字以内で指定してください。", fe.Field(), fe.Param())}
	case fe.Tag() == "required":
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("%s を指定してください。", fe.Field())}
	default:
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("%s が不正です (%s)。", fe.Field(), fe.Tag())}
	}
}
