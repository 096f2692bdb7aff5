package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/server/middleware"
	"github.com/jonathan/salon-copy/internal/types"
)

// FeaturedKeywordsResponse is the body of GET /api/featured-keywords.
type FeaturedKeywordsResponse struct {
	Success      bool                    `json:"success"`
	Keywords     []types.FeaturedKeyword `json:"keywords"`
	HealthStatus featured.HealthStatus   `json:"health_status"`
	Fallback     bool                    `json:"fallback,omitempty"`
	Message      string                  `json:"message,omitempty"`
}

// ReloadResponse is the body of POST /api/featured-keywords/reload.
type ReloadResponse struct {
	Success      bool                  `json:"success"`
	Reloaded     bool                  `json:"reloaded"`
	HealthStatus featured.HealthStatus `json:"health_status"`
	Message      string                `json:"message,omitempty"`
}

// handleFeaturedKeywords lists featured keywords, optionally for one gender.
func (s *Server) handleFeaturedKeywords(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("gender"))

	var entries []types.FeaturedKeyword
	if raw == "" {
		entries = s.registry.All()
	} else {
		gender, err := types.ParseGender(raw)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "gender", Message: msgInvalidGender})
			return
		}
		entries = s.registry.ByGender(gender)
	}

	keywords := make([]types.FeaturedKeyword, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.Keyword == "" || e.Gender == "" || e.Condition == "" {
			continue
		}
		keywords = append(keywords, e)
	}

	resp := FeaturedKeywordsResponse{
		Success:      true,
		Keywords:     keywords,
		HealthStatus: s.registry.Health(),
	}
	if !resp.HealthStatus.IsAvailable {
		resp.Fallback = true
		resp.Message = "特集キーワードは現在利用できません。通常のキーワードで生成できます。"
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleReloadFeatured re-reads the registry file. A failed reload keeps
// the previous entries.
func (s *Server) handleReloadFeatured(w http.ResponseWriter, r *http.Request) {
	ok := s.registry.Reload()
	s.metrics.RecordReload(ok)

	health := s.registry.Health()
	subject, _ := middleware.GetSubject(r)
	s.logger.Info("featured keywords reload requested",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("subject", subject),
		zap.Bool("reloaded", ok),
		zap.Int("keywords_count", health.KeywordsCount),
	)

	resp := ReloadResponse{
		Success:      ok,
		Reloaded:     ok,
		HealthStatus: health,
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusUnprocessableEntity
		resp.Message = "再読み込みに失敗しました。以前の特集キーワードを引き続き使用します。"
	}
	s.jsonResponse(w, status, resp)
}
