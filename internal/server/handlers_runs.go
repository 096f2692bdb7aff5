package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/db"
	"github.com/jonathan/salon-copy/internal/pipeline"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// handleListSteps returns the pipeline step definitions.
func (s *Server) handleListSteps(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"steps": pipeline.Steps(),
	})
}

// handleListRuns lists recent generation runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.runHistoryDisabled(w)
		return
	}

	limit, err := queryLimit(r, defaultRunsLimit, maxRunsLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, "実行履歴の取得に失敗しました。")
		return
	}
	if runs == nil {
		runs = []db.GenerationRun{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one generation run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.runHistoryDisabled(w)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "無効な実行IDです。"})
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, db.ErrRunNotFound) {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "指定された実行履歴が見つかりません。")
		return
	}
	if err != nil {
		s.logger.Error("failed to get run", zap.String("run_id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, "実行履歴の取得に失敗しました。")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

func (s *Server) runHistoryDisabled(w http.ResponseWriter) {
	s.errorResponse(w, http.StatusServiceUnavailable, CodeUnavailable, "実行履歴は無効です (DATABASE_URL が未設定です)。")
}
