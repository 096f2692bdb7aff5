package server

import (
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/export"
	"github.com/jonathan/salon-copy/internal/types"
)

// handleExportCSV renders posted templates as a BOM-prefixed CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req types.ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, toValidationError(err))
		return
	}

	data, err := export.CSV(req.Templates)
	if err != nil {
		s.logger.Error("failed to render CSV", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, "CSVの生成に失敗しました。")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename(req.Keyword),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("failed to write CSV response", zap.Error(err))
	}
}
