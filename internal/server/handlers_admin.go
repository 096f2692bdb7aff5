package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/server/middleware"
	"github.com/jonathan/salon-copy/internal/types"
)

// handleAdminToken exchanges the admin password for a bearer token.
func (s *Server) handleAdminToken(w http.ResponseWriter, r *http.Request) {
	var req types.AdminTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, toValidationError(err))
		return
	}

	if !s.cfg.Admin.VerifyPassword(req.Password) {
		s.logger.Warn("admin token rejected",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("client", s.extractClientID(r)))
		s.writeError(w, &ErrInvalidCredentials{})
		return
	}

	token, err := s.jwtService.GenerateToken()
	if err != nil {
		s.logger.Error("failed to generate admin token", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, "トークンの生成に失敗しました。")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AdminTokenResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtService.TTL().Seconds()),
	})
}
