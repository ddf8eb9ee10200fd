package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/middleware"
	"github.com/orderdesk/session-gateway/services"
	"github.com/orderdesk/session-gateway/utils"
)

// SessionService defines the session operations the auth handler consumes
type SessionService interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.AuthResult, error)
	Logout(tokenString string) *services.AuthResult
	WhoAmI(tokenString string) *services.AuthResult
}

// AuthHandler handles login, logout and identity HTTP requests
type AuthHandler struct {
	sessions SessionService
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions SessionService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// HandleLogin handles POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse login request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")
		return
	}

	if !result.Success {
		if result.Message == services.MsgCredentialsRequired {
			_ = utils.WriteBadRequest(w, result.Message, nil)
			return
		}
		_ = utils.WriteUnauthorized(w, result.Message)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleLogout handles POST /api/v1/auth/logout.
// The token comes from the Authorization header; revocation succeeds
// even when the token is malformed or already expired.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	tokenString := middleware.GetBearerTokenFromContext(r.Context())

	result := h.sessions.Logout(tokenString)
	if !result.Success {
		_ = utils.WriteBadRequest(w, result.Message, nil)
		return
	}

	h.logger.Info("session revoked")
	_ = utils.WriteOK(w, result)
}

// HandleMe handles GET /api/v1/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	tokenString := middleware.GetBearerTokenFromContext(r.Context())
	if tokenString == "" {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	result := h.sessions.WhoAmI(tokenString)
	if !result.Success {
		_ = utils.WriteUnauthorized(w, result.Message)
		return
	}

	_ = utils.WriteOK(w, result)
}
