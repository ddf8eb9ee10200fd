package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/repositories"
	"github.com/orderdesk/session-gateway/token"
	"github.com/orderdesk/session-gateway/utils"
)

// Failure messages surfaced to clients. Credential failures share one
// text for "unknown email" and "wrong password" so the endpoint cannot
// be used to enumerate accounts.
const (
	MsgCredentialsRequired = "email and password are required"
	MsgInvalidCredentials  = "invalid email or password"
	MsgTokenRequired       = "token is required"
	MsgInvalidToken        = "invalid or expired token"
	MsgLogoutOK            = "logout successful"
)

// LoginRequest carries the credentials presented at login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the outcome of a session operation. Failures carry a
// user-facing message only; nothing about which check failed leaks out.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
}

// TokenCodec is the token interface the session service consumes
type TokenCodec interface {
	Issue(identity token.Identity) (string, error)
	Verify(tokenString string) (*token.Principal, error)
	Invalidate(tokenString string)
}

// SessionService orchestrates login, logout and identity lookup. It is
// the only component that mints tokens or mutates the revocation store.
type SessionService struct {
	users  repositories.UserRepository
	codec  TokenCodec
	logger *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(users repositories.UserRepository, codec TokenCodec, logger *zap.Logger) *SessionService {
	return &SessionService{
		users:  users,
		codec:  codec,
		logger: logger,
	}
}

// Login checks credentials against the user store and issues a session
// token on success. Context cancellation propagates to the lookup and
// returns without minting anything.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return &AuthResult{Success: false, Message: MsgCredentialsRequired}, nil
	}

	user, err := s.users.GetByCredentials(ctx, req.Email, utils.HashPassword(req.Password))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Same result for unknown email and wrong password.
			return &AuthResult{Success: false, Message: MsgInvalidCredentials}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	signed, err := s.codec.Issue(token.Identity{
		Subject: user.ID.String(),
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("sub", user.ID.String()),
		zap.String("role", string(user.Role)))
	return &AuthResult{Success: true, Token: signed}, nil
}

// Logout revokes a token unconditionally. The token is not verified
// first; revoking a malformed or never-issued string is harmless and
// idempotent.
func (s *SessionService) Logout(tokenString string) *AuthResult {
	if tokenString == "" {
		return &AuthResult{Success: false, Message: MsgTokenRequired}
	}

	s.codec.Invalidate(tokenString)
	return &AuthResult{Success: true, Message: MsgLogoutOK}
}

// WhoAmI verifies a token and projects the caller's public identity.
// Every verification failure maps to one generic result.
func (s *SessionService) WhoAmI(tokenString string) *AuthResult {
	principal, err := s.codec.Verify(tokenString)
	if err != nil {
		return &AuthResult{Success: false, Message: MsgInvalidToken}
	}

	return &AuthResult{
		Success: true,
		Email:   principal.Email,
		Name:    principal.Name,
		Role:    string(principal.Role),
	}
}
