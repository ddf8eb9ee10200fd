package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/policy"
	"github.com/orderdesk/session-gateway/token"
	"github.com/orderdesk/session-gateway/utils"
)

// TokenVerifier defines the interface for verifying session tokens
type TokenVerifier interface {
	Verify(tokenString string) (*token.Principal, error)
}

// AuthMiddleware authenticates bearer tokens and gates routes on policies
type AuthMiddleware struct {
	verifier TokenVerifier
	policies *policy.Registry
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, policies *policy.Registry, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		policies: policies,
		logger:   logger,
	}
}

// Authenticate resolves the bearer token, if any, into a principal.
// A missing token means the request is anonymous and proceeds; endpoints
// that need an identity gate on it with RequirePolicy. A token that is
// present but invalid is rejected here with one generic message.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithBearerToken(r.Context(), tokenString)

		principal, err := m.verifier.Verify(tokenString)
		if err != nil {
			m.logger.Warn("token verification failed")
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx = WithPrincipal(ctx, principal)

		m.logger.Debug("authentication successful",
			zap.String("sub", principal.Subject),
			zap.String("jti", principal.TokenID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePolicy gates a route on a named policy. The policy is resolved
// once at wiring time, so an unknown name fails the process at startup.
// Anonymous requests get 401; an authenticated principal whose role does
// not satisfy the policy gets 403. A principal without a role claim never
// satisfies any policy.
func (m *AuthMiddleware) RequirePolicy(name string) func(http.Handler) http.Handler {
	p := m.policies.MustGet(name)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipalFromContext(r.Context())
			if principal == nil {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if !p.Satisfies(principal) {
				m.logger.Warn("insufficient permissions",
					zap.String("policy", p.Name),
					zap.String("sub", principal.Subject),
					zap.String("role", string(principal.Role)))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
