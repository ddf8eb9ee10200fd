package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/models"
	"github.com/orderdesk/session-gateway/policy"
	"github.com/orderdesk/session-gateway/token"
)

// MockTokenVerifier is a mock implementation of TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(tokenString string) (*token.Principal, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Principal), args.Error(1)
}

func newTestMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return NewAuthMiddleware(verifier, policy.NewRegistry(), zap.NewNop())
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid bearer token puts the principal in context", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		m := newTestMiddleware(verifier)

		principal := &token.Principal{
			Subject: "user-123",
			Email:   "alice@example.com",
			Role:    models.RoleAdmin,
			TokenID: "jti-1",
		}
		verifier.On("Verify", "valid-token").Return(principal, nil)

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := GetPrincipalFromContext(r.Context())
			assert.NotNil(t, got)
			assert.Equal(t, "user-123", got.Subject)
			assert.Equal(t, "valid-token", GetBearerTokenFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		verifier.AssertExpectations(t)
	})

	t.Run("missing token passes through as anonymous", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		m := newTestMiddleware(verifier)

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, GetPrincipalFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		verifier.AssertNotCalled(t, "Verify")
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		m := newTestMiddleware(verifier)

		verifier.On("Verify", "bad-token").Return(nil, token.ErrInvalidToken)

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed authorization header is treated as anonymous", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		m := newTestMiddleware(verifier)

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, GetPrincipalFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		verifier.AssertNotCalled(t, "Verify")
	})

	t.Run("bearer scheme is case insensitive", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		m := newTestMiddleware(verifier)

		verifier.On("Verify", "valid-token").Return(&token.Principal{Subject: "user-123"}, nil)

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		verifier.AssertExpectations(t)
	})
}

func TestRequirePolicy(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous request gets 401", func(t *testing.T) {
		m := newTestMiddleware(new(MockTokenVerifier))
		handler := m.RequirePolicy(policy.AdminOnly)(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("satisfying role gets through", func(t *testing.T) {
		m := newTestMiddleware(new(MockTokenVerifier))
		handler := m.RequirePolicy(policy.AdminOrManager)(okHandler)

		principal := &token.Principal{Subject: "user-1", Role: models.RoleManager}
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req = req.WithContext(WithPrincipal(req.Context(), principal))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-satisfying role gets 403", func(t *testing.T) {
		m := newTestMiddleware(new(MockTokenVerifier))
		handler := m.RequirePolicy(policy.AdminOrManager)(okHandler)

		principal := &token.Principal{Subject: "user-1", Role: models.RoleOperator}
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req = req.WithContext(WithPrincipal(req.Context(), principal))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("principal without a role gets 403 on every policy", func(t *testing.T) {
		m := newTestMiddleware(new(MockTokenVerifier))
		handler := m.RequirePolicy(policy.AuthenticatedUser)(okHandler)

		principal := &token.Principal{Subject: "user-1"}
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req = req.WithContext(WithPrincipal(req.Context(), principal))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown policy name panics at wiring time", func(t *testing.T) {
		m := newTestMiddleware(new(MockTokenVerifier))
		assert.Panics(t, func() {
			m.RequirePolicy("NoSuchPolicy")
		})
	})
}
