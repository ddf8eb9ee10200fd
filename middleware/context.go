package middleware

import (
	"context"

	"github.com/orderdesk/session-gateway/token"
)

// Context key type to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"

	// BearerTokenKey is the context key for the raw bearer token string
	BearerTokenKey contextKey = "bearer_token"
)

// GetPrincipalFromContext retrieves the authenticated principal from
// context. Nil means the request is anonymous.
func GetPrincipalFromContext(ctx context.Context) *token.Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if principal, ok := val.(*token.Principal); ok {
			return principal
		}
	}
	return nil
}

// WithPrincipal adds a principal to the context
func WithPrincipal(ctx context.Context, principal *token.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// GetBearerTokenFromContext retrieves the raw bearer token from context
func GetBearerTokenFromContext(ctx context.Context) string {
	if val := ctx.Value(BearerTokenKey); val != nil {
		if tokenString, ok := val.(string); ok {
			return tokenString
		}
	}
	return ""
}

// WithBearerToken adds the raw bearer token to the context
func WithBearerToken(ctx context.Context, tokenString string) context.Context {
	return context.WithValue(ctx, BearerTokenKey, tokenString)
}
