package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orderdesk/session-gateway/models"
)

// Identity is the verified identity a token is issued for.
// The codec trusts it: credential checks happen before issuance.
type Identity struct {
	Subject string
	Name    string
	Email   string
	Role    models.Role
}

// Claims represents the payload of an issued token
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Principal is the canonical decoded identity asserted by a verified token.
// It is a value type; callers never mutate a shared instance.
//
// Role is empty when the token carried no role claim under any known alias.
// A role-less principal satisfies no policy; authorization fails closed.
// A role claim with an unrecognized value decodes to the least-privileged
// role instead.
type Principal struct {
	Subject   string
	Name      string
	Email     string
	Role      models.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
