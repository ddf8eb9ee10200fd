package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/models"
)

// ErrInvalidToken is returned for every verification failure: malformed
// input, bad signature, wrong issuer or audience, expired, revoked. The
// sub-check that failed is deliberately not exposed to callers.
var ErrInvalidToken = errors.New("invalid token")

// Config holds the codec's signing parameters, fixed at startup
type Config struct {
	Secret   string
	Lifetime time.Duration
	Issuer   string
	Audience string
}

// Codec issues and verifies signed session tokens. Issue and Verify are
// stateless aside from the revocation store access and are safe to call
// from any number of request goroutines.
type Codec struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	audience string
	store    RevocationStore
	logger   *zap.Logger

	// now is replaceable in tests to drive the token lifetime clock
	now func() time.Time
}

// NewCodec creates a Codec. A missing signing secret is a configuration
// error reported here, at startup, never per request.
func NewCodec(cfg Config, store RevocationStore, logger *zap.Logger) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec: signing secret is required")
	}
	if cfg.Lifetime <= 0 {
		return nil, errors.New("token codec: lifetime must be positive")
	}
	return &Codec{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Issue signs a time-bounded token for a verified identity. The token id
// (jti) is a fresh random nonce; expiry is issued-at plus the configured
// lifetime.
func (c *Codec) Issue(identity Identity) (string, error) {
	issuedAt := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.lifetime)),
		},
		Name:  identity.Name,
		Email: identity.Email,
		Role:  string(identity.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}

	c.logger.Debug("token issued",
		zap.String("sub", identity.Subject),
		zap.String("jti", claims.ID))
	return signed, nil
}

// Verify decodes a token string into a canonical Principal. The revocation
// store is consulted before any cryptographic work; a revoked token is
// rejected without verifying its signature. Signature, issuer, audience
// and expiry are then checked with zero clock-skew tolerance.
func (c *Codec) Verify(tokenString string) (*Principal, error) {
	if c.isRevoked(tokenString) {
		return nil, ErrInvalidToken
	}

	raw := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, raw, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// One observable outcome for all failure modes; detail stays in
		// the debug log, without the token itself.
		c.logger.Debug("token verification failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	return principalFromClaims(NormalizeClaims(raw)), nil
}

// Invalidate marks a token revoked. It is idempotent and total: revoking
// an already-revoked or never-issued token succeeds silently, and the
// token is never verified first.
func (c *Codec) Invalidate(tokenString string) {
	if jti, expiresAt, ok := extractUnverified(tokenString); ok {
		if expiresAt.IsZero() {
			expiresAt = c.now().Add(c.lifetime)
		}
		c.store.Add(jti, expiresAt)
		c.logger.Debug("token invalidated", zap.String("jti", jti))
		return
	}
	// Unparseable input is revoked under its full opaque string with a
	// conservative expiry. Harmless for never-issued tokens.
	c.store.Add(tokenString, c.now().Add(c.lifetime))
	c.logger.Debug("unparseable token invalidated")
}

func (c *Codec) keyFunc(*jwt.Token) (interface{}, error) {
	return c.secret, nil
}

// isRevoked checks the store under the token's jti and, for input that
// does not parse, under the full opaque string. No signature verification
// happens here; a forged jti can only deny itself.
func (c *Codec) isRevoked(tokenString string) bool {
	if jti, _, ok := extractUnverified(tokenString); ok {
		return c.store.Contains(jti)
	}
	return c.store.Contains(tokenString)
}

// extractUnverified pulls jti and expiry out of a token without checking
// its signature. ok is false when the string is not a parseable JWT or
// carries no jti.
func extractUnverified(tokenString string) (jti string, expiresAt time.Time, ok bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", time.Time{}, false
	}

	id, _ := claims[ClaimTokenID].(string)
	if id == "" {
		return "", time.Time{}, false
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return id, expiresAt, true
}

// principalFromClaims projects a canonical claim map into a Principal.
// The role stays empty when absent under every alias: downstream
// authorization must deny by absence, never assume a default.
func principalFromClaims(claims map[string]interface{}) *Principal {
	p := &Principal{
		Subject: stringClaim(claims, ClaimSubject),
		Name:    stringClaim(claims, ClaimName),
		Email:   stringClaim(claims, ClaimEmail),
		TokenID: stringClaim(claims, ClaimTokenID),
	}
	if role := stringClaim(claims, ClaimRole); role != "" {
		p.Role = models.ParseRole(role)
	}
	if iat, ok := numericClaim(claims, "iat"); ok {
		p.IssuedAt = time.Unix(iat, 0)
	}
	if exp, ok := numericClaim(claims, "exp"); ok {
		p.ExpiresAt = time.Unix(exp, 0)
	}
	return p
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

func numericClaim(claims map[string]interface{}, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
