package token

import "time"

// RevocationStore is the shared set of revoked token keys consulted on
// every decode. Implementations own their synchronization: Add and
// Contains are total and safe under arbitrary concurrent callers, and a
// completed Add is visible to every subsequent Contains for that key.
//
// Keys are token IDs (jti) for tokens that parse, or the full opaque
// string for input that does not. expiresAt is when the underlying token
// would expire on its own; implementations may drop entries past it.
type RevocationStore interface {
	Add(key string, expiresAt time.Time)
	Contains(key string) bool
}
