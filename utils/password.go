package utils

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashPassword returns the base64-encoded SHA-256 digest of a password.
// Stored credentials and login input are both hashed with this function,
// so the plaintext never reaches the repository layer.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}
