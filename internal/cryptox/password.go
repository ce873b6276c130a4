// Package cryptox holds the password digest helpers shared by registration
// and authentication.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the hex-encoded SHA-256 digest of the plaintext
// password. The digest is deterministic: authentication recomputes it and
// compares against the stored value.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether the plaintext password matches the stored
// digest. The comparison is constant-time.
func VerifyPassword(password string, hashed string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hashed)) == 1
}
