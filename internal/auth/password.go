// password.go implements the credential digest scheme: unsalted SHA-256,
// stored as 64 lowercase hex characters. This is the format every existing
// account in the production database uses, so it is kept as-is — swapping in
// a salted KDF requires a credential migration, tracked separately.
// Comparison is digest-to-digest and constant-time.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the hex SHA-256 digest of the raw password.
func HashPassword(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether the raw password matches the stored digest.
func VerifyPassword(digest, raw string) bool {
	computed := HashPassword(raw)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(computed)) == 1
}
