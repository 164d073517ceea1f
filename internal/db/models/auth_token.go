// auth_token.go defines the AuthToken model backing admin panel sessions.
// Tokens are opaque 256-bit random values stored verbatim and matched exactly
// on lookup; there is no signature or claims payload to verify.
package models

import "time"

// AuthToken is a server-side session record. A token is live while IsActive
// is true and ExpiresAt is in the future. Expiry is lazy: an expired token is
// flipped inactive the first time it is presented for validation. RememberMe
// records which lifetime the user chose at login.
type AuthToken struct {
	ID         string
	UserID     string
	Token      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	IsActive   bool
	RememberMe bool
}

// Expired reports whether the token's lifetime has passed at the given instant.
func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
