// token.go generates the opaque token values used for both sessions and
// password resets: 32 bytes from crypto/rand, base64url-encoded without
// padding (43 characters). Tokens are stored verbatim and matched exactly —
// 256 bits of entropy makes guessing or collision a non-concern, and the
// unique index on the token column surfaces the impossible case as an error.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateToken returns a new opaque token value.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
