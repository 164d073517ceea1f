package auth

import "errors"

// Sentinel errors returned by the session service. Handlers map these onto
// redirects or JSON error responses; none of them carry detail that could
// reveal whether an account exists.
var (
	// ErrInvalidCredentials covers every login failure: unknown username,
	// wrong password, or a deactivated account. Callers must present the
	// same message for all three.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid means the presented token is unknown, revoked, or
	// belongs to a deactivated account.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired means the token was live but its lifetime has passed.
	// Validation deactivates the token before returning this.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenUsed means a reset token was already consumed.
	ErrTokenUsed = errors.New("token already used")
)
