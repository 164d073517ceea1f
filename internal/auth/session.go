// Package auth implements admin panel authentication: opaque DB-stored
// session tokens, the legacy SHA-256 credential digest, and single-use
// password reset tokens. There are no signed tokens anywhere — a session is
// valid if and only if a matching active, unexpired row exists, so
// revocation is always immediate.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
)

// Token lifetimes. Sessions last half a day unless the user asked to be
// remembered; reset links die after an hour.
const (
	SessionTTL    = 12 * time.Hour
	RememberMeTTL = 30 * 24 * time.Hour
	ResetTTL      = time.Hour
)

// SessionService issues, validates and revokes session and reset tokens.
type SessionService struct {
	users  *repositories.UserRepository
	tokens *repositories.AuthTokenRepository
	resets *repositories.PasswordResetTokenRepository
}

// NewSessionService creates a new SessionService
func NewSessionService(
	users *repositories.UserRepository,
	tokens *repositories.AuthTokenRepository,
	resets *repositories.PasswordResetTokenRepository,
) *SessionService {
	return &SessionService{users: users, tokens: tokens, resets: resets}
}

// Login checks the credentials and, on success, issues a session token.
// The login identity is the account email. Every failure mode returns
// ErrInvalidCredentials so the response cannot be used to probe which
// addresses have an account or which accounts are deactivated.
func (s *SessionService) Login(ctx context.Context, email, password string, rememberMe bool) (*models.User, *models.AuthToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive || !VerifyPassword(user.PasswordDigest, password) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, user.ID, rememberMe)
	if err != nil {
		return nil, nil, err
	}

	// Last-login tracking is best-effort; a failed stamp never blocks a login.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.users.UpdateLastLogin(ctx, user.ID)
	}()

	return user, token, nil
}

// issueSession creates and stores a fresh active session token.
func (s *SessionService) issueSession(ctx context.Context, userID string, rememberMe bool) (*models.AuthToken, error) {
	value, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	ttl := SessionTTL
	if rememberMe {
		ttl = RememberMeTTL
	}

	token := &models.AuthToken{
		UserID:     userID,
		Token:      value,
		ExpiresAt:  time.Now().Add(ttl),
		IsActive:   true,
		RememberMe: rememberMe,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}

	return token, nil
}

// Validate resolves a presented token value to its user. An active token
// whose lifetime has passed is deactivated here (lazy expiry) and reported
// as expired; a token whose user has since been deactivated is revoked too.
func (s *SessionService) Validate(ctx context.Context, value string) (*models.User, error) {
	token, err := s.tokens.GetActiveByToken(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return nil, ErrTokenInvalid
	}

	if token.Expired(time.Now()) {
		if err := s.tokens.Deactivate(ctx, value); err != nil {
			return nil, fmt.Errorf("failed to expire token: %w", err)
		}
		return nil, ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.IsActive {
		_ = s.tokens.Deactivate(ctx, value)
		return nil, ErrTokenInvalid
	}

	return user, nil
}

// Logout revokes the presented token. Unknown and already-revoked tokens are
// fine — logging out twice, or with a stale cookie, always succeeds.
func (s *SessionService) Logout(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	return s.tokens.Deactivate(ctx, value)
}

// RevokeAll kills every active session the user has.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	return s.tokens.DeactivateAllForUser(ctx, userID)
}

// ChangePassword verifies the current password, stores the new digest, and
// revokes all sessions so every device has to log in with the new password.
func (s *SessionService) ChangePassword(ctx context.Context, user *models.User, current, newPassword string) error {
	if !VerifyPassword(user.PasswordDigest, current) {
		return ErrInvalidCredentials
	}

	if err := s.users.UpdatePassword(ctx, user.ID, HashPassword(newPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return s.RevokeAll(ctx, user.ID)
}

// RequestReset issues a single-use reset token for the account with this
// email. When no such account exists it returns (nil, "", nil): the caller
// must respond identically either way, so an absent account is not an error.
func (s *SessionService) RequestReset(ctx context.Context, email string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, "", nil
	}

	value, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: time.Now().Add(ResetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return user, value, nil
}

// CheckReset reports whether a reset token is still consumable.
func (s *SessionService) CheckReset(ctx context.Context, value string) error {
	_, err := s.getUsableReset(ctx, value)
	return err
}

func (s *SessionService) getUsableReset(ctx context.Context, value string) (*models.PasswordResetToken, error) {
	token, err := s.resets.GetByToken(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	if token == nil {
		return nil, ErrTokenInvalid
	}
	if token.Used {
		return nil, ErrTokenUsed
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return token, nil
}

// ConsumeReset spends a reset token: the password digest is replaced, the
// token is marked used, and every session of the account is revoked. The
// statements run in order without a wrapping transaction; each is atomic on
// its own, and a duplicate consume fails at the used flag.
func (s *SessionService) ConsumeReset(ctx context.Context, value, newPassword string) error {
	token, err := s.getUsableReset(ctx, value)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, token.UserID, HashPassword(newPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	return s.RevokeAll(ctx, token.UserID)
}
