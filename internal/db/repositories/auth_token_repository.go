// auth_token_repository.go persists admin session tokens. Lookup is an exact
// string match on the token value — tokens are 256-bit random values stored
// verbatim, so the unique index on auth_tokens.token is the whole scheme.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

// AuthTokenRepository handles session token database operations
type AuthTokenRepository struct {
	db *sql.DB
}

// NewAuthTokenRepository creates a new AuthTokenRepository
func NewAuthTokenRepository(db *sql.DB) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

// Create inserts a new session token
func (r *AuthTokenRepository) Create(ctx context.Context, t *models.AuthToken) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now()

	query := `
		INSERT INTO auth_tokens (id, user_id, token, created_at, expires_at, is_active, remember_me)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Token,
		t.CreatedAt,
		t.ExpiresAt,
		t.IsActive,
		t.RememberMe,
	)

	return err
}

// GetActiveByToken retrieves an active token by its value. Returns nil when
// the token is unknown or already deactivated; the caller decides whether an
// active-but-expired token should be flipped inactive.
func (r *AuthTokenRepository) GetActiveByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	query := `
		SELECT id, user_id, token, created_at, expires_at, is_active, remember_me
		FROM auth_tokens
		WHERE token = $1 AND is_active = TRUE
	`

	t := &models.AuthToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.IsActive,
		&t.RememberMe,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return t, nil
}

// Deactivate flips a token inactive by value. Deactivating an unknown or
// already-inactive token is not an error, which makes logout idempotent.
func (r *AuthTokenRepository) Deactivate(ctx context.Context, token string) error {
	query := `UPDATE auth_tokens SET is_active = FALSE WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

// DeactivateAllForUser revokes every active session the user has. Used when
// a password changes so stolen or forgotten sessions die with the old password.
func (r *AuthTokenRepository) DeactivateAllForUser(ctx context.Context, userID string) error {
	query := `UPDATE auth_tokens SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// DeactivateExpired flips every active token whose expiry has passed and
// returns how many rows changed. Validation already expires tokens lazily;
// this exists so the background sweeper can keep the table tidy.
func (r *AuthTokenRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	query := `UPDATE auth_tokens SET is_active = FALSE WHERE is_active = TRUE AND expires_at < NOW()`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActive returns the number of live (active, unexpired) sessions.
func (r *AuthTokenRepository) CountActive(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM auth_tokens WHERE is_active = TRUE AND expires_at >= NOW()`
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
