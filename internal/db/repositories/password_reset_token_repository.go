package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

// PasswordResetTokenRepository handles password reset token database operations
type PasswordResetTokenRepository struct {
	db *sql.DB
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *sql.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// Create inserts a new reset token
func (r *PasswordResetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now()

	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Token,
		t.CreatedAt,
		t.ExpiresAt,
		t.Used,
	)

	return err
}

// GetByToken retrieves a reset token by value regardless of state. Returns
// nil when unknown; the caller distinguishes used from expired for error
// reporting.
func (r *PasswordResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token, created_at, expires_at, used
		FROM password_reset_tokens
		WHERE token = $1
	`

	t := &models.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.Used,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return t, nil
}

// MarkUsed permanently consumes a reset token
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
