package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

// UserDetailsRepository handles the optional 1:1 profile detail rows.
type UserDetailsRepository struct {
	db *sql.DB
}

// NewUserDetailsRepository creates a new UserDetailsRepository
func NewUserDetailsRepository(db *sql.DB) *UserDetailsRepository {
	return &UserDetailsRepository{db: db}
}

// GetByUserID retrieves the detail row for a user, or nil when none exists.
func (r *UserDetailsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserDetails, error) {
	query := `
		SELECT id, user_id, phone, linkedin_url, github_url, created_at, updated_at
		FROM user_details
		WHERE user_id = $1
	`

	d := &models.UserDetails{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&d.ID,
		&d.UserID,
		&d.Phone,
		&d.LinkedInURL,
		&d.GitHubURL,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return d, nil
}

// Create inserts a detail row for a user
func (r *UserDetailsRepository) Create(ctx context.Context, d *models.UserDetails) error {
	d.ID = uuid.New().String()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()

	query := `
		INSERT INTO user_details (id, user_id, phone, linkedin_url, github_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.UserID,
		d.Phone,
		d.LinkedInURL,
		d.GitHubURL,
		d.CreatedAt,
		d.UpdatedAt,
	)

	return err
}

// Update replaces the mutable detail fields
func (r *UserDetailsRepository) Update(ctx context.Context, d *models.UserDetails) error {
	d.UpdatedAt = time.Now()

	query := `
		UPDATE user_details
		SET phone = $2, linkedin_url = $3, github_url = $4, updated_at = $5
		WHERE user_id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		d.UserID,
		d.Phone,
		d.LinkedInURL,
		d.GitHubURL,
		d.UpdatedAt,
	)

	return err
}
