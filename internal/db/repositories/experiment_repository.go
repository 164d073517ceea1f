package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

const experimentColumns = `id, owner_id, title, description, tech_stack, repo_url, is_published, created_at, updated_at`

// ExperimentRepository handles experiment database operations
type ExperimentRepository struct {
	db *sql.DB
}

// NewExperimentRepository creates a new ExperimentRepository
func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

func scanExperiment(scan func(dest ...interface{}) error) (*models.Experiment, error) {
	e := &models.Experiment{}
	err := scan(
		&e.ID,
		&e.OwnerID,
		&e.Title,
		&e.Description,
		&e.TechStack,
		&e.RepoURL,
		&e.IsPublished,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new experiment
func (r *ExperimentRepository) Create(ctx context.Context, e *models.Experiment) error {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()

	query := `
		INSERT INTO experiments (id, owner_id, title, description, tech_stack, repo_url, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.OwnerID,
		e.Title,
		e.Description,
		e.TechStack,
		e.RepoURL,
		e.IsPublished,
		e.CreatedAt,
		e.UpdatedAt,
	)

	return err
}

// GetByID retrieves one of the owner's experiments by ID, nil when absent or
// owned by someone else.
func (r *ExperimentRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Experiment, error) {
	query := `SELECT ` + experimentColumns + ` FROM experiments WHERE id = $1 AND owner_id = $2`

	e, err := scanExperiment(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Search returns a page of the owner's experiments plus the total match count.
func (r *ExperimentRepository) Search(ctx context.Context, ownerID, query string, limit, offset int) ([]*models.Experiment, int, error) {
	whereClause := "WHERE owner_id = $1"
	args := []interface{}{ownerID}
	argCount := 1

	if query != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+query+"%")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM experiments %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count experiments: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM experiments
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, experimentColumns, whereClause, argCount+1, argCount+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*models.Experiment
	for rows.Next() {
		e, err := scanExperiment(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		experiments = append(experiments, e)
	}

	return experiments, total, rows.Err()
}

// CountPublished returns how many published experiments exist site-wide.
func (r *ExperimentRepository) CountPublished(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiments WHERE is_published = TRUE`).Scan(&n)
	return n, err
}

// Update replaces the mutable fields of one of the owner's experiments
func (r *ExperimentRepository) Update(ctx context.Context, e *models.Experiment) error {
	e.UpdatedAt = time.Now()

	query := `
		UPDATE experiments
		SET title = $3, description = $4, tech_stack = $5, repo_url = $6, is_published = $7, updated_at = $8
		WHERE id = $1 AND owner_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.OwnerID,
		e.Title,
		e.Description,
		e.TechStack,
		e.RepoURL,
		e.IsPublished,
		e.UpdatedAt,
	)

	return err
}

// Delete removes one of the owner's experiments, reporting whether a row went away.
func (r *ExperimentRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM experiments WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
