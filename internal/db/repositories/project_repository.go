// project_repository.go handles project persistence. Every query except the
// public listing is owner-scoped: the owner ID is part of the WHERE clause,
// so another user's rows are indistinguishable from rows that do not exist.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

const projectColumns = `id, owner_id, title, slug, description, category, tech_stack, repo_url, live_url, image_url, is_published, display_order, created_at, updated_at`

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(scan func(dest ...interface{}) error) (*models.Project, error) {
	p := &models.Project{}
	err := scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Category,
		&p.TechStack,
		&p.RepoURL,
		&p.LiveURL,
		&p.ImageURL,
		&p.IsPublished,
		&p.DisplayOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	query := `
		INSERT INTO projects (id, owner_id, title, slug, description, category, tech_stack, repo_url, live_url, image_url, is_published, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Slug,
		p.Description,
		p.Category,
		p.TechStack,
		p.RepoURL,
		p.LiveURL,
		p.ImageURL,
		p.IsPublished,
		p.DisplayOrder,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return err
}

// GetByID retrieves one of the owner's projects by ID. Returns nil when the
// row does not exist or belongs to someone else.
func (r *ProjectRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND owner_id = $2`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPublishedBySlug retrieves a published project by slug for the public site.
func (r *ProjectRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1 AND is_published = TRUE`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, slug).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Search returns a page of the owner's projects plus the total match count.
// query is a case-insensitive substring match over title, description and
// tech stack; category narrows to an exact category when non-empty.
func (r *ProjectRepository) Search(ctx context.Context, ownerID, query, category string, limit, offset int) ([]*models.Project, int, error) {
	whereClause := "WHERE owner_id = $1"
	args := []interface{}{ownerID}
	argCount := 1

	if query != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d OR tech_stack ILIKE $%d)", argCount, argCount, argCount)
		args = append(args, "%"+query+"%")
	}

	if category != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND category = $%d", argCount)
		args = append(args, category)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM projects %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM projects
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, projectColumns, whereClause, argCount+1, argCount+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}

	return projects, total, rows.Err()
}

// ListPublished returns published projects for the public site, ordered by
// display order then recency. category narrows the listing when non-empty.
func (r *ProjectRepository) ListPublished(ctx context.Context, category string) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE is_published = TRUE`
	var args []interface{}

	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY display_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// CountPublished returns how many published projects exist site-wide.
func (r *ProjectRepository) CountPublished(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE is_published = TRUE`).Scan(&n)
	return n, err
}

// SlugExists reports whether the owner already has a project with this slug.
func (r *ProjectRepository) SlugExists(ctx context.Context, ownerID, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM projects WHERE owner_id = $1 AND slug = $2)`
	if err := r.db.QueryRowContext(ctx, query, ownerID, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update replaces the mutable fields of one of the owner's projects
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET title = $3, slug = $4, description = $5, category = $6, tech_stack = $7,
		    repo_url = $8, live_url = $9, image_url = $10, is_published = $11,
		    display_order = $12, updated_at = $13
		WHERE id = $1 AND owner_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Slug,
		p.Description,
		p.Category,
		p.TechStack,
		p.RepoURL,
		p.LiveURL,
		p.ImageURL,
		p.IsPublished,
		p.DisplayOrder,
		p.UpdatedAt,
	)

	return err
}

// Delete removes one of the owner's projects. Returns false when nothing was
// deleted (unknown ID or someone else's row).
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	query := `DELETE FROM projects WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
