package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

const skillColumns = `id, owner_id, name, level, category, display_order, created_at, updated_at`

// SkillRepository handles skill database operations
type SkillRepository struct {
	db *sql.DB
}

// NewSkillRepository creates a new SkillRepository
func NewSkillRepository(db *sql.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

func scanSkill(scan func(dest ...interface{}) error) (*models.Skill, error) {
	s := &models.Skill{}
	err := scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Level,
		&s.Category,
		&s.DisplayOrder,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new skill
func (r *SkillRepository) Create(ctx context.Context, s *models.Skill) error {
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	query := `
		INSERT INTO skills (id, owner_id, name, level, category, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.OwnerID,
		s.Name,
		s.Level,
		s.Category,
		s.DisplayOrder,
		s.CreatedAt,
		s.UpdatedAt,
	)

	return err
}

// GetByID retrieves one of the owner's skills by ID, nil when absent or
// owned by someone else.
func (r *SkillRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills WHERE id = $1 AND owner_id = $2`

	s, err := scanSkill(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Search returns the owner's skills matching a name substring and an exact
// level when either is non-empty, grouped by category then display order.
func (r *SkillRepository) Search(ctx context.Context, ownerID, query, level string) ([]*models.Skill, error) {
	whereClause := "WHERE owner_id = $1"
	args := []interface{}{ownerID}
	argCount := 1

	if query != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND name ILIKE $%d", argCount)
		args = append(args, "%"+query+"%")
	}

	if level != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND level = $%d", argCount)
		args = append(args, level)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM skills
		%s
		ORDER BY category ASC, display_order ASC, name ASC
	`, skillColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search skills: %w", err)
	}
	defer rows.Close()

	var skills []*models.Skill
	for rows.Next() {
		s, err := scanSkill(rows.Scan)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}

	return skills, rows.Err()
}

// ListByOwner returns all of the owner's skills for the public about page,
// grouped by category then display order.
func (r *SkillRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Skill, error) {
	return r.Search(ctx, ownerID, "", "")
}

// Update replaces the mutable fields of one of the owner's skills
func (r *SkillRepository) Update(ctx context.Context, s *models.Skill) error {
	s.UpdatedAt = time.Now()

	query := `
		UPDATE skills
		SET name = $3, level = $4, category = $5, display_order = $6, updated_at = $7
		WHERE id = $1 AND owner_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.OwnerID,
		s.Name,
		s.Level,
		s.Category,
		s.DisplayOrder,
		s.UpdatedAt,
	)

	return err
}

// Delete removes one of the owner's skills, reporting whether a row went away.
func (r *SkillRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
