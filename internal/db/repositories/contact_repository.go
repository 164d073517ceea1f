// contact_repository.go persists messages from the public contact form and
// backs the admin inbox (read/unread filtering, search, mark read/unread).
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portfoly/portfoly/internal/db/models"
)

const contactColumns = `id, name, email, subject, message, is_read, created_at`

// ContactRepository handles contact message database operations
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContact(scan func(dest ...interface{}) error) (*models.Contact, error) {
	c := &models.Contact{}
	err := scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Subject,
		&c.Message,
		&c.IsRead,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new contact message (always unread)
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	c.ID = uuid.New().String()
	c.IsRead = false
	c.CreatedAt = time.Now()

	query := `
		INSERT INTO contacts (id, name, email, subject, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		c.Subject,
		c.Message,
		c.IsRead,
		c.CreatedAt,
	)

	return err
}

// GetByID retrieves a contact message by ID, nil when absent
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Search returns a page of contact messages plus the total match count.
// status is "read", "unread" or "" (all); query is a case-insensitive
// substring match over name, email and subject.
func (r *ContactRepository) Search(ctx context.Context, status, query string, limit, offset int) ([]*models.Contact, int, error) {
	whereClause := "WHERE 1=1"
	var args []interface{}
	argCount := 0

	switch status {
	case "read":
		whereClause += " AND is_read = TRUE"
	case "unread":
		whereClause += " AND is_read = FALSE"
	}

	if query != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR subject ILIKE $%d)", argCount, argCount, argCount)
		args = append(args, "%"+query+"%")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM contacts %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, contactColumns, whereClause, argCount+1, argCount+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}

	return contacts, total, rows.Err()
}

// ListRecent returns the n most recent messages for the dashboard.
func (r *ContactRepository) ListRecent(ctx context.Context, n int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

// SetRead flips a message's read flag. Returns false when the ID is unknown.
func (r *ContactRepository) SetRead(ctx context.Context, id string, read bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET is_read = $2 WHERE id = $1`, id, read)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a contact message, reporting whether a row went away.
func (r *ContactRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
