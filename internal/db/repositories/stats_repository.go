// stats_repository.go aggregates the dashboard counters in a single round
// trip. It is the one sqlx-based repository: the subselect row maps cleanly
// onto a tagged struct, which is exactly what sqlx.GetContext is for.
package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DashboardStats holds the counters shown at the top of the admin dashboard.
// Content counts are owner-scoped; contact counts are site-wide because the
// inbox is shared.
type DashboardStats struct {
	TotalProjects    int `db:"total_projects"`
	TotalExperiments int `db:"total_experiments"`
	TotalSkills      int `db:"total_skills"`
	TotalContacts    int `db:"total_contacts"`
	UnreadContacts   int `db:"unread_contacts"`
}

// StatsRepository computes aggregate counts for the admin dashboard
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard returns the dashboard counters for the given owner.
func (r *StatsRepository) Dashboard(ctx context.Context, ownerID string) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE owner_id = $1)            AS total_projects,
			(SELECT COUNT(*) FROM experiments WHERE owner_id = $1)         AS total_experiments,
			(SELECT COUNT(*) FROM skills WHERE owner_id = $1)              AS total_skills,
			(SELECT COUNT(*) FROM contacts)                                AS total_contacts,
			(SELECT COUNT(*) FROM contacts WHERE is_read = FALSE)          AS unread_contacts
	`

	stats := &DashboardStats{}
	if err := r.db.GetContext(ctx, stats, query, ownerID); err != nil {
		return nil, err
	}

	return stats, nil
}
