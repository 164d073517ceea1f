package models

import "time"

// Experiment is a smaller portfolio entry for prototypes and throwaway
// builds that do not warrant a full project page.
type Experiment struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	TechStack   string
	RepoURL     string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
