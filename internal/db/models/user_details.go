package models

import "time"

// UserDetails holds the optional profile fields shown on the public about
// page, one row per user. Rows are created lazily on first profile access.
type UserDetails struct {
	ID          string
	UserID      string
	Phone       string
	LinkedInURL string
	GitHubURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
