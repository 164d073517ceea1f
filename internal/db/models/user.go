// Package models defines the database model types for the portfolio backend.
// Each type corresponds to a database table. Models are pure data types —
// business logic belongs in the service layer, query logic belongs in the
// repositories layer.
package models

import "time"

// User represents an admin panel account. Password is stored as a 64-character
// lowercase hex SHA-256 digest of the raw password (legacy scheme carried over
// from the original deployment; all existing credentials are in this format).
type User struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	PasswordDigest string
	IsStaff        bool
	IsActive       bool
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName returns the display name for the user, falling back to the
// username when no name parts are set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
