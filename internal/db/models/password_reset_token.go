package models

import "time"

// PasswordResetToken is a single-use token emailed to a user to let them set
// a new password. It is valid for one hour from creation and becomes
// permanently unusable once Used is set.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Usable reports whether the token can still be consumed at the given instant.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
