package models

import "time"

// Contact is a message submitted through the public contact form. Messages
// are site-wide (not owner-scoped) and start unread; opening one in the
// admin panel marks it read.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
