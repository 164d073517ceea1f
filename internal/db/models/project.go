// project.go defines the Project model together with the fixed category
// vocabulary and the slug helper used when projects are created or retitled.
package models

import (
	"strings"
	"time"
	"unicode"
)

// Project categories. The set is fixed; list filters and create/update
// validation both check against it.
const (
	CategoryMobile  = "Mobile"
	CategoryWeb     = "Web"
	CategoryDesktop = "Desktop"
	CategoryAndroid = "Android"
	CategoryIOS     = "iOS"
	CategoryGame    = "Game"
	CategoryIA      = "IA"
)

// ProjectCategories lists every valid project category in display order.
var ProjectCategories = []string{
	CategoryMobile,
	CategoryWeb,
	CategoryDesktop,
	CategoryAndroid,
	CategoryIOS,
	CategoryGame,
	CategoryIA,
}

// IsValidCategory reports whether s is one of the known project categories.
func IsValidCategory(s string) bool {
	for _, c := range ProjectCategories {
		if c == s {
			return true
		}
	}
	return false
}

// Project is a portfolio entry owned by a single user. Only published
// projects appear on the public site; the admin panel shows everything the
// owner has.
type Project struct {
	ID           string
	OwnerID      string
	Title        string
	Slug         string
	Description  string
	Category     string
	TechStack    string
	RepoURL      string
	LiveURL      string
	ImageURL     string
	IsPublished  bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Slugify lowercases s and collapses every run of non-alphanumeric characters
// into a single hyphen. Uniqueness per owner is enforced by the repository,
// which appends a numeric suffix on collision.
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		case !prevHyphen:
			b.WriteByte('-')
			prevHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
