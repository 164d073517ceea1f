// skill.go defines the Skill model and the fixed proficiency level vocabulary.
package models

import "time"

// Skill proficiency levels, ordered from weakest to strongest.
const (
	LevelBasic        = "Basic"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
	LevelMaster       = "Master"
)

// SkillLevels lists every valid proficiency level in ascending order.
var SkillLevels = []string{
	LevelBasic,
	LevelIntermediate,
	LevelAdvanced,
	LevelExpert,
	LevelMaster,
}

// IsValidLevel reports whether s is one of the known proficiency levels.
func IsValidLevel(s string) bool {
	for _, l := range SkillLevels {
		if l == s {
			return true
		}
	}
	return false
}

// Skill is a single named competency shown on the public about page, grouped
// by category and ordered by DisplayOrder within its group.
type Skill struct {
	ID           string
	OwnerID      string
	Name         string
	Level        string
	Category     string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
