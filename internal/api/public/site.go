// Package public implements the unauthenticated website API: the home
// summary, the about page, the published project listings and the contact
// form. Nothing here ever exposes unpublished content or another user's
// drafts; everything is read-only except the contact form.
package public

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
)

// SiteHandlers serves the home and about pages
type SiteHandlers struct {
	users       *repositories.UserRepository
	details     *repositories.UserDetailsRepository
	projects    *repositories.ProjectRepository
	experiments *repositories.ExperimentRepository
	skills      *repositories.SkillRepository
}

// NewSiteHandlers creates a new SiteHandlers instance
func NewSiteHandlers(db *sql.DB) *SiteHandlers {
	return &SiteHandlers{
		users:       repositories.NewUserRepository(db),
		details:     repositories.NewUserDetailsRepository(db),
		projects:    repositories.NewProjectRepository(db),
		experiments: repositories.NewExperimentRepository(db),
		skills:      repositories.NewSkillRepository(db),
	}
}

// groupSkills buckets skills by category. Within a bucket the repository
// ordering (display_order, then name) is preserved.
func groupSkills(skills []*models.Skill) map[string][]*models.Skill {
	grouped := make(map[string][]*models.Skill)
	for _, s := range skills {
		grouped[s.Category] = append(grouped[s.Category], s)
	}
	return grouped
}

// ownerSkills returns the site owner's skills grouped by category, or an
// empty map when no owner account exists yet.
func (h *SiteHandlers) ownerSkills(c *gin.Context) (map[string][]*models.Skill, error) {
	owner, err := h.users.GetSiteOwner(c.Request.Context())
	if err != nil || owner == nil {
		return map[string][]*models.Skill{}, err
	}
	skills, err := h.skills.ListByOwner(c.Request.Context(), owner.ID)
	if err != nil {
		return nil, err
	}
	return groupSkills(skills), nil
}

// @Summary      Site summary
// @Description  Returns the published content counts and the owner's skills grouped by category, for the home page.
// @Tags         Site
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "projects_count, experiments_count, skills"
// @Failure      500  {object}  map[string]interface{}
// @Router       / [get]
// HomeHandler serves the home page summary
// GET /
func (h *SiteHandlers) HomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectCount, err := h.projects.CountPublished(c.Request.Context())
		if err != nil {
			slog.Error("failed to count published projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load site summary"})
			return
		}
		experimentCount, err := h.experiments.CountPublished(c.Request.Context())
		if err != nil {
			slog.Error("failed to count published experiments", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load site summary"})
			return
		}
		skills, err := h.ownerSkills(c)
		if err != nil {
			slog.Error("failed to load skills", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load site summary"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"projects_count":    projectCount,
			"experiments_count": experimentCount,
			"skills":            skills,
		})
	}
}

// @Summary      About page
// @Description  Returns the site owner's public profile: name, contact details, and skills grouped by category.
// @Tags         Site
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "owner, skills"
// @Failure      404  {object}  map[string]interface{}  "No owner account configured"
// @Router       /about/ [get]
// AboutHandler serves the about page
// GET /about/
func (h *SiteHandlers) AboutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := h.users.GetSiteOwner(c.Request.Context())
		if err != nil {
			slog.Error("failed to load site owner", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load about page"})
			return
		}
		if owner == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		details, err := h.details.GetByUserID(c.Request.Context(), owner.ID)
		if err != nil {
			slog.Error("failed to load owner details", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load about page"})
			return
		}

		skills, err := h.skills.ListByOwner(c.Request.Context(), owner.ID)
		if err != nil {
			slog.Error("failed to load skills", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load about page"})
			return
		}

		// The public profile shows display fields only; the username and
		// email stay private.
		profile := gin.H{
			"name":       owner.FullName(),
			"first_name": owner.FirstName,
			"last_name":  owner.LastName,
		}
		if details != nil {
			profile["phone"] = details.Phone
			profile["linkedin_url"] = details.LinkedInURL
			profile["github_url"] = details.GitHubURL
		}

		c.JSON(http.StatusOK, gin.H{
			"owner":  profile,
			"skills": groupSkills(skills),
		})
	}
}
