package public

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
)

// ProjectHandlers serves the published project listings
type ProjectHandlers struct {
	projects *repositories.ProjectRepository
}

// NewProjectHandlers creates a new ProjectHandlers instance
func NewProjectHandlers(db *sql.DB) *ProjectHandlers {
	return &ProjectHandlers{
		projects: repositories.NewProjectRepository(db),
	}
}

// @Summary      List published projects
// @Description  Returns published projects ordered by display order then recency, optionally narrowed to one category.
// @Tags         Projects
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Success      200  {object}  map[string]interface{}  "projects, categories"
// @Failure      400  {object}  map[string]interface{}  "Unknown category"
// @Router       /projects/ [get]
// ListProjectsHandler lists published projects
// GET /projects/
func (h *ProjectHandlers) ListProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category")
		if category != "" && !models.IsValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Category must be one of: %s.", strings.Join(models.ProjectCategories, ", ")),
			})
			return
		}

		projects, err := h.projects.ListPublished(c.Request.Context(), category)
		if err != nil {
			slog.Error("failed to list published projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"projects":   projects,
			"categories": models.ProjectCategories,
		})
	}
}

// @Summary      Project detail
// @Description  Returns one published project by slug. Unpublished projects are indistinguishable from missing ones.
// @Tags         Projects
// @Produce      json
// @Param        slug  path  string  true  "Project slug"
// @Success      200  {object}  map[string]interface{}  "project"
// @Failure      404  {object}  map[string]interface{}
// @Router       /projects/{slug}/ [get]
// ProjectDetailHandler returns a published project by slug
// GET /projects/:slug/
func (h *ProjectHandlers) ProjectDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := h.projects.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			slog.Error("failed to load project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"project": project})
	}
}
