package admin

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/middleware"
)

// ProjectHandlers handles project management endpoints
type ProjectHandlers struct {
	projects *repositories.ProjectRepository
}

// NewProjectHandlers creates a new ProjectHandlers instance
func NewProjectHandlers(db *sql.DB) *ProjectHandlers {
	return &ProjectHandlers{
		projects: repositories.NewProjectRepository(db),
	}
}

// ProjectRequest carries the writable project fields for create and update.
type ProjectRequest struct {
	Title        string `form:"title" json:"title" binding:"required"`
	Description  string `form:"description" json:"description"`
	Category     string `form:"category" json:"category" binding:"required"`
	TechStack    string `form:"tech_stack" json:"tech_stack"`
	RepoURL      string `form:"repo_url" json:"repo_url"`
	LiveURL      string `form:"live_url" json:"live_url"`
	ImageURL     string `form:"image_url" json:"image_url"`
	IsPublished  bool   `form:"is_published" json:"is_published"`
	DisplayOrder int    `form:"display_order" json:"display_order"`
}

func (req *ProjectRequest) validate() string {
	if strings.TrimSpace(req.Title) == "" {
		return "Title is required."
	}
	if !models.IsValidCategory(req.Category) {
		return fmt.Sprintf("Category must be one of: %s.", strings.Join(models.ProjectCategories, ", "))
	}
	return ""
}

// @Summary      List projects
// @Description  Returns the signed-in owner's projects, newest first, with optional title search and category filter.
// @Tags         Projects
// @Produce      json
// @Param        q          query  string  false  "Title substring"
// @Param        category   query  string  false  "Category filter"
// @Param        page       query  int     false  "Page number (default 1)"
// @Param        page_size  query  int     false  "Page size (default 20, max 100)"
// @Success      200  {object}  map[string]interface{}  "projects, total, categories"
// @Failure      500  {object}  map[string]interface{}
// @Router       /admin-panel/projects/ [get]
// ListProjectsHandler lists the owner's projects
// GET /admin-panel/projects/
func (h *ProjectHandlers) ListProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		limit, offset := parsePagination(c)
		projects, total, err := h.projects.Search(c.Request.Context(), user.ID, c.Query("q"), c.Query("category"), limit, offset)
		if err != nil {
			slog.Error("failed to list projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"projects":   projects,
			"total":      total,
			"categories": models.ProjectCategories,
		})
	}
}

// @Summary      Create project
// @Description  Creates a project owned by the signed-in user. The slug is derived from the title and suffixed with a number when the owner already has a project with the same slug.
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        body  body  ProjectRequest  true  "Project fields"
// @Success      201  {object}  map[string]interface{}  "project"
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin-panel/projects/ [post]
// CreateProjectHandler creates a new project
// POST /admin-panel/projects/
func (h *ProjectHandlers) CreateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req ProjectRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and category are required."})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		slug, err := h.uniqueSlug(c, user.ID, req.Title, "")
		if err != nil {
			slog.Error("failed to derive project slug", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}

		project := &models.Project{
			OwnerID:      user.ID,
			Title:        req.Title,
			Slug:         slug,
			Description:  req.Description,
			Category:     req.Category,
			TechStack:    req.TechStack,
			RepoURL:      req.RepoURL,
			LiveURL:      req.LiveURL,
			ImageURL:     req.ImageURL,
			IsPublished:  req.IsPublished,
			DisplayOrder: req.DisplayOrder,
		}
		if err := h.projects.Create(c.Request.Context(), project); err != nil {
			slog.Error("failed to create project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}

		slog.Info("project created", "project_id", project.ID, "owner_id", user.ID, "slug", project.Slug)
		c.JSON(http.StatusCreated, gin.H{"project": project})
	}
}

// @Summary      Get project
// @Description  Returns one of the signed-in owner's projects. Another owner's project returns 404.
// @Tags         Projects
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  map[string]interface{}  "project"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/projects/{id}/ [get]
// GetProjectHandler returns a single project
// GET /admin-panel/projects/:id/
func (h *ProjectHandlers) GetProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		project, err := h.projects.GetByID(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to get project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get project"})
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"project": project})
	}
}

// @Summary      Update project
// @Description  Updates one of the signed-in owner's projects. A title change re-derives the slug.
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Project ID"
// @Param        body  body  ProjectRequest  true  "Project fields"
// @Success      200  {object}  map[string]interface{}  "project"
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/projects/{id}/ [put]
// UpdateProjectHandler updates a project
// PUT /admin-panel/projects/:id/
func (h *ProjectHandlers) UpdateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		project, err := h.projects.GetByID(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to get project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		var req ProjectRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and category are required."})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		if req.Title != project.Title {
			slug, err := h.uniqueSlug(c, user.ID, req.Title, project.Slug)
			if err != nil {
				slog.Error("failed to derive project slug", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
				return
			}
			project.Slug = slug
		}

		project.Title = req.Title
		project.Description = req.Description
		project.Category = req.Category
		project.TechStack = req.TechStack
		project.RepoURL = req.RepoURL
		project.LiveURL = req.LiveURL
		project.ImageURL = req.ImageURL
		project.IsPublished = req.IsPublished
		project.DisplayOrder = req.DisplayOrder

		if err := h.projects.Update(c.Request.Context(), project); err != nil {
			slog.Error("failed to update project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"project": project})
	}
}

// @Summary      Delete project
// @Description  Deletes one of the signed-in owner's projects. Another owner's project returns 404.
// @Tags         Projects
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/projects/{id}/ [delete]
// DeleteProjectHandler deletes a project
// DELETE /admin-panel/projects/:id/
func (h *ProjectHandlers) DeleteProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		deleted, err := h.projects.Delete(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to delete project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		slog.Info("project deleted", "project_id", c.Param("id"), "owner_id", user.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
	}
}

// uniqueSlug turns a title into a slug that no other project of the same
// owner uses. keep is the row's current slug on update so a project keeps
// its slug when the re-derived value is unchanged.
func (h *ProjectHandlers) uniqueSlug(c *gin.Context, ownerID, title, keep string) (string, error) {
	base := models.Slugify(title)
	if base == "" {
		base = "project"
	}
	candidate := base
	for i := 2; ; i++ {
		if candidate == keep {
			return candidate, nil
		}
		exists, err := h.projects.SlugExists(c.Request.Context(), ownerID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
