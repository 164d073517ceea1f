package admin

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/middleware"
)

// ExperimentHandlers handles experiment management endpoints
type ExperimentHandlers struct {
	experiments *repositories.ExperimentRepository
}

// NewExperimentHandlers creates a new ExperimentHandlers instance
func NewExperimentHandlers(db *sql.DB) *ExperimentHandlers {
	return &ExperimentHandlers{
		experiments: repositories.NewExperimentRepository(db),
	}
}

// ExperimentRequest carries the writable experiment fields.
type ExperimentRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	TechStack   string `form:"tech_stack" json:"tech_stack"`
	RepoURL     string `form:"repo_url" json:"repo_url"`
	IsPublished bool   `form:"is_published" json:"is_published"`
}

// @Summary      List experiments
// @Description  Returns the signed-in owner's experiments, newest first, with optional title search.
// @Tags         Experiments
// @Produce      json
// @Param        q          query  string  false  "Title substring"
// @Param        page       query  int     false  "Page number (default 1)"
// @Param        page_size  query  int     false  "Page size (default 20, max 100)"
// @Success      200  {object}  map[string]interface{}  "experiments, total"
// @Failure      500  {object}  map[string]interface{}
// @Router       /admin-panel/experiments/ [get]
// ListExperimentsHandler lists the owner's experiments
// GET /admin-panel/experiments/
func (h *ExperimentHandlers) ListExperimentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		limit, offset := parsePagination(c)
		experiments, total, err := h.experiments.Search(c.Request.Context(), user.ID, c.Query("q"), limit, offset)
		if err != nil {
			slog.Error("failed to list experiments", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list experiments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"experiments": experiments,
			"total":       total,
		})
	}
}

// @Summary      Create experiment
// @Tags         Experiments
// @Accept       json
// @Produce      json
// @Param        body  body  ExperimentRequest  true  "Experiment fields"
// @Success      201  {object}  map[string]interface{}  "experiment"
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin-panel/experiments/ [post]
// CreateExperimentHandler creates a new experiment
// POST /admin-panel/experiments/
func (h *ExperimentHandlers) CreateExperimentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req ExperimentRequest
		if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required."})
			return
		}

		experiment := &models.Experiment{
			OwnerID:     user.ID,
			Title:       req.Title,
			Description: req.Description,
			TechStack:   req.TechStack,
			RepoURL:     req.RepoURL,
			IsPublished: req.IsPublished,
		}
		if err := h.experiments.Create(c.Request.Context(), experiment); err != nil {
			slog.Error("failed to create experiment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create experiment"})
			return
		}

		slog.Info("experiment created", "experiment_id", experiment.ID, "owner_id", user.ID)
		c.JSON(http.StatusCreated, gin.H{"experiment": experiment})
	}
}

// @Summary      Get experiment
// @Tags         Experiments
// @Produce      json
// @Param        id  path  string  true  "Experiment ID"
// @Success      200  {object}  map[string]interface{}  "experiment"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/experiments/{id}/ [get]
// GetExperimentHandler returns a single experiment
// GET /admin-panel/experiments/:id/
func (h *ExperimentHandlers) GetExperimentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		experiment, err := h.experiments.GetByID(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to get experiment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get experiment"})
			return
		}
		if experiment == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Experiment not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"experiment": experiment})
	}
}

// @Summary      Update experiment
// @Tags         Experiments
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "Experiment ID"
// @Param        body  body  ExperimentRequest  true  "Experiment fields"
// @Success      200  {object}  map[string]interface{}  "experiment"
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/experiments/{id}/ [put]
// UpdateExperimentHandler updates an experiment
// PUT /admin-panel/experiments/:id/
func (h *ExperimentHandlers) UpdateExperimentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		experiment, err := h.experiments.GetByID(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to get experiment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update experiment"})
			return
		}
		if experiment == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Experiment not found"})
			return
		}

		var req ExperimentRequest
		if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required."})
			return
		}

		experiment.Title = req.Title
		experiment.Description = req.Description
		experiment.TechStack = req.TechStack
		experiment.RepoURL = req.RepoURL
		experiment.IsPublished = req.IsPublished

		if err := h.experiments.Update(c.Request.Context(), experiment); err != nil {
			slog.Error("failed to update experiment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update experiment"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"experiment": experiment})
	}
}

// @Summary      Delete experiment
// @Tags         Experiments
// @Produce      json
// @Param        id  path  string  true  "Experiment ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/experiments/{id}/ [delete]
// DeleteExperimentHandler deletes an experiment
// DELETE /admin-panel/experiments/:id/
func (h *ExperimentHandlers) DeleteExperimentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		deleted, err := h.experiments.Delete(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to delete experiment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete experiment"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Experiment not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Experiment deleted"})
	}
}
