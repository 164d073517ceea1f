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

// SkillHandlers handles skill management endpoints
type SkillHandlers struct {
	skills *repositories.SkillRepository
}

// NewSkillHandlers creates a new SkillHandlers instance
func NewSkillHandlers(db *sql.DB) *SkillHandlers {
	return &SkillHandlers{
		skills: repositories.NewSkillRepository(db),
	}
}

// SkillRequest carries the writable skill fields.
type SkillRequest struct {
	Name         string `form:"name" json:"name" binding:"required"`
	Level        string `form:"level" json:"level" binding:"required"`
	Category     string `form:"category" json:"category"`
	DisplayOrder int    `form:"display_order" json:"display_order"`
}

func (req *SkillRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "Name is required."
	}
	if !models.IsValidLevel(req.Level) {
		return fmt.Sprintf("Level must be one of: %s.", strings.Join(models.SkillLevels, ", "))
	}
	return ""
}

// @Summary      List skills
// @Description  Returns the signed-in owner's skills ordered by category and display order, with optional name search and level filter.
// @Tags         Skills
// @Produce      json
// @Param        q      query  string  false  "Name substring"
// @Param        level  query  string  false  "Proficiency level filter"
// @Success      200  {object}  map[string]interface{}  "skills, levels"
// @Failure      500  {object}  map[string]interface{}
// @Router       /admin-panel/skills/ [get]
// ListSkillsHandler lists the owner's skills
// GET /admin-panel/skills/
func (h *SkillHandlers) ListSkillsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		skills, err := h.skills.Search(c.Request.Context(), user.ID, c.Query("q"), c.Query("level"))
		if err != nil {
			slog.Error("failed to list skills", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list skills"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"skills": skills,
			"levels": models.SkillLevels,
		})
	}
}

// @Summary      Create skill
// @Tags         Skills
// @Accept       json
// @Produce      json
// @Param        body  body  SkillRequest  true  "Skill fields"
// @Success      201  {object}  map[string]interface{}  "skill"
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin-panel/skills/ [post]
// CreateSkillHandler creates a new skill
// POST /admin-panel/skills/
func (h *SkillHandlers) CreateSkillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req SkillRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and level are required."})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		skill := &models.Skill{
			OwnerID:      user.ID,
			Name:         req.Name,
			Level:        req.Level,
			Category:     req.Category,
			DisplayOrder: req.DisplayOrder,
		}
		if err := h.skills.Create(c.Request.Context(), skill); err != nil {
			slog.Error("failed to create skill", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create skill"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"skill": skill})
	}
}

// @Summary      Get skill
// @Tags         Skills
// @Produce      json
// @Param        id  path  string  true  "Skill ID"
// @Success      200  {object}  map[string]interface{}  "skill"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/skills/{id}/ [get]
// GetSkillHandler returns a single skill
// GET /admin-panel/skills/:id/
func (h *SkillHandlers) GetSkillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		skill, err := h.skills.GetByID(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to get skill", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get skill"})
			return
		}
		if skill == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Skill not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"skill": skill})
	}
}

// @Summary      Update skill
// @Tags         Skills
// @Accept       json
// @Produce      json
// @Param        id    path  string        true  "Skill ID"
// @Param        body  body  SkillRequest  true  "Skill fields"
// @Success      200  {object}  map[string]interface{}  "skill"
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/skills/{id}/ [put]
// UpdateSkillHandler updates a skill
// PUT /admin-panel/skills/:id/
func (h *SkillHandlers) UpdateSkillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		skill, err := h.skills.GetByID(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to get skill", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update skill"})
			return
		}
		if skill == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Skill not found"})
			return
		}

		var req SkillRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and level are required."})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		skill.Name = req.Name
		skill.Level = req.Level
		skill.Category = req.Category
		skill.DisplayOrder = req.DisplayOrder

		if err := h.skills.Update(c.Request.Context(), skill); err != nil {
			slog.Error("failed to update skill", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update skill"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"skill": skill})
	}
}

// @Summary      Delete skill
// @Tags         Skills
// @Produce      json
// @Param        id  path  string  true  "Skill ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/skills/{id}/ [delete]
// DeleteSkillHandler deletes a skill
// DELETE /admin-panel/skills/:id/
func (h *SkillHandlers) DeleteSkillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		deleted, err := h.skills.Delete(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			slog.Error("failed to delete skill", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete skill"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Skill not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Skill deleted"})
	}
}
