package admin

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/middleware"
)

// DashboardHandlers handles the admin panel landing page
type DashboardHandlers struct {
	stats    *repositories.StatsRepository
	contacts *repositories.ContactRepository
}

// NewDashboardHandlers creates a new DashboardHandlers instance
func NewDashboardHandlers(db *sql.DB) *DashboardHandlers {
	return &DashboardHandlers{
		stats:    repositories.NewStatsRepository(sqlx.NewDb(db, "postgres")),
		contacts: repositories.NewContactRepository(db),
	}
}

// @Summary      Dashboard
// @Description  Returns content counts scoped to the signed-in owner, site-wide contact counts, and the five most recent contact messages.
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "stats, recent_contacts"
// @Failure      500  {object}  map[string]interface{}
// @Router       /admin-panel/ [get]
// DashboardHandler serves the admin dashboard summary
// GET /admin-panel/
func (h *DashboardHandlers) DashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		stats, err := h.stats.Dashboard(c.Request.Context(), user.ID)
		if err != nil {
			slog.Error("failed to load dashboard stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		recent, err := h.contacts.ListRecent(c.Request.Context(), 5)
		if err != nil {
			slog.Error("failed to load recent contacts", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"stats":           stats,
			"recent_contacts": recent,
		})
	}
}
