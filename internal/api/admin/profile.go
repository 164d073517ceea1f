package admin

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/auth"
	"github.com/portfoly/portfoly/internal/config"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/middleware"
)

// ProfileHandlers handles the signed-in user's account settings
type ProfileHandlers struct {
	cfg      *config.Config
	users    *repositories.UserRepository
	details  *repositories.UserDetailsRepository
	sessions *auth.SessionService
}

// NewProfileHandlers creates a new ProfileHandlers instance
func NewProfileHandlers(cfg *config.Config, db *sql.DB, sessions *auth.SessionService) *ProfileHandlers {
	return &ProfileHandlers{
		cfg:      cfg,
		users:    repositories.NewUserRepository(db),
		details:  repositories.NewUserDetailsRepository(db),
		sessions: sessions,
	}
}

// userView is the account shape returned to the admin panel. The password
// digest never leaves the server.
func userView(u *models.User, d *models.UserDetails) gin.H {
	view := gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"full_name":  u.FullName(),
		"is_staff":   u.IsStaff,
		"last_login": u.LastLogin,
	}
	if d != nil {
		view["phone"] = d.Phone
		view["linkedin_url"] = d.LinkedInURL
		view["github_url"] = d.GitHubURL
	}
	return view
}

// loadOrCreateDetails returns the user's details row, creating an empty one
// on first access.
func (h *ProfileHandlers) loadOrCreateDetails(c *gin.Context, userID string) (*models.UserDetails, error) {
	details, err := h.details.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = &models.UserDetails{UserID: userID}
		if err := h.details.Create(c.Request.Context(), details); err != nil {
			return nil, err
		}
	}
	return details, nil
}

// @Summary      Get profile
// @Description  Returns the signed-in user's account and contact details. A details row is created on first access.
// @Tags         Profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "profile"
// @Failure      500  {object}  map[string]interface{}
// @Router       /admin-panel/profile/ [get]
// GetProfileHandler returns the signed-in user's profile
// GET /admin-panel/profile/
func (h *ProfileHandlers) GetProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		details, err := h.loadOrCreateDetails(c, user.ID)
		if err != nil {
			slog.Error("failed to load profile details", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": userView(user, details)})
	}
}

// ProfileRequest carries the editable profile fields.
type ProfileRequest struct {
	Email       string `form:"email" json:"email" binding:"required,email"`
	FirstName   string `form:"first_name" json:"first_name"`
	LastName    string `form:"last_name" json:"last_name"`
	Phone       string `form:"phone" json:"phone"`
	LinkedInURL string `form:"linkedin_url" json:"linkedin_url"`
	GitHubURL   string `form:"github_url" json:"github_url"`
}

// @Summary      Update profile
// @Description  Updates the signed-in user's name, email and contact details. The username is fixed.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Param        body  body  ProfileRequest  true  "Profile fields"
// @Success      200  {object}  map[string]interface{}  "profile"
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin-panel/profile/ [put]
// UpdateProfileHandler updates the signed-in user's profile
// PUT /admin-panel/profile/
func (h *ProfileHandlers) UpdateProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req ProfileRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email address is required."})
			return
		}

		details, err := h.loadOrCreateDetails(c, user.ID)
		if err != nil {
			slog.Error("failed to load profile details", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		user.Email = strings.TrimSpace(req.Email)
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		if err := h.users.UpdateProfile(c.Request.Context(), user); err != nil {
			slog.Error("failed to update profile", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		details.Phone = req.Phone
		details.LinkedInURL = req.LinkedInURL
		details.GitHubURL = req.GitHubURL
		if err := h.details.Update(c.Request.Context(), details); err != nil {
			slog.Error("failed to update profile details", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": userView(user, details)})
	}
}

// ChangePasswordRequest carries the current password and its replacement.
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" json:"new_password" binding:"required"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required"`
}

// @Summary      Change password
// @Description  Verifies the current password, stores the new one, and revokes every session of the account. The caller must sign in again.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Param        body  body  ChangePasswordRequest  true  "Current and new password"
// @Success      302  {object}  string                  "Redirects to /admin-panel/login/"
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin-panel/profile/password/ [post]
// ChangePasswordHandler changes the signed-in user's password
// POST /admin-panel/profile/password/
func (h *ProfileHandlers) ChangePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req ChangePasswordRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password, new password and confirmation are required."})
			return
		}
		if msg := validateNewPassword(req.NewPassword, req.PasswordConfirm); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		if err := h.sessions.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect."})
				return
			}
			slog.Error("failed to change password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
			return
		}

		// Every session was just revoked, the caller's included.
		middleware.ClearSessionCookie(c, h.cfg.Security.TLS.Enabled)
		middleware.SetFlash(c, "Your password has been changed. Please sign in again.")
		c.Redirect(http.StatusFound, middleware.LoginPath)
	}
}
