// auth.go implements the admin panel sign-in, sign-out, and password reset
// endpoints. These are the only admin routes reachable without a session.
package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/auth"
	"github.com/portfoly/portfoly/internal/config"
	"github.com/portfoly/portfoly/internal/mail"
	"github.com/portfoly/portfoly/internal/middleware"
	"github.com/portfoly/portfoly/internal/telemetry"
)

// invalidLoginMessage is shown for every login failure: unknown email,
// wrong password, or deactivated account. The uniformity is deliberate.
const invalidLoginMessage = "Invalid email or password."

// AuthHandlers handles authentication-related endpoints
type AuthHandlers struct {
	cfg      *config.Config
	sessions *auth.SessionService
	mailer   mail.Mailer
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(cfg *config.Config, sessions *auth.SessionService, mailer mail.Mailer) *AuthHandlers {
	return &AuthHandlers{
		cfg:      cfg,
		sessions: sessions,
		mailer:   mailer,
	}
}

// secureCookies reports whether session cookies should carry the Secure
// attribute. True whenever the server itself terminates TLS.
func (h *AuthHandlers) secureCookies() bool {
	return h.cfg.Security.TLS.Enabled
}

// @Summary      Login form state
// @Description  Returns the pending flash message for the login page. Users with a live session are redirected to the dashboard.
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "flash: optional notice"
// @Success      302  {object}  string                  "Already signed in; redirects to /admin-panel/"
// @Router       /admin-panel/login/ [get]
// LoginPageHandler serves the login form state
// GET /admin-panel/login/
func (h *AuthHandlers) LoginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// A visitor who already holds a live session has no business on the
		// login page; send them to the dashboard.
		if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
			if _, err := h.sessions.Validate(c.Request.Context(), token); err == nil {
				c.Redirect(http.StatusFound, "/admin-panel/")
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"flash": middleware.PopFlash(c),
		})
	}
}

// LoginRequest carries the sign-in form fields. The login identity is the
// account email.
type LoginRequest struct {
	Email      string `form:"email" json:"email" binding:"required,email"`
	Password   string `form:"password" json:"password" binding:"required"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// @Summary      Sign in
// @Description  Validates the email and password, issues a session token, sets the admin_token cookie, and redirects to the dashboard. The failure message never reveals whether the address has an account.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Credentials"
// @Success      302  {object}  string                  "Redirects to /admin-panel/"
// @Failure      400  {object}  map[string]interface{}  "Missing fields"
// @Failure      401  {object}  map[string]interface{}  "Invalid email or password"
// @Router       /admin-panel/login/ [post]
// LoginHandler signs a user in
// POST /admin-panel/login/
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A valid email and a password are required.",
			})
			return
		}

		_, token, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				telemetry.LoginAttemptsTotal.WithLabelValues("failure").Inc()
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": invalidLoginMessage,
				})
				return
			}
			slog.Error("login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Something went wrong. Please try again.",
			})
			return
		}

		telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()

		// Cookie lifetime mirrors the token lifetime; the server-side expiry
		// check is still authoritative on every request.
		maxAge := int(auth.SessionTTL.Seconds())
		if req.RememberMe {
			maxAge = int(auth.RememberMeTTL.Seconds())
		}
		middleware.SetSessionCookie(c, token.Token, maxAge, h.secureCookies())
		c.Redirect(http.StatusFound, "/admin-panel/")
	}
}

// @Summary      Sign out
// @Description  Revokes the presented session token (if any), clears the cookie, and redirects to the login page. Always succeeds.
// @Tags         Authentication
// @Produce      json
// @Success      302  {object}  string  "Redirects to /admin-panel/login/"
// @Router       /admin-panel/logout/ [post]
// LogoutHandler signs the user out
// POST /admin-panel/logout/
func (h *AuthHandlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(middleware.SessionCookieName)
		if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
			// A failed revocation still clears the cookie; the token will be
			// swept or lazily expired later.
			slog.Warn("logout: failed to revoke token", "error", err)
		}
		middleware.ClearSessionCookie(c, h.secureCookies())
		middleware.SetFlash(c, "You have been signed out.")
		c.Redirect(http.StatusFound, middleware.LoginPath)
	}
}

// @Summary      Reset request form state
// @Description  Returns the pending flash message for the forgot-password page.
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "flash: optional notice"
// @Router       /admin-panel/password-reset-request/ [get]
// ResetRequestPageHandler serves the forgot-password form state
// GET /admin-panel/password-reset-request/
func (h *AuthHandlers) ResetRequestPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"flash": middleware.PopFlash(c),
		})
	}
}

// ResetRequest carries the address to send a reset link to.
type ResetRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// @Summary      Request password reset
// @Description  Emails a one-time reset link when the address matches an account. The response is identical whether or not the account exists, but a delivery failure is reported to the caller.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        body  body  ResetRequest  true  "Account email"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      400  {object}  map[string]interface{}  "Invalid email"
// @Failure      500  {object}  map[string]interface{}  "Mail delivery failed"
// @Router       /admin-panel/password-reset-request/ [post]
// ResetRequestHandler starts the password reset flow
// POST /admin-panel/password-reset-request/
func (h *AuthHandlers) ResetRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A valid email address is required.",
			})
			return
		}

		user, token, err := h.sessions.RequestReset(c.Request.Context(), req.Email)
		if err != nil {
			slog.Error("password reset request failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Something went wrong. Please try again.",
			})
			return
		}

		if user != nil {
			link := h.cfg.Server.GetPublicURL() +
				"/admin-panel/password-reset/" + url.PathEscape(token) + "/"
			// Delivery is best-effort with no retry; a failure is reported to
			// the caller so they know no link is coming.
			if err := h.mailer.SendPasswordReset(user.Email, user.FullName(), link); err != nil {
				slog.Error("failed to send password reset email", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "The reset email could not be sent. Please try again later.",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "If that email matches an account, a reset link is on its way.",
		})
	}
}

// @Summary      Check reset token
// @Description  Reports whether the reset token in the link is still usable, so the front end knows whether to show the new-password form.
// @Tags         Authentication
// @Produce      json
// @Param        token  path  string  true  "Reset token"
// @Success      200  {object}  map[string]interface{}  "valid: true"
// @Failure      400  {object}  map[string]interface{}  "valid: false, error"
// @Router       /admin-panel/password-reset/{token}/ [get]
// ResetConfirmPageHandler validates a reset token
// GET /admin-panel/password-reset/:token/
func (h *AuthHandlers) ResetConfirmPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.sessions.CheckReset(c.Request.Context(), c.Param("token")); err != nil {
			if errors.Is(err, auth.ErrTokenInvalid) || errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrTokenUsed) {
				c.JSON(http.StatusBadRequest, gin.H{
					"valid": false,
					"error": "This reset link is invalid or has expired.",
				})
				return
			}
			slog.Error("reset token check failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Something went wrong. Please try again.",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"valid": true})
	}
}

// ResetConfirmRequest carries the replacement password. The token itself
// travels in the link path.
type ResetConfirmRequest struct {
	Password        string `form:"password" json:"password" binding:"required"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required"`
}

// @Summary      Complete password reset
// @Description  Consumes the one-time reset token from the link: updates the password, marks the token used, and revokes every session of the account.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        token  path  string              true  "Reset token"
// @Param        body   body  ResetConfirmRequest true  "New password"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      400  {object}  map[string]interface{}  "Invalid token or password"
// @Router       /admin-panel/password-reset/{token}/ [post]
// ResetConfirmHandler completes the password reset flow
// POST /admin-panel/password-reset/:token/
func (h *AuthHandlers) ResetConfirmHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetConfirmRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Password and confirmation are required.",
			})
			return
		}

		if msg := validateNewPassword(req.Password, req.PasswordConfirm); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		if err := h.sessions.ConsumeReset(c.Request.Context(), c.Param("token"), req.Password); err != nil {
			if errors.Is(err, auth.ErrTokenInvalid) || errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrTokenUsed) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "This reset link is invalid or has expired.",
				})
				return
			}
			slog.Error("password reset failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Something went wrong. Please try again.",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Your password has been updated. Please sign in.",
		})
	}
}

// validateNewPassword enforces the password policy shared by reset and
// change-password: at least 8 characters, confirmation must match.
// Returns an empty string when the password is acceptable.
func validateNewPassword(password, confirm string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters."
	}
	if password != confirm {
		return "Passwords do not match."
	}
	return ""
}
