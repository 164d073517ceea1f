// session.go provides the Gin middleware that guards the admin panel. It
// resolves the session cookie to a user via the auth package and redirects
// browsers to the login page (with a flash message) when the session is
// missing, expired, or revoked.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/auth"
	"github.com/portfoly/portfoly/internal/db/models"
)

const (
	// SessionCookieName is the cookie that carries the opaque session token.
	SessionCookieName = "admin_token"

	// FlashCookieName carries a one-shot message displayed after a redirect,
	// e.g. "Please sign in to continue." It is cleared as soon as it is read.
	FlashCookieName = "admin_flash"

	// LoginPath is where unauthenticated requests to the admin panel are sent.
	LoginPath = "/admin-panel/login/"

	// UserKey is the gin.Context key under which the authenticated *models.User
	// is stored by SessionMiddleware.
	UserKey = "user"

	// UserIDKey is the gin.Context key holding the authenticated user's ID.
	UserIDKey = "user_id"
)

// SetFlash stores a one-shot message in the flash cookie. The next page that
// renders pops it with PopFlash.
func SetFlash(c *gin.Context, message string) {
	c.SetCookie(FlashCookieName, message, 300, "/", "", false, true)
}

// PopFlash returns the pending flash message, if any, and clears the cookie.
func PopFlash(c *gin.Context) string {
	msg, err := c.Cookie(FlashCookieName)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(FlashCookieName, "", -1, "/", "", false, true)
	return msg
}

// SetSessionCookie installs the session token cookie. maxAge is in seconds;
// pass 0 for a browser-session cookie (token expiry is still enforced
// server-side on every request). secure marks the cookie HTTPS-only and must
// be set whenever the server terminates TLS.
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie removes the session token cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

// SessionMiddleware resolves the admin_token cookie to a user and stores it in
// the gin.Context under UserKey/UserIDKey.
//
// Any failure — missing cookie, unknown token, expired or revoked session,
// deactivated account — produces the same response: the stale cookie is
// cleared, a flash message is set, and the browser is redirected to the login
// page. The uniform handling means the response never reveals whether a
// presented token was once valid.
func SessionMiddleware(sessions *auth.SessionService, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			redirectToLogin(c, secure)
			return
		}

		user, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenInvalid) || errors.Is(err, auth.ErrTokenExpired) {
				redirectToLogin(c, secure)
				return
			}
			// Database failure: nothing the visitor can do about it.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Something went wrong. Please try again.",
			})
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// RequireStaff allows only users with the staff flag into the wrapped routes.
// Non-staff users are sent back to the public site. Must run after
// SessionMiddleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsStaff {
			SetFlash(c, "You do not have access to the admin panel.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by SessionMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func redirectToLogin(c *gin.Context, secure bool) {
	ClearSessionCookie(c, secure)
	SetFlash(c, "Please sign in to continue.")
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}
