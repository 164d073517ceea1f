package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/auth"
	"github.com/portfoly/portfoly/internal/db/repositories"
)

var (
	userCols      = []string{"id", "username", "email", "first_name", "last_name", "password_digest", "is_staff", "is_active", "last_login", "created_at", "updated_at"}
	authTokenCols = []string{"id", "user_id", "token", "created_at", "expires_at", "is_active", "remember_me"}
)

// newSessionService builds a SessionService over a sqlmock connection.
func newSessionService(t *testing.T) (*auth.SessionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := auth.NewSessionService(
		repositories.NewUserRepository(db),
		repositories.NewAuthTokenRepository(db),
		repositories.NewPasswordResetTokenRepository(db),
	)
	return svc, mock
}

// newGateRouter wires SessionMiddleware (and optionally RequireStaff) in front
// of a probe handler that reports the user stored in the context.
func newGateRouter(svc *auth.SessionService, staffOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/admin-panel")
	group.Use(SessionMiddleware(svc, false))
	if staffOnly {
		group.Use(RequireStaff())
	}
	group.GET("/probe", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func expectTokenLookup(mock sqlmock.Sqlmock, token string, isStaff bool) {
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows(authTokenCols).
			AddRow("tok-1", "user-1", token, time.Now(), time.Now().Add(time.Hour), true, false))
	mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "ed", "ed@example.com", "Ed", "Moran",
				auth.HashPassword("hunter2"), isStaff, true, nil, time.Now(), time.Now()))
}

// ---------------------------------------------------------------------------
// SessionMiddleware
// ---------------------------------------------------------------------------

func TestSessionMiddleware_NoCookieRedirectsToLogin(t *testing.T) {
	svc, _ := newSessionService(t)
	r := newGateRouter(svc, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-panel/probe", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != LoginPath {
		t.Errorf("Location = %q, want %q", loc, LoginPath)
	}
	// A flash message must accompany the redirect.
	flashSet := false
	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName && c.Value != "" {
			flashSet = true
		}
	}
	if !flashSet {
		t.Error("expected flash cookie on redirect to login")
	}
}

func TestSessionMiddleware_ValidTokenPopulatesContext(t *testing.T) {
	svc, mock := newSessionService(t)
	expectTokenLookup(mock, "tok-value", true)
	r := newGateRouter(svc, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-panel/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-value"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "ed") {
		t.Errorf("body = %s, want username ed", w.Body.String())
	}
}

func TestSessionMiddleware_UnknownTokenClearsCookieAndRedirects(t *testing.T) {
	svc, mock := newSessionService(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("bogus").
		WillReturnRows(sqlmock.NewRows(authTokenCols))
	r := newGateRouter(svc, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-panel/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared on invalid token")
	}
}

func TestSessionMiddleware_ExpiredTokenRedirects(t *testing.T) {
	svc, mock := newSessionService(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows(authTokenCols).
			AddRow("tok-1", "user-1", "stale", time.Now().Add(-24*time.Hour), time.Now().Add(-time.Hour), true, false))
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE token").
		WithArgs("stale").
		WillReturnResult(sqlmock.NewResult(0, 1))
	r := newGateRouter(svc, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-panel/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != LoginPath {
		t.Errorf("Location = %q, want %q", loc, LoginPath)
	}
}

// ---------------------------------------------------------------------------
// RequireStaff
// ---------------------------------------------------------------------------

func TestRequireStaff_AllowsStaff(t *testing.T) {
	svc, mock := newSessionService(t)
	expectTokenLookup(mock, "tok-value", true)
	r := newGateRouter(svc, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-panel/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-value"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireStaff_RedirectsNonStaffToSite(t *testing.T) {
	svc, mock := newSessionService(t)
	expectTokenLookup(mock, "tok-value", false)
	r := newGateRouter(svc, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-panel/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-value"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

// ---------------------------------------------------------------------------
// Flash and cookie helpers
// ---------------------------------------------------------------------------

func TestFlash_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/set", func(c *gin.Context) {
		SetFlash(c, "Please sign in to continue.")
		c.Status(http.StatusOK)
	})
	r.GET("/pop", func(c *gin.Context) {
		c.String(http.StatusOK, PopFlash(c))
	})

	// Set the flash.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	var flash *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName {
			flash = c
		}
	}
	if flash == nil {
		t.Fatal("SetFlash did not set a cookie")
	}

	// Pop it back.
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pop", nil)
	req.AddCookie(flash)
	r.ServeHTTP(w2, req)

	if got := w2.Body.String(); got != "Please sign in to continue." {
		t.Errorf("PopFlash = %q, want the original message", got)
	}
	// Popping must clear the cookie.
	cleared := false
	for _, c := range w2.Result().Cookies() {
		if c.Name == FlashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("PopFlash did not clear the flash cookie")
	}
}

func TestPopFlash_EmptyWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if msg := PopFlash(c); msg != "" {
		t.Errorf("PopFlash = %q, want empty when no cookie present", msg)
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/in", func(c *gin.Context) {
		SetSessionCookie(c, "tok-value", 3600, false)
		c.Status(http.StatusOK)
	})
	r.GET("/out", func(c *gin.Context) {
		ClearSessionCookie(c, false)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/in", nil))
	var set *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookieName {
			set = ck
		}
	}
	if set == nil {
		t.Fatal("SetSessionCookie did not set the cookie")
	}
	if !set.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if set.Value != "tok-value" || set.MaxAge != 3600 {
		t.Errorf("cookie = %q maxage=%d, want tok-value/3600", set.Value, set.MaxAge)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/out", nil))
	cleared := false
	for _, ck := range w2.Result().Cookies() {
		if ck.Name == SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("ClearSessionCookie did not clear the cookie")
	}
}

func TestSessionCookieSecureAttribute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tls", func(c *gin.Context) {
		SetSessionCookie(c, "tok-value", 3600, true)
		c.Status(http.StatusOK)
	})
	r.GET("/plain", func(c *gin.Context) {
		SetSessionCookie(c, "tok-value", 3600, false)
		c.Status(http.StatusOK)
	})

	cookieFor := func(path string) *http.Cookie {
		t.Helper()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		for _, ck := range w.Result().Cookies() {
			if ck.Name == SessionCookieName {
				return ck
			}
		}
		t.Fatalf("no session cookie set by %s", path)
		return nil
	}

	if ck := cookieFor("/tls"); !ck.Secure {
		t.Error("cookie on a TLS-terminated server must carry the Secure attribute")
	}
	if ck := cookieFor("/plain"); ck.Secure {
		t.Error("Secure attribute set without TLS would make the cookie undeliverable")
	}
}
