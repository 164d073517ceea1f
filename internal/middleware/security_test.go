package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSecurityRouter(cfg SecurityHeadersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(cfg))
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func serveSecurityRequest(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	r := newSecurityRouter(cfg)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

// ---------------------------------------------------------------------------
// SecurityHeadersMiddleware
// ---------------------------------------------------------------------------

func TestSecurityHeaders_SiteDefaults(t *testing.T) {
	w := serveSecurityRequest(SiteSecurityHeadersConfig())

	checks := map[string]string{
		"Strict-Transport-Security":    "max-age=31536000; includeSubDomains",
		"X-Frame-Options":              "SAMEORIGIN",
		"X-Content-Type-Options":       "nosniff",
		"Referrer-Policy":              "strict-origin-when-cross-origin",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'self'") {
		t.Errorf("CSP = %q, want default-src 'self'", csp)
	}
}

func TestSecurityHeaders_AdminDeniesFraming(t *testing.T) {
	w := serveSecurityRequest(AdminSecurityHeadersConfig())

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP = %q, want frame-ancestors 'none'", csp)
	}
	if got := w.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Errorf("Referrer-Policy = %q, want no-referrer", got)
	}
}

func TestSecurityHeaders_HSTSDisabled(t *testing.T) {
	cfg := SiteSecurityHeadersConfig()
	cfg.EnableHSTS = false
	w := serveSecurityRequest(cfg)

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want empty when HSTS disabled", got)
	}
}

func TestSecurityHeaders_HSTSWithoutSubdomains(t *testing.T) {
	cfg := SiteSecurityHeadersConfig()
	cfg.HSTSIncludeSubdomains = false
	cfg.HSTSMaxAge = 600
	w := serveSecurityRequest(cfg)

	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=600" {
		t.Errorf("Strict-Transport-Security = %q, want max-age=600", got)
	}
}

func TestSecurityHeaders_OptionalHeadersOmittedWhenEmpty(t *testing.T) {
	cfg := SecurityHeadersConfig{}
	w := serveSecurityRequest(cfg)

	for _, header := range []string{
		"X-Frame-Options",
		"Content-Security-Policy",
		"Referrer-Policy",
		"Permissions-Policy",
	} {
		if got := w.Header().Get(header); got != "" {
			t.Errorf("%s = %q, want empty for zero config", header, got)
		}
	}
	// nosniff is unconditional
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
