// Package api wires together all HTTP routes for the portfolio backend.
//
// Route grouping philosophy:
//   - Public site routes (/, /about/, /projects/, /contact/) are intentionally
//     unauthenticated; they only ever see published content.
//   - The admin panel lives under /admin-panel/. Its login and password reset
//     endpoints are open but rate limited; everything else sits behind the
//     session cookie gate and the staff check, and answers a missing or dead
//     session with a redirect to the login page rather than a 401.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfoly/portfoly/internal/api/admin"
	"github.com/portfoly/portfoly/internal/api/public"
	"github.com/portfoly/portfoly/internal/auth"
	"github.com/portfoly/portfoly/internal/config"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/jobs"
	"github.com/portfoly/portfoly/internal/mail"
	"github.com/portfoly/portfoly/internal/middleware"
	"github.com/portfoly/portfoly/internal/safego"
)

// BackgroundServices holds references to background jobs and resources that
// must be stopped during graceful shutdown. The caller (cmd/server) is
// responsible for calling Shutdown() when the process receives a termination
// signal.
type BackgroundServices struct {
	tokenSweeper  *jobs.TokenSweeper
	rateLimiters  []*middleware.RateLimiter
	redisLimiters []*middleware.RedisRateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.tokenSweeper != nil {
		bg.tokenSweeper.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	for _, rl := range bg.redisLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	bg := &BackgroundServices{}

	// Shared auth plumbing: the session service backs both the middleware
	// gate and the login/logout/reset handlers.
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewAuthTokenRepository(db)
	resetRepo := repositories.NewPasswordResetTokenRepository(db)
	sessions := auth.NewSessionService(userRepo, tokenRepo, resetRepo)
	mailer := mail.NewSMTPMailer(&cfg.Mail)

	// Expired sessions are also caught lazily on use; the sweeper keeps the
	// table and the active-sessions gauge honest in between.
	bg.tokenSweeper = jobs.NewTokenSweeper(tokenRepo, &cfg.Auth)
	safego.Go(func() { bg.tokenSweeper.Start(context.Background()) })

	// The default profile honors the configured site-wide knobs; the auth and
	// contact profiles stay at their stricter per-route values.
	defaultLimit := middleware.DefaultRateLimitConfig()
	if n := cfg.Security.RateLimiting.RequestsPerMinute; n > 0 {
		defaultLimit.RequestsPerMinute = n
	}
	if n := cfg.Security.RateLimiting.Burst; n > 0 {
		defaultLimit.BurstSize = n
	}

	// rateLimit picks the cluster-safe Redis limiter when one is configured
	// and falls back to the in-process token bucket otherwise.
	rateLimit := func(rc middleware.RateLimitConfig) gin.HandlerFunc {
		if !cfg.Security.RateLimiting.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		if cfg.Security.RateLimiting.RedisAddr != "" {
			rl := middleware.NewRedisRateLimiter(
				cfg.Security.RateLimiting.RedisAddr,
				cfg.Security.RateLimiting.RedisPassword,
				rc.RequestsPerMinute,
				rc.BurstSize,
			)
			bg.redisLimiters = append(bg.redisLimiters, rl)
			return middleware.RedisRateLimitMiddleware(rl)
		}
		rl := middleware.NewRateLimiter(rc)
		bg.rateLimiters = append(bg.rateLimiters, rl)
		return middleware.RateLimitMiddleware(rl)
	}

	// Global middleware. Order matters: recovery outermost, then request ID
	// so every later stage (metrics, logs) can tag its output.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))

	// System endpoints
	router.GET("/health", healthCheckHandler(db))
	router.GET("/version", versionHandler())

	// Handlers
	siteHandlers := public.NewSiteHandlers(db)
	publicProjectHandlers := public.NewProjectHandlers(db)
	contactFormHandlers := public.NewContactHandlers(db)

	authHandlers := admin.NewAuthHandlers(cfg, sessions, mailer)
	dashboardHandlers := admin.NewDashboardHandlers(db)
	projectHandlers := admin.NewProjectHandlers(db)
	experimentHandlers := admin.NewExperimentHandlers(db)
	skillHandlers := admin.NewSkillHandlers(db)
	contactHandlers := admin.NewContactHandlers(db)
	profileHandlers := admin.NewProfileHandlers(cfg, db, sessions)

	// Public site
	site := router.Group("/")
	site.Use(middleware.SecurityHeadersMiddleware(middleware.SiteSecurityHeadersConfig()))
	site.Use(rateLimit(defaultLimit))
	{
		site.GET("/", siteHandlers.HomeHandler())
		site.GET("/about/", siteHandlers.AboutHandler())
		site.GET("/projects/", publicProjectHandlers.ListProjectsHandler())
		site.GET("/projects/:slug/", publicProjectHandlers.ProjectDetailHandler())
		site.POST("/contact/", rateLimit(middleware.ContactRateLimitConfig()), contactFormHandlers.SubmitContactHandler())
	}

	// Admin panel
	adminPanel := router.Group("/admin-panel")
	adminPanel.Use(middleware.SecurityHeadersMiddleware(middleware.AdminSecurityHeadersConfig()))
	{
		// Open endpoints: sign-in and password reset, throttled hard because
		// they are the only places where credential guessing pays off.
		authLimit := rateLimit(middleware.AuthRateLimitConfig())
		adminPanel.GET("/login/", authHandlers.LoginPageHandler())
		adminPanel.POST("/login/", authLimit, authHandlers.LoginHandler())
		adminPanel.GET("/password-reset-request/", authHandlers.ResetRequestPageHandler())
		adminPanel.POST("/password-reset-request/", authLimit, authHandlers.ResetRequestHandler())
		adminPanel.GET("/password-reset/:token/", authHandlers.ResetConfirmPageHandler())
		adminPanel.POST("/password-reset/:token/", authLimit, authHandlers.ResetConfirmHandler())

		// Logout tolerates dead sessions, so it stays outside the gate.
		adminPanel.POST("/logout/", authHandlers.LogoutHandler())

		protected := adminPanel.Group("")
		protected.Use(middleware.SessionMiddleware(sessions, cfg.Security.TLS.Enabled))
		protected.Use(middleware.RequireStaff())
		{
			protected.GET("/", dashboardHandlers.DashboardHandler())

			protected.GET("/projects/", projectHandlers.ListProjectsHandler())
			protected.POST("/projects/", projectHandlers.CreateProjectHandler())
			protected.GET("/projects/:id/", projectHandlers.GetProjectHandler())
			protected.PUT("/projects/:id/", projectHandlers.UpdateProjectHandler())
			protected.DELETE("/projects/:id/", projectHandlers.DeleteProjectHandler())

			protected.GET("/experiments/", experimentHandlers.ListExperimentsHandler())
			protected.POST("/experiments/", experimentHandlers.CreateExperimentHandler())
			protected.GET("/experiments/:id/", experimentHandlers.GetExperimentHandler())
			protected.PUT("/experiments/:id/", experimentHandlers.UpdateExperimentHandler())
			protected.DELETE("/experiments/:id/", experimentHandlers.DeleteExperimentHandler())

			protected.GET("/skills/", skillHandlers.ListSkillsHandler())
			protected.POST("/skills/", skillHandlers.CreateSkillHandler())
			protected.GET("/skills/:id/", skillHandlers.GetSkillHandler())
			protected.PUT("/skills/:id/", skillHandlers.UpdateSkillHandler())
			protected.DELETE("/skills/:id/", skillHandlers.DeleteSkillHandler())

			protected.GET("/contacts/", contactHandlers.ListContactsHandler())
			protected.GET("/contacts/:id/", contactHandlers.GetContactHandler())
			protected.POST("/contacts/:id/read/", contactHandlers.MarkReadHandler())
			protected.POST("/contacts/:id/unread/", contactHandlers.MarkUnreadHandler())
			protected.DELETE("/contacts/:id/", contactHandlers.DeleteContactHandler())

			protected.GET("/profile/", profileHandlers.GetProfileHandler())
			protected.PUT("/profile/", profileHandlers.UpdateProfileHandler())
			protected.POST("/profile/password/", profileHandlers.ChangePasswordHandler())
		}
	}

	return router, bg
}

// @Summary      Health check
// @Description  Returns the health status of the service and its database connection.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logRequest(c, latency, path, query)
	}
}

// logRequest emits one slog record per request. Whether it renders as JSON
// or text is decided by the global handler configured in telemetry.SetupLogger.
func logRequest(c *gin.Context, latency time.Duration, path, query string) {
	requestID := c.GetString(middleware.RequestIDKey)
	slog.LogAttrs(
		c.Request.Context(),
		slog.LevelInfo,
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("status", c.Writer.Status()),
		slog.Int("size", c.Writer.Size()),
		slog.Duration("latency", latency),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", requestID),
		slog.String("user_agent", c.Request.UserAgent()),
	)
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
