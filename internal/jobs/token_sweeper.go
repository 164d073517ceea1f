// Package jobs contains background loops started alongside the HTTP server.
//
// token_sweeper.go implements the TokenSweeper job, which periodically
// deactivates expired session tokens. Expiry is also enforced lazily on every
// request, so the sweeper is pure housekeeping: it keeps the auth_tokens table
// from accumulating dead rows and refreshes the active-session gauge. The job
// is a no-op when auth.sweep_interval_hours is zero, so it is always safe to
// start regardless of deployment environment.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/portfoly/portfoly/internal/config"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/telemetry"
)

// TokenSweeper periodically deactivates expired session tokens.
type TokenSweeper struct {
	tokens   *repositories.AuthTokenRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewTokenSweeper creates a new TokenSweeper.
// cfg.SweepIntervalHours controls how often the sweep runs (default 12h).
func NewTokenSweeper(tokens *repositories.AuthTokenRepository, cfg *config.AuthConfig) *TokenSweeper {
	hours := cfg.SweepIntervalHours
	if hours < 0 {
		hours = 12
	}
	return &TokenSweeper{
		tokens:   tokens,
		interval: time.Duration(hours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background sweep loop.
// It runs an initial sweep immediately, then repeats on the configured interval.
// The loop exits when ctx is cancelled or Stop() is called.
func (s *TokenSweeper) Start(ctx context.Context) {
	if s.interval == 0 {
		slog.Info("token sweeper: disabled (auth.sweep_interval_hours=0)")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("token sweeper started", "interval", s.interval)

	// Run once immediately on startup
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			slog.Info("token sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("token sweeper context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (s *TokenSweeper) Stop() {
	close(s.stopChan)
}

// sweep deactivates expired tokens and refreshes the active-session gauge.
func (s *TokenSweeper) sweep(ctx context.Context) {
	swept, err := s.tokens.DeactivateExpired(ctx)
	if err != nil {
		slog.Error("token sweeper: failed to deactivate expired tokens", "error", err)
		return
	}
	if swept > 0 {
		slog.Info("token sweeper: deactivated expired tokens", "count", swept)
	}

	active, err := s.tokens.CountActive(ctx)
	if err != nil {
		slog.Warn("token sweeper: failed to count active sessions", "error", err)
		return
	}
	telemetry.ActiveSessionsGauge.Set(float64(active))
}
