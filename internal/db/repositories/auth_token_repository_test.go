package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/portfoly/portfoly/internal/db/models"
)

var authTokenCols = []string{"id", "user_id", "token", "created_at", "expires_at", "is_active", "remember_me"}

func sampleAuthTokenRow(expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(authTokenCols).
		AddRow("tok-1", "user-1", "opaque-token-value", time.Now(), expiresAt, true, false)
}

func newAuthTokenRepo(t *testing.T) (*AuthTokenRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuthTokenRepository(db), mock
}

// ---------------------------------------------------------------------------
// GetActiveByToken
// ---------------------------------------------------------------------------

func TestGetActiveByToken_Found(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("opaque-token-value").
		WillReturnRows(sampleAuthTokenRow(time.Now().Add(time.Hour)))

	tok, err := repo.GetActiveByToken(context.Background(), "opaque-token-value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok == nil {
		t.Fatal("expected token, got nil")
	}
	if tok.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", tok.UserID)
	}
}

func TestGetActiveByToken_Unknown(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(authTokenCols))

	tok, err := repo.GetActiveByToken(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != nil {
		t.Errorf("expected nil for unknown token, got %v", tok)
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreateAuthToken(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectExec("INSERT INTO auth_tokens").
		WithArgs(sqlmock.AnyArg(), "user-1", "opaque-token-value",
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tok := &models.AuthToken{
		UserID:     "user-1",
		Token:      "opaque-token-value",
		ExpiresAt:  time.Now().Add(30 * 24 * time.Hour),
		IsActive:   true,
		RememberMe: true,
	}
	if err := repo.Create(context.Background(), tok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID == "" {
		t.Error("Create should assign an ID")
	}
}

// ---------------------------------------------------------------------------
// Deactivate / DeactivateAllForUser / DeactivateExpired
// ---------------------------------------------------------------------------

func TestDeactivate_UnknownTokenIsNotAnError(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE token").
		WithArgs("never-issued").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Deactivate(context.Background(), "never-issued"); err != nil {
		t.Fatalf("deactivating an unknown token should succeed, got %v", err)
	}
}

func TestDeactivateAllForUser(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeactivateAllForUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeactivateExpired(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE is_active = TRUE AND expires_at").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeactivateExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("swept = %d, want 2", n)
	}
}

func TestCountActive(t *testing.T) {
	repo, mock := newAuthTokenRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM auth_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("CountActive = %d, want 4", n)
	}
}
