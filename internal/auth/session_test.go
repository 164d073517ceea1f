package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
)

func userModel() *models.User {
	return &models.User{
		ID:             "user-1",
		Username:       "ed",
		PasswordDigest: HashPassword("hunter2"),
		IsActive:       true,
	}
}

var (
	userCols      = []string{"id", "username", "email", "first_name", "last_name", "password_digest", "is_staff", "is_active", "last_login", "created_at", "updated_at"}
	authTokenCols = []string{"id", "user_id", "token", "created_at", "expires_at", "is_active", "remember_me"}
	resetCols     = []string{"id", "user_id", "token", "created_at", "expires_at", "used"}
)

func userRow(active bool) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow("user-1", "ed", "ed@example.com", "Ed", "Moran",
			HashPassword("hunter2"), true, active, nil, time.Now(), time.Now())
}

func newService(t *testing.T) (*SessionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := NewSessionService(
		repositories.NewUserRepository(db),
		repositories.NewAuthTokenRepository(db),
		repositories.NewPasswordResetTokenRepository(db),
	)
	return svc, mock
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_Success(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ed@example.com").
		WillReturnRows(userRow(true))
	mock.ExpectExec("INSERT INTO auth_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, token, err := svc.Login(context.Background(), "ed@example.com", "hunter2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %s, want user-1", user.ID)
	}
	if len(token.Token) != 43 {
		t.Errorf("token length = %d, want 43", len(token.Token))
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl < 11*time.Hour || ttl > 13*time.Hour {
		t.Errorf("session TTL = %v, want about 12h", ttl)
	}
}

func TestLogin_RememberMeExtendsTTL(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ed@example.com").
		WillReturnRows(userRow(true))
	mock.ExpectExec("INSERT INTO auth_tokens").
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, token, err := svc.Login(context.Background(), "ed@example.com", "hunter2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !token.RememberMe {
		t.Error("RememberMe = false, want the choice recorded on the token")
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl < 29*24*time.Hour || ttl > 31*24*time.Hour {
		t.Errorf("remember-me TTL = %v, want about 30 days", ttl)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever", false)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ed@example.com").
		WillReturnRows(userRow(true))

	_, _, err := svc.Login(context.Background(), "ed@example.com", "wrong", false)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_InactiveUserSameError(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ed@example.com").
		WillReturnRows(userRow(false))

	// Correct password, deactivated account: indistinguishable from a bad password.
	_, _, err := svc.Login(context.Background(), "ed@example.com", "hunter2", false)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidate_LiveToken(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("tok-value").
		WillReturnRows(sqlmock.NewRows(authTokenCols).
			AddRow("tok-1", "user-1", "tok-value", time.Now(), time.Now().Add(time.Hour), true, false))
	mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRow(true))

	user, err := svc.Validate(context.Background(), "tok-value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "ed" {
		t.Errorf("Username = %s, want ed", user.Username)
	}
}

func TestValidate_UnknownToken(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(authTokenCols))

	_, err := svc.Validate(context.Background(), "nope")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestValidate_ExpiredTokenIsDeactivated(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows(authTokenCols).
			AddRow("tok-1", "user-1", "stale", time.Now().Add(-24*time.Hour), time.Now().Add(-time.Hour), true, false))
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE token").
		WithArgs("stale").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Validate(context.Background(), "stale")
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expired token was not deactivated: %v", err)
	}
}

func TestValidate_DeactivatedUserKillsToken(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM auth_tokens.*WHERE token").
		WithArgs("tok-value").
		WillReturnRows(sqlmock.NewRows(authTokenCols).
			AddRow("tok-1", "user-1", "tok-value", time.Now(), time.Now().Add(time.Hour), true, false))
	mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRow(false))
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE token").
		WithArgs("tok-value").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Validate(context.Background(), "tok-value")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestLogout_EmptyTokenIsNoop(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("logout with no token should succeed, got %v", err)
	}
}

func TestLogout_UnknownToken(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE token").
		WithArgs("stale").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.Logout(context.Background(), "stale"); err != nil {
		t.Errorf("logout with an unknown token should succeed, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Password reset
// ---------------------------------------------------------------------------

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, token, err := svc.RequestReset(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if user != nil || token != "" {
		t.Error("unknown email must not produce a token")
	}
}

func TestRequestReset_KnownEmail(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ed@example.com").
		WillReturnRows(userRow(true))
	mock.ExpectExec("INSERT INTO password_reset_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, token, err := svc.RequestReset(context.Background(), "ed@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || len(token) != 43 {
		t.Errorf("expected user and 43-char token, got user=%v token=%q", user, token)
	}
}

func TestConsumeReset_Success(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM password_reset_tokens.*WHERE token").
		WithArgs("reset-value").
		WillReturnRows(sqlmock.NewRows(resetCols).
			AddRow("rt-1", "user-1", "reset-value", time.Now(), time.Now().Add(time.Hour), false))
	mock.ExpectExec("UPDATE users SET password_digest").
		WithArgs("user-1", HashPassword("newpassword"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE password_reset_tokens SET used = TRUE").
		WithArgs("rt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := svc.ConsumeReset(context.Background(), "reset-value", "newpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("consume sequence incomplete: %v", err)
	}
}

func TestConsumeReset_AlreadyUsed(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM password_reset_tokens.*WHERE token").
		WithArgs("spent").
		WillReturnRows(sqlmock.NewRows(resetCols).
			AddRow("rt-1", "user-1", "spent", time.Now(), time.Now().Add(time.Hour), true))

	err := svc.ConsumeReset(context.Background(), "spent", "newpassword")
	if !errors.Is(err, ErrTokenUsed) {
		t.Errorf("err = %v, want ErrTokenUsed", err)
	}
}

func TestConsumeReset_Expired(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM password_reset_tokens.*WHERE token").
		WithArgs("old").
		WillReturnRows(sqlmock.NewRows(resetCols).
			AddRow("rt-1", "user-1", "old", time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour), false))

	err := svc.ConsumeReset(context.Background(), "old", "newpassword")
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestConsumeReset_Unknown(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SELECT.*FROM password_reset_tokens.*WHERE token").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(resetCols))

	err := svc.ConsumeReset(context.Background(), "nope", "newpassword")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

// ---------------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------------

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, _ := newService(t)

	user := userModel()
	err := svc.ChangePassword(context.Background(), user, "wrong", "newpassword")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword_Success(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectExec("UPDATE users SET password_digest").
		WithArgs("user-1", HashPassword("newpassword"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE auth_tokens SET is_active = FALSE WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := userModel()
	if err := svc.ChangePassword(context.Background(), user, "hunter2", "newpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("change-password sequence incomplete: %v", err)
	}
}
