package admin

import (
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/middleware"
)

var (
	userCols       = []string{"id", "username", "email", "first_name", "last_name", "password_digest", "is_staff", "is_active", "last_login", "created_at", "updated_at"}
	projectCols    = []string{"id", "owner_id", "title", "slug", "description", "category", "tech_stack", "repo_url", "live_url", "image_url", "is_published", "display_order", "created_at", "updated_at"}
	experimentCols = []string{"id", "owner_id", "title", "description", "tech_stack", "repo_url", "is_published", "created_at", "updated_at"}
	skillCols      = []string{"id", "owner_id", "name", "level", "category", "display_order", "created_at", "updated_at"}
	contactCols    = []string{"id", "name", "email", "subject", "message", "is_read", "created_at"}
	resetCols      = []string{"id", "user_id", "token", "created_at", "expires_at", "used"}
	detailsCols    = []string{"id", "user_id", "phone", "linkedin_url", "github_url", "created_at", "updated_at"}
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testUser() *models.User {
	return &models.User{
		ID:       "user-1",
		Username: "ed",
		Email:    "ed@example.com",
		IsStaff:  true,
		IsActive: true,
	}
}

// asUser injects a signed-in user the way the session middleware would, so
// handler tests do not have to mock the token lookup.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	}
}
