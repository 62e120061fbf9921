// Package handlertest holds the fixtures shared by the handler tests.
package handlertest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/session"
)

// NoOpViews renders the "error" binding when present, the template name otherwise.
type NoOpViews struct{}

// Load implements fiber.Views.
func (NoOpViews) Load() error { return nil }

// Render implements fiber.Views.
func (NoOpViews) Render(w io.Writer, name string, binding any, _ ...string) error {
	if m, ok := binding.(fiber.Map); ok {
		if msg, ok := m["error"].(string); ok && msg != "" {
			_, err := w.Write([]byte(msg))

			return err
		}
	}

	_, err := w.Write([]byte(name))

	return err
}

// OpenDB returns a migrated in-memory database with the roles seeded.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, auth.SeedRBAC(db))

	return db
}

// InitSessions switches the session store to memory.
func InitSessions(t *testing.T) {
	t.Helper()

	session.Init(nil)
}

// CreateUser registers an active member, and grants role when it is not empty.
func CreateUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()

	user, err := auth.NewLocalProvider(db).Register(email, "secret123", "")
	require.NoError(t, err)

	if role != "" {
		require.NoError(t, auth.NewService(db).AssignRoleToUser(user.ID, role))
	}

	return user
}

// SessionCookie stores a session for user and returns its cookie.
func SessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := &session.Data{User: *user}
	require.NoError(t, data.Write(id, time.Hour))

	return &http.Cookie{Name: session.CookieName, Value: id}
}

// Do sends a request with an optional JSON body and session cookie.
func Do(t *testing.T, app *fiber.App, method, path, body string, cookie *http.Cookie) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

// DecodeJSON reads a JSON object from resp and closes its body.
func DecodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

// ReadBody returns the body of resp as string and closes it.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
