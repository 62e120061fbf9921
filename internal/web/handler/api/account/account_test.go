package account_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/api/account"
	"github.com/biblia-online/biblia/internal/web/handler/handlertest"
	"github.com/biblia-online/biblia/internal/web/session"
)

func setupApp(t *testing.T, registration bool) (*fiber.App, *gorm.DB) {
	t.Helper()

	handlertest.InitSessions(t)
	db := handlertest.OpenDB(t)

	cfg := &config.Config{DevMode: true}
	cfg.Auth.LocalDB.Enabled = true
	cfg.Auth.Registration = registration

	app := fiber.New()
	require.NoError(t, (&account.Service{}).Init(app, &handler.Deps{Config: cfg, DB: db, Auth: auth.NewService(db)}))

	return app, db
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}

	require.Fail(t, "no session cookie")

	return nil
}

func TestRegisterAndProfile(t *testing.T) {
	app, _ := setupApp(t, true)

	resp := handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/register",
		`{"email":"Ana@Example.com","password":"segredo1"}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	user, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "ana", user["username"])
	assert.NotContains(t, user, "password")

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/register",
		`{"email":"ana@example.com","password":"segredo1"}`, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/register",
		`{"email":"nao-e-email","password":"1"}`, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request", handlertest.DecodeJSON(t, resp)["error"])

	resp = handlertest.Do(t, app, http.MethodGet, account.ProfilePath, "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := handlertest.DecodeJSON(t, resp)
	assert.Contains(t, out["permissions"], auth.PermCommunityPost)
	assert.NotContains(t, out["permissions"], auth.PermBibleImport)

	resp = handlertest.Do(t, app, http.MethodPut, account.ProfilePath,
		`{"username":"Ana Maria","avatar_url":"https://example.com/a.png"}`, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ana Maria", updated["username"])

	resp = handlertest.Do(t, app, http.MethodPut, account.ProfilePath+"/password",
		`{"old_password":"errada","new_password":"novasenha"}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPut, account.ProfilePath+"/password",
		`{"old_password":"segredo1","new_password":"novasenha"}`, cookie)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/logout", "", cookie)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodGet, account.ProfilePath, "", cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRegistrationDisabled(t *testing.T) {
	app, _ := setupApp(t, false)

	resp := handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/register",
		`{"email":"ana@example.com","password":"segredo1"}`, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginWithTOTP(t *testing.T) {
	app, db := setupApp(t, false)
	user := handlertest.CreateUser(t, db, "joao@example.com", "")

	resp := handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/login",
		`{"email":"joao@example.com","password":"errada"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/login",
		`{"email":"joao@example.com","password":"secret123"}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, account.ProfilePath+"/totp", "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	enrollment, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
	require.True(t, ok)

	secret, ok := enrollment["secret"].(string)
	require.True(t, ok)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	resp = handlertest.Do(t, app, http.MethodPost, account.ProfilePath+"/totp/confirm", `{"code":"`+code+`"}`, cookie)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/login",
		`{"email":"joao@example.com","password":"secret123"}`, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, true, handlertest.DecodeJSON(t, resp)["totp_required"])

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/login",
		`{"email":"joao@example.com","password":"secret123","code":"`+code+`"}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, auth.NewLocalProvider(db).DeactivateUser(user.ID))

	resp = handlertest.Do(t, app, http.MethodPost, account.AuthPath+"/login",
		`{"email":"joao@example.com","password":"secret123","code":"`+code+`"}`, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
