package scriptureapi_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	controller "github.com/biblia-online/biblia/internal/db/controller/scriptureapi"
	"github.com/biblia-online/biblia/internal/db/controller/setting"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/admin/settings/scriptureapi"
	"github.com/biblia-online/biblia/internal/web/handler/handlertest"
)

func post(t *testing.T, app *fiber.App, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, scriptureapi.Path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.AddCookie(cookie)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestSettings(t *testing.T) {
	handlertest.InitSessions(t)

	db := handlertest.OpenDB(t)
	cfg := &config.Config{Scripture: config.Scripture{BaseURL: "https://api.example.com/v1", DefaultBibleID: "b1"}}
	client := scripture.New(cfg.Scripture)

	app := fiber.New(fiber.Config{Views: handlertest.NoOpViews{}})
	require.NoError(t, (&scriptureapi.Service{}).Init(app, &handler.Deps{
		Config: cfg, DB: db, Auth: auth.NewService(db), Scripture: client,
	}))

	adminCookie := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "admin@example.com", models.RoleAdmin))
	memberCookie := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "membro@example.com", ""))

	resp := handlertest.Do(t, app, http.MethodGet, scriptureapi.Path, "", memberCookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodGet, scriptureapi.Path, "", adminCookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, scriptureapi.TemplateName, handlertest.ReadBody(t, resp))

	resp = post(t, app, url.Values{"base_url": {"not a url"}, "api_key": {"short"}}, adminCookie)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Campos inválidos", handlertest.ReadBody(t, resp))

	resp = post(t, app, url.Values{
		"base_url":         {"https://api.scripture.example.com/v1"},
		"api_key":          {"0123456789abcdef"},
		"default_bible_id": {"b2"},
	}, adminCookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "b2", client.DefaultBibleID())

	saved := &controller.Settings{}
	require.NoError(t, saved.Load(db))
	assert.Equal(t, "https://api.scripture.example.com/v1", saved.BaseURL)
	assert.Equal(t, "0123456789abcdef", saved.APIKey)

	req := httptest.NewRequest(http.MethodPost, scriptureapi.ResetPath, nil)
	req.AddCookie(adminCookie)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, scriptureapi.Path, resp.Header.Get(fiber.HeaderLocation))
	assert.Equal(t, "b1", client.DefaultBibleID())
	assert.ErrorIs(t, saved.Load(db), setting.ErrSettingNotFound)
}
