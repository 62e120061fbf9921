package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/session"
)

func TestGenerateSessionID(t *testing.T) {
	a, err := session.GenerateSessionID()
	require.NoError(t, err)

	b, err := session.GenerateSessionID()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestStartCurrentEnd(t *testing.T) {
	session.Init(nil)

	user := models.User{ID: 7, Email: "ana@example.com", Username: "ana", Active: true}

	app := fiber.New()
	app.Post("/start", func(c *fiber.Ctx) error {
		return session.Start(c, &session.Data{User: user, IDToken: "tok"}, time.Hour, false)
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		d, ok := session.Current(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		assert.Equal(t, "7", c.Locals(session.LocalUserID))

		return c.JSON(d)
	})
	app.Post("/rename", func(c *fiber.Ctx) error {
		renamed := user
		renamed.Username = "Ana Maria"

		return session.Refresh(c, renamed, time.Hour)
	})
	app.Post("/end", func(c *fiber.Ctx) error {
		return session.End(c, false)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/start", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}

	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)

	do := func(method, path string) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie.Value})

		r, err := app.Test(req, -1)
		require.NoError(t, err)

		return r
	}

	resp = do(http.MethodGet, "/me")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(http.MethodPost, "/rename")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var stored session.Data
	require.NoError(t, stored.Read(cookie.Value))
	assert.Equal(t, "Ana Maria", stored.User.Username)
	assert.Equal(t, "tok", stored.IDToken)

	resp = do(http.MethodPost, "/end")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(http.MethodGet, "/me")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	require.ErrorIs(t, stored.Read(cookie.Value), session.ErrNoSession)
}

func TestCurrentWithoutCookie(t *testing.T) {
	session.Init(nil)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := session.Current(c)
		assert.False(t, ok)

		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
}
