package library_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblia-online/biblia/internal/db/controller/searchhistory"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/api/library"
	"github.com/biblia-online/biblia/internal/web/handler/handlertest"
)

func TestLibrary(t *testing.T) {
	handlertest.InitSessions(t)

	db := handlertest.OpenDB(t)
	ana := handlertest.CreateUser(t, db, "ana@example.com", "")
	joao := handlertest.CreateUser(t, db, "joao@example.com", "")
	anaCookie := handlertest.SessionCookie(t, ana)
	joaoCookie := handlertest.SessionCookie(t, joao)

	app := fiber.New()
	require.NoError(t, (&library.Service{}).Init(app, &handler.Deps{DB: db}))

	t.Run("requires a session", func(t *testing.T) {
		resp := handlertest.Do(t, app, http.MethodGet, library.FavoritesPath, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("favorites", func(t *testing.T) {
		resp := handlertest.Do(t, app, http.MethodPost, library.FavoritesPath,
			`{"reference":"1 Coríntios 13:4","version":"ARA","text":"O amor é paciente"}`, anaCookie)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		saved, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "1 Coríntios", saved["book"])
		assert.InDelta(t, 13, saved["chapter"], 0)
		assert.InDelta(t, 4, saved["verse"], 0)

		resp = handlertest.Do(t, app, http.MethodPost, library.FavoritesPath, `{"reference":"Salmos"}`, anaCookie)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()

		id, ok := saved["id"].(string)
		require.True(t, ok)

		resp = handlertest.Do(t, app, http.MethodDelete, library.FavoritesPath+"/"+id, "", joaoCookie)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "only the owner deletes")
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodGet, library.FavoritesPath, "", anaCookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, handlertest.DecodeJSON(t, resp)["data"], 1)

		resp = handlertest.Do(t, app, http.MethodDelete, library.FavoritesPath+"/"+id, "", anaCookie)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("highlights", func(t *testing.T) {
		resp := handlertest.Do(t, app, http.MethodPost, library.HighlightsPath,
			`{"verse_id":"JHN.3.16","reference":"João 3:16","color":"yellow"}`, anaCookie)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		created, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
		require.True(t, ok)

		resp = handlertest.Do(t, app, http.MethodPost, library.HighlightsPath,
			`{"verse_id":"JHN.3.17","color":"orange"}`, anaCookie)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodPost, library.HighlightsPath,
			`{"verse_id":"GEN.1.1","color":"blue"}`, anaCookie)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodGet, library.HighlightsPath+"?chapter=JHN.3", "", anaCookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, handlertest.DecodeJSON(t, resp)["data"], 1)

		resp = handlertest.Do(t, app, http.MethodGet, library.HighlightsPath, "", anaCookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, handlertest.DecodeJSON(t, resp)["data"], 2)

		path := fmt.Sprintf("%s/%v", library.HighlightsPath, created["id"])

		resp = handlertest.Do(t, app, http.MethodDelete, library.HighlightsPath+"/abc", "", anaCookie)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodDelete, path, "", anaCookie)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("searches", func(t *testing.T) {
		require.NoError(t, searchhistory.Record(db, ana.ID, "amor", "ARA"))
		require.NoError(t, searchhistory.Record(db, joao.ID, "fé", "ARA"))

		resp := handlertest.Do(t, app, http.MethodGet, library.SearchesPath, "", anaCookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		data, ok := handlertest.DecodeJSON(t, resp)["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)
		assert.Equal(t, "amor", data[0].(map[string]any)["query"])
	})
}
