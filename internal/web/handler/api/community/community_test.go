package community_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblia-online/biblia/internal/auth"
	store "github.com/biblia-online/biblia/internal/db/controller/community"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/api/community"
	"github.com/biblia-online/biblia/internal/web/handler/handlertest"
)

func TestCommunity(t *testing.T) {
	handlertest.InitSessions(t)

	db := handlertest.OpenDB(t)
	require.NoError(t, store.EnsureCategories(db, []models.CommunityCategory{
		{Name: "Estudo Bíblico"}, {Name: "Testemunhos"},
	}))

	ana := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "ana@example.com", ""))
	joao := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "joao@example.com", ""))
	admin := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "admin@example.com", models.RoleAdmin))

	app := fiber.New()
	require.NoError(t, (&community.Service{}).Init(app, &handler.Deps{DB: db, Auth: auth.NewService(db)}))

	resp := handlertest.Do(t, app, http.MethodPost, community.Path+"/posts",
		`{"category":"Estudo Bíblico","title":"Amor","content":"<script>x</script>"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, community.Path+"/posts",
		`{"category":"Estudo Bíblico","title":"Amor","content":"<script>x</script>"}`, ana)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "content is empty once sanitised")
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, community.Path+"/posts",
		`{"category":"Política","title":"Amor","content":"texto"}`, ana)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, community.Path+"/posts",
		`{"category":"Estudo Bíblico","title":"Sobre o amor","content":"O que acham?",
		"verse":{"text":"Porque Deus amou o mundo","reference":"João 3:16","version":"ARA"}}`, ana)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	post, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, post["content"], "Porque Deus amou o mundo")
	assert.Contains(t, post["content"], "João 3:16 (ARA)")
	assert.Contains(t, post["content"], "O que acham?")

	postID, ok := post["id"].(string)
	require.True(t, ok)

	resp = handlertest.Do(t, app, http.MethodPost, community.Path+"/posts",
		`{"category":"Testemunhos","title":"Minha história","content":"Graça"}`, joao)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("listing", func(t *testing.T) {
		resp := handlertest.Do(t, app, http.MethodGet, community.Path+"/posts?page_size=1&page=1", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := handlertest.DecodeJSON(t, resp)
		assert.Len(t, out["data"], 1)

		pagination, ok := out["pagination"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 2, pagination["total"], 0)
		assert.InDelta(t, 2, pagination["totalPages"], 0)
		assert.Equal(t, true, pagination["hasNext"])

		resp = handlertest.Do(t, app, http.MethodGet, community.Path+"/posts?category=Testemunhos", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, handlertest.DecodeJSON(t, resp)["data"], 1)

		resp = handlertest.Do(t, app, http.MethodGet, community.Path+"/posts/search?q=AMOR", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, handlertest.DecodeJSON(t, resp)["data"], 1)

		resp = handlertest.Do(t, app, http.MethodGet, community.Path+"/categories", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, handlertest.DecodeJSON(t, resp)["data"], 2)

		resp = handlertest.Do(t, app, http.MethodGet, community.Path+"/posts/missing", "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("comments and likes", func(t *testing.T) {
		resp := handlertest.Do(t, app, http.MethodPost, community.Path+"/posts/"+postID+"/comments",
			`{"content":"Amém"}`, joao)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		comment, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
		require.True(t, ok)

		commentID, ok := comment["id"].(string)
		require.True(t, ok)

		resp = handlertest.Do(t, app, http.MethodPost, community.Path+"/posts/"+postID+"/like", "", joao)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.InDelta(t, 1, handlertest.DecodeJSON(t, resp)["likes_count"], 0)

		resp = handlertest.Do(t, app, http.MethodPost, community.Path+"/comments/"+commentID+"/like", "", ana)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.InDelta(t, 1, handlertest.DecodeJSON(t, resp)["likes_count"], 0)

		resp = handlertest.Do(t, app, http.MethodGet, community.Path+"/posts/"+postID, "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		post, ok := handlertest.DecodeJSON(t, resp)["data"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 1, post["comments_count"], 0)

		resp = handlertest.Do(t, app, http.MethodDelete, community.Path+"/comments/"+commentID, "", ana)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodDelete, community.Path+"/comments/"+commentID, "", joao)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodGet, community.Path+"/posts/"+postID+"/comments", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, handlertest.DecodeJSON(t, resp)["data"])
	})

	t.Run("moderation", func(t *testing.T) {
		resp := handlertest.Do(t, app, http.MethodDelete, community.Path+"/posts/"+postID, "", joao)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		resp = handlertest.Do(t, app, http.MethodDelete, community.Path+"/posts/"+postID, "", admin)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	})
}
