package admin_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/api/admin"
	"github.com/biblia-online/biblia/internal/web/handler/handlertest"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	handlertest.InitSessions(t)
	db := handlertest.OpenDB(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/bibles/b1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":"b1","name":"Bíblia Livre","abbreviationLocal":"BL","language":{"id":"por"}}}`)
	})
	mux.HandleFunc("/bibles/b1/books", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":"GEN","name":"Gênesis","abbreviation":"Gn"},{"id":"EXO","name":"Êxodo","abbreviation":"Ex"}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	remote := scripture.New(config.Scripture{BaseURL: srv.URL, APIKey: "k", DefaultBibleID: "b1"})

	app := fiber.New()
	require.NoError(t, (&admin.Service{}).Init(app, &handler.Deps{
		DB:       db,
		Auth:     auth.NewService(db),
		Importer: importer.New(db, remote, 1),
	}))

	return app, db
}

func TestInitNil(t *testing.T) {
	require.Error(t, (&admin.Service{}).Init(fiber.New(), &handler.Deps{}))
}

func TestImport(t *testing.T) {
	app, db := setupApp(t)

	adminCookie := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "admin@example.com", models.RoleAdmin))
	memberCookie := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "membro@example.com", ""))

	resp := handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/books", `{"bibleId":"b1"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/books", `{"bibleId":"b1"}`, memberCookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/books", `{"bibleId":"b1"}`, adminCookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := handlertest.DecodeJSON(t, resp)
	assert.Equal(t, true, out["success"])
	assert.InDelta(t, 2, out["count"], 0)

	var books int64
	require.NoError(t, db.Model(&models.BibleBook{}).Count(&books).Error)
	assert.Equal(t, int64(2), books)

	resp = handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/chapters", `{"bibleId":"b1"}`, adminCookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/psalms", `{"bibleId":"b1"}`, adminCookie)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/books", `{}`, adminCookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestImportNeedsReadAndImport(t *testing.T) {
	app, db := setupApp(t)

	var importPerm, readPerm models.Permission
	require.NoError(t, db.Where("name = ?", auth.PermBibleImport).First(&importPerm).Error)
	require.NoError(t, db.Where("name = ?", auth.PermBibleRead).First(&readPerm).Error)

	role := models.Role{Name: "importador", Description: "Imports only"}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: importPerm.ID}).Error)

	cookie := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "importador@example.com", role.Name))

	resp := handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/books", `{"bibleId":"b1"}`, cookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: readPerm.ID}).Error)

	resp = handlertest.Do(t, app, http.MethodPost, admin.ImportPath+"/books", `{"bibleId":"b1"}`, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestResetPassword(t *testing.T) {
	app, db := setupApp(t)

	cookie := handlertest.SessionCookie(t, handlertest.CreateUser(t, db, "admin@example.com", models.RoleAdmin))
	member := handlertest.CreateUser(t, db, "membro@example.com", "")
	passwordPath := admin.UsersPath + "/" + strconv.FormatUint(member.ID, 10) + "/password"

	resp := handlertest.Do(t, app, http.MethodPost, passwordPath, `{"password":"novasenha"}`,
		handlertest.SessionCookie(t, member))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, passwordPath, `{"password":"abc"}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPost, passwordPath, `{"password":"novasenha"}`, cookie)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	local := auth.NewLocalProvider(db)

	_, err := local.Authenticate("membro@example.com", "novasenha")
	require.NoError(t, err)

	_, err = local.Authenticate("membro@example.com", "secret123")
	require.Error(t, err)

	resp = handlertest.Do(t, app, http.MethodPost, admin.UsersPath+"/999/password", `{"password":"novasenha"}`, cookie)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUsers(t *testing.T) {
	app, db := setupApp(t)

	root := handlertest.CreateUser(t, db, "admin@example.com", models.RoleAdmin)
	cookie := handlertest.SessionCookie(t, root)
	member := handlertest.CreateUser(t, db, "membro@example.com", "")
	memberPath := admin.UsersPath + "/" + strconv.FormatUint(member.ID, 10)

	resp := handlertest.Do(t, app, http.MethodGet, admin.UsersPath, "", handlertest.SessionCookie(t, member))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodGet, admin.UsersPath+"?pageSize=1", "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := handlertest.DecodeJSON(t, resp)
	assert.Len(t, out["data"], 1)

	page, ok := out["pagination"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2, page["total"], 0)
	assert.Equal(t, true, page["hasNext"])

	resp = handlertest.Do(t, app, http.MethodGet, admin.UsersPath+"?email=MEMBRO@example.com", "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	byEmail, ok := handlertest.DecodeJSON(t, resp)["data"].([]any)
	require.True(t, ok)
	require.Len(t, byEmail, 1)
	assert.InDelta(t, float64(member.ID), byEmail[0].(map[string]any)["id"], 0)

	resp = handlertest.Do(t, app, http.MethodGet, admin.UsersPath+"?email=ninguem@example.com", "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, handlertest.DecodeJSON(t, resp)["data"])

	resp = handlertest.Do(t, app, http.MethodPut, memberPath+"/active", `{"active":false}`, cookie)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodGet, admin.UsersPath+"?active=false", "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	inactive, ok := handlertest.DecodeJSON(t, resp)["data"].([]any)
	require.True(t, ok)
	require.Len(t, inactive, 1)
	assert.Equal(t, "membro@example.com", inactive[0].(map[string]any)["email"])

	resp = handlertest.Do(t, app, http.MethodPut,
		admin.UsersPath+"/"+strconv.FormatUint(root.ID, 10)+"/active", `{"active":false}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPut, admin.UsersPath+"/999/active", `{"active":true}`, cookie)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = handlertest.Do(t, app, http.MethodPut, memberPath+"/role", `{"role":"`+models.RoleAdmin+`"}`, cookie)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	ok, err := auth.NewService(db).HasPermission(member.ID, auth.PermAdminUsers)
	require.NoError(t, err)
	assert.False(t, ok, "inactive accounts hold no permissions")

	resp = handlertest.Do(t, app, http.MethodPut, memberPath+"/role", `{"role":"bispo"}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
