package functions_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/legacy"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/functions"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func setupLegacyDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openSQLite(t)

	stmts := []string{
		"CREATE TABLE bible_versions (id INTEGER PRIMARY KEY, name TEXT, abbreviation TEXT, language TEXT)",
		"CREATE TABLE tbbiblia_pt (id INTEGER PRIMARY KEY, liv INTEGER, livro TEXT, cap INTEGER, ver INTEGER, texto TEXT)",
		"CREATE TABLE tbbiblia_en (id INTEGER PRIMARY KEY, liv INTEGER, livro TEXT, cap INTEGER, ver INTEGER, texto TEXT)",
		"INSERT INTO bible_versions VALUES (1, 'Almeida Revista', 'ARA', 'pt')",
		`INSERT INTO tbbiblia_pt VALUES
			(1, 43, 'João', 3, 16, 'Porque Deus amou o mundo de tal maneira.'),
			(2, 43, 'João', 3, 17, 'Porque Deus enviou o seu Filho ao mundo.')`,
	}

	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

// fakeUpstream fakes both the scripture api and bible-api.com.
type fakeUpstream struct {
	mu         sync.Mutex
	verseQuery url.Values
}

func (u *fakeUpstream) lastVerseQuery() url.Values {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.verseQuery
}

func upstream(t *testing.T) (*httptest.Server, *fakeUpstream) {
	t.Helper()

	up := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/bibles", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":"b1","name":"Bíblia Livre"}]}`)
	})
	mux.HandleFunc("/bibles/b1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":"b1","name":"Bíblia Livre","abbreviationLocal":"BL","language":{"id":"por"}}}`)
	})
	mux.HandleFunc("/bibles/b1/books", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":"JHN","name":"João","abbreviation":"Jo"}]}`)
	})
	mux.HandleFunc("/bibles/b1/verses/JHN.3.16", func(w http.ResponseWriter, r *http.Request) {
		up.mu.Lock()
		up.verseQuery = r.URL.Query()
		up.mu.Unlock()

		_, _ = io.WriteString(w, `{"data":{"id":"JHN.3.16","reference":"João 3:16","content":"Porque Deus amou"}}`)
	})
	mux.HandleFunc("/bibles/b1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "amor", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"data":{"query":"amor","total":0,"verses":[]}}`)
	})
	mux.HandleFunc("/bibles/bad/books", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"forbidden"}`)
	})
	mux.HandleFunc("/simple/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/simple/") {
		case "João 3:16":
			_, _ = io.WriteString(w, `{"reference":"João 3:16","text":"Porque Deus amou o mundo","translation_id":"almeida"}`)
		case "Nada 1:1":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, up
}

func setupApp(t *testing.T) (*fiber.App, *fakeUpstream) {
	t.Helper()

	srv, up := upstream(t)

	primary := openSQLite(t)
	require.NoError(t, primary.AutoMigrate(models.All()...))

	sc := scripture.New(config.Scripture{BaseURL: srv.URL, APIKey: "test-key"})
	deps := &handler.Deps{
		Scripture: sc,
		Verses:    versesapi.New(config.SimpleVerse{BaseURL: srv.URL + "/simple"}),
		Legacy:    legacy.New(setupLegacyDB(t)),
		Importer:  importer.New(primary, sc, 2),
	}

	app := fiber.New()
	require.NoError(t, (&functions.Service{}).Init(app, deps))

	return app, up
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

func TestInitNil(t *testing.T) {
	require.Error(t, (&functions.Service{}).Init(nil, &handler.Deps{}))
	require.Error(t, (&functions.Service{}).Init(fiber.New(), nil))
}

func TestBibleAPI(t *testing.T) {
	app, up := setupApp(t)

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, out map[string]any)
	}{
		{
			name:   "invalid body",
			body:   `{`,
			status: fiber.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Invalid request body", out["error"])
			},
		},
		{
			name:   "missing endpoint",
			body:   `{"params":{}}`,
			status: fiber.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Missing endpoint parameter", out["error"])
			},
		},
		{
			name:   "unsupported endpoint",
			body:   `{"endpoint":"/audio"}`,
			status: fiber.StatusNotFound,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Endpoint não suportado", out["error"])
			},
		},
		{
			name:   "versions",
			body:   `{"endpoint":"/versions"}`,
			status: fiber.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				assert.Len(t, out["data"], 1)
			},
		},
		{
			name:   "books without bible id",
			body:   `{"endpoint":"/books","params":{}}`,
			status: fiber.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Parâmetro bibleId é obrigatório", out["error"])
			},
		},
		{
			name:   "chapters without book id",
			body:   `{"endpoint":"/chapters","params":{"bibleId":"b1"}}`,
			status: fiber.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Parâmetros bibleId e bookId são obrigatórios", out["error"])
			},
		},
		{
			name:   "verse with content",
			body:   `{"endpoint":"/verse","params":{"bibleId":"b1","verseId":"JHN.3.16"}}`,
			status: fiber.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				data, ok := out["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "Porque Deus amou", data["content"])
				assert.Equal(t, "true", up.lastVerseQuery().Get("include-content"))
			},
		},
		{
			name:   "search with numeric limit",
			body:   `{"endpoint":"/search","params":{"bibleId":"b1","query":"amor","limit":5,"offset":0}}`,
			status: fiber.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				assert.Contains(t, out, "data")
			},
		},
		{
			name:   "upstream error keeps status and body",
			body:   `{"endpoint":"/books","params":{"bibleId":"bad"}}`,
			status: fiber.StatusForbidden,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Erro ao acessar a API da Bíblia", out["error"])
				assert.Equal(t, map[string]any{"message": "forbidden"}, out["details"])
			},
		},
		{
			name:   "simple verse",
			body:   `{"endpoint":"/simple-verse","params":{"reference":"João 3:16"}}`,
			status: fiber.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "João 3:16", out["reference"])
			},
		},
		{
			name:   "simple verse without reference",
			body:   `{"endpoint":"/simple-verse","params":{}}`,
			status: fiber.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Parâmetro reference é obrigatório", out["error"])
			},
		},
		{
			name:   "simple verse not found",
			body:   `{"endpoint":"/simple-verse","params":{"reference":"Nada 1:1"}}`,
			status: fiber.StatusNotFound,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Versículo não encontrado", out["error"])
				assert.Equal(t, "A referência bíblica informada não foi encontrada", out["details"])
			},
		},
		{
			name:   "simple verse upstream status",
			body:   `{"endpoint":"/simple-verse","params":{"reference":"Outro 1:1"}}`,
			status: fiber.StatusBadGateway,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Status: 502", out["details"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := post(t, app, functions.BibleAPIPath, tt.body)
			assert.Equal(t, tt.status, status)
			tt.check(t, out)
		})
	}
}

func TestBibleMySQL(t *testing.T) {
	app, _ := setupApp(t)

	status, out := post(t, app, functions.BibleMySQLPath, `{"action":"getVersions","params":{}}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])
	assert.Len(t, out["data"], 1)

	status, out = post(t, app, functions.BibleMySQLPath, `{"action":"getChapters","params":{"bookId":43}}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []any{map[string]any{"id": "43-3", "number": float64(3), "book_id": float64(43)}}, out["data"])

	status, out = post(t, app, functions.BibleMySQLPath, `{"action":"getVerses","params":{"chapterId":"43-3"}}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, out["data"], 2)

	status, out = post(t, app, functions.BibleMySQLPath, `{"action":"search","params":{"query":"mundo","versionId":"pt"}}`)
	assert.Equal(t, fiber.StatusOK, status)

	data, ok := out["data"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2, data["total"], 0)

	status, out = post(t, app, functions.BibleMySQLPath, `{"action":"dropTables"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Ação não implementada: dropTables", out["error"])
}

func TestBibleMySQLDisabled(t *testing.T) {
	app := fiber.New()
	require.NoError(t, (&functions.Service{}).Init(app, &handler.Deps{Legacy: legacy.New(nil)}))

	status, out := post(t, app, functions.BibleMySQLPath, `{"action":"getVersions"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, legacy.ErrDisabled.Error(), out["error"])
}

func TestBibleImport(t *testing.T) {
	app, up := setupApp(t)

	status, out := post(t, app, functions.BibleImportPath+"?action=drop", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"], "Ação inválida")

	status, out = post(t, app, functions.BibleImportPath+"?action=import_books", `{"bibleId":"b1"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])
	assert.InDelta(t, 1, out["count"], 0)

	status, out = post(t, app, functions.BibleImportPath+"?action=import_chapters", `{"bibleId":"b1","bookId":"GEN"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, out["success"])

	status, out = post(t, app, functions.BibleImportPath+"?action=import_books", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, importer.ErrMissingBibleID.Error(), out["message"])

	status, out = post(t, app, functions.BibleImportPath+"?action=get_verse_content", `{"bibleId":"b1","verseId":"JHN.3.16"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Porque Deus amou", out["content"])
	assert.Equal(t, "João 3:16", out["reference"])
	assert.Equal(t, "text", up.lastVerseQuery().Get("content-type"))
	assert.Empty(t, up.lastVerseQuery().Get("include-content"))
}
