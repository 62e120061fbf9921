package scripture_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/scripture"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/bibles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"statusCode":401,"error":"Unauthorized"}`))

			return
		}

		_, _ = w.Write([]byte(`{"data":[
			{"id":"d63894c8d9a7a503-01","name":"Biblia Livre","abbreviation":"BLFPT","abbreviationLocal":"BLT","language":{"id":"por","name":"Portuguese"}},
			{"id":"de4e12af7f28f599-01","name":"King James","abbreviation":"KJV","language":{"id":"eng","name":"English"}}
		]}`))
	})

	mux.HandleFunc("/bibles/b1/books/JHN/chapters", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"JHN.intro","bookId":"JHN","number":"intro"},{"id":"JHN.1","bookId":"JHN","number":"1"}]}`))
	})

	mux.HandleFunc("/bibles/b1/verses/JHN.3.16", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text", r.URL.Query().Get("content-type"))
		assert.Equal(t, "false", r.URL.Query().Get("include-verse-numbers"))

		_, _ = w.Write([]byte(`{"data":{"id":"JHN.3.16","reference":"João 3:16","content":"  Porque Deus amou o mundo \n"}}`))
	})

	mux.HandleFunc("/bibles/b1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "amor", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("offset"))

		_, _ = w.Write([]byte(`{"data":{"query":"amor","total":1,"verses":[{"id":"1CO.13.4","reference":"1 Coríntios 13:4","text":"O amor é paciente"}]}}`))
	})

	mux.HandleFunc("/bibles/b1/passages/JHN.3.16-JHN.3.17", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"JHN.3.16-JHN.3.17","reference":"João 3:16-17","content":"texto"}}`))
	})

	mux.HandleFunc("/bibles/missing/books", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`not found`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newClient(srv *httptest.Server, key string) *scripture.Client {
	return scripture.New(config.Scripture{BaseURL: srv.URL + "/", APIKey: key, DefaultBibleID: "b1"})
}

func TestClient(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(srv, "secret-key")
	ctx := context.Background()

	bibles, err := c.Bibles(ctx)
	require.NoError(t, err)
	require.Len(t, bibles, 2)
	assert.Equal(t, "BLT", bibles[0].DisplayAbbreviation())
	assert.Equal(t, "KJV", bibles[1].DisplayAbbreviation())
	assert.Equal(t, "por", bibles[0].Language.ID)

	chapters, err := c.Chapters(ctx, "b1", "JHN")
	require.NoError(t, err)
	assert.Equal(t, "intro", chapters[0].Number)

	verse, err := c.Verse(ctx, "b1", "JHN.3.16")
	require.NoError(t, err)
	assert.Equal(t, "Porque Deus amou o mundo", verse.Content)

	result, err := c.Search(ctx, "b1", "amor", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "O amor é paciente", result.Verses[0].Text)

	passage, err := c.Passage(ctx, "b1", "JHN.3.16-JHN.3.17")
	require.NoError(t, err)
	assert.Equal(t, "texto", passage.Content)

	assert.Equal(t, "b1", c.DefaultBibleID())
}

func TestClientErrors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := newClient(srv, "").Bibles(ctx)
	require.ErrorIs(t, err, scripture.ErrNoAPIKey)

	_, err = newClient(srv, "wrong").Bibles(ctx)

	var apiErr *scripture.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.JSONEq(t, `{"statusCode":401,"error":"Unauthorized"}`, string(apiErr.Body))

	_, err = newClient(srv, "secret-key").Books(ctx, "missing")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.JSONEq(t, `"not found"`, string(apiErr.Body))

	_, err = newClient(srv, "secret-key").Chapters(ctx, "b1", "")
	require.ErrorIs(t, err, scripture.ErrMissingParam)
}

func TestRawAndConfigure(t *testing.T) {
	srv := newTestServer(t)
	c := scripture.New(config.Scripture{BaseURL: "http://127.0.0.1:1", APIKey: "old"})

	c.Configure(srv.URL, "secret-key", "b1")

	body, err := c.Raw(context.Background(), "/bibles", nil)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "data")

	q := scripture.WithIncludeContent(url.Values{"a": {"b"}})
	assert.Equal(t, "true", q.Get("include-content"))
	assert.Equal(t, "true", scripture.WithIncludeContent(nil).Get("include-content"))
}
