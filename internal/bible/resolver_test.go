package bible

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/bible/canon"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/legacy"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
)

var errDown = errors.New("backend down")

// fakeRemote answers for bible "b1" only; failing turns every call into errDown.
type fakeRemote struct {
	failing bool
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeRemote) check(bibleID string) error {
	f.calls.Add(1)

	time.Sleep(f.delay)

	if f.failing {
		return errDown
	}

	if bibleID != "b1" {
		return &scripture.APIError{Status: 404}
	}

	return nil
}

func (f *fakeRemote) DefaultBibleID() string { return "b1" }

func (f *fakeRemote) Bibles(_ context.Context) ([]scripture.Bible, error) {
	if err := f.check("b1"); err != nil {
		return nil, err
	}

	return []scripture.Bible{
		{ID: "b1", Name: "Bíblia Livre", Abbreviation: "BL", AbbreviationLocal: "BLIVRE", Language: scripture.Language{ID: "por"}},
		{ID: "b2", Name: "Reina Valera", Abbreviation: "RV", Language: scripture.Language{ID: "spa"}},
	}, nil
}

func (f *fakeRemote) Bible(_ context.Context, bibleID string) (*scripture.Bible, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	return &scripture.Bible{ID: "b1", Name: "Bíblia Livre", Abbreviation: "BL", Language: scripture.Language{ID: "por"}}, nil
}

func (f *fakeRemote) Books(_ context.Context, bibleID string) ([]scripture.Book, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	return []scripture.Book{{ID: "JHN", Name: "João", Abbreviation: "Jo"}}, nil
}

func (f *fakeRemote) Chapters(_ context.Context, bibleID, bookID string) ([]scripture.Chapter, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	return []scripture.Chapter{{ID: bookID + ".intro", Number: "intro"}, {ID: bookID + ".3", Number: "3"}}, nil
}

func (f *fakeRemote) Verses(_ context.Context, bibleID, chapterID string) ([]scripture.Verse, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	return []scripture.Verse{
		{ID: chapterID + ".16", Reference: "João 3:16"},
		{ID: chapterID + ".17", Reference: "João 3:17"},
		{ID: chapterID + ".99", Reference: "João 3:99"},
	}, nil
}

func (f *fakeRemote) Verse(_ context.Context, bibleID, verseID string) (*scripture.Verse, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	if verseID == "JHN.3.99" {
		return nil, &scripture.APIError{Status: 404}
	}

	return &scripture.Verse{ID: verseID, Reference: "João", Content: "remoto " + verseID}, nil
}

func (f *fakeRemote) Passage(_ context.Context, bibleID, passageID string) (*scripture.Passage, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	return &scripture.Passage{ID: passageID, Reference: "João 3:16", Content: "passagem " + passageID}, nil
}

func (f *fakeRemote) Search(_ context.Context, bibleID, query string, _, _ int) (*scripture.SearchResult, error) {
	if err := f.check(bibleID); err != nil {
		return nil, err
	}

	return &scripture.SearchResult{
		Query: query, Total: 1,
		Verses: []scripture.SearchVerse{{ID: "JHN.3.16", Reference: "João 3:16", Text: "amou " + query}},
	}, nil
}

// fakeVerses stands in for bible-api.com.
type fakeVerses struct {
	failing bool
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeVerses) DefaultTranslation() string { return versesapi.DefaultTranslation }

func (f *fakeVerses) Lookup(_ context.Context, reference, _ string) (*versesapi.Result, error) {
	f.calls.Add(1)

	if f.failing {
		return nil, versesapi.ErrVerseNotFound
	}

	return &versesapi.Result{Reference: reference, Text: "texto de " + reference, TranslationName: "João Ferreira de Almeida"}, nil
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func setupPrimary(t *testing.T) *gorm.DB {
	t.Helper()

	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(
		&models.BibleVersion{}, &models.BibleBook{}, &models.BibleChapter{}, &models.BibleVerse{},
	))

	return db
}

func setupLegacy(t *testing.T) *legacy.Store {
	t.Helper()

	db := openSQLite(t)
	stmts := []string{
		"CREATE TABLE bible_versions (id INTEGER PRIMARY KEY, name TEXT, abbreviation TEXT, language TEXT)",
		"CREATE TABLE tbbiblia_pt (id INTEGER PRIMARY KEY, liv INTEGER, livro TEXT, cap INTEGER, ver INTEGER, texto TEXT)",
		"CREATE TABLE tbbiblia_en (id INTEGER PRIMARY KEY, liv INTEGER, livro TEXT, cap INTEGER, ver INTEGER, texto TEXT)",
		"INSERT INTO bible_versions VALUES (1, 'Almeida Corrigida', 'ARC', 'pt')",
		`INSERT INTO tbbiblia_pt VALUES
			(1, 43, 'João', 3, 16, 'Porque Deus amou o mundo de tal maneira'),
			(2, 43, 'João', 3, 17, 'Porque Deus enviou o seu Filho ao mundo'),
			(3, 43, 'João', 3, 18, 'Quem crê nele não é condenado')`,
	}

	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return legacy.New(db)
}

func TestVersionsFallback(t *testing.T) {
	ctx := context.Background()

	r := New(Options{DB: setupPrimary(t), Remote: &fakeRemote{failing: true}})
	res, err := r.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, res.Source)
	assert.Equal(t, "BLFPT", res.Data[0].Abbreviation)

	r = New(Options{Remote: &fakeRemote{}})
	res, err = r.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, []Version{{ID: "b1", Name: "Bíblia Livre", Abbreviation: "BLIVRE", Language: "por"}}, res.Data)

	r = New(Options{Legacy: setupLegacy(t), Remote: &fakeRemote{}})
	res, err = r.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, res.Source)
	assert.Equal(t, "1", res.Data[0].ID)
}

func TestImportOnMiss(t *testing.T) {
	ctx := context.Background()
	db := setupPrimary(t)
	remote := &fakeRemote{}
	r := New(Options{DB: db, Remote: remote, Importer: importer.New(db, remote, 2), ImportOnMiss: true})

	verses, err := r.Verses(ctx, "b1", "JHN.3", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceImport, verses.Source)
	require.Len(t, verses.Data, 2, "verses whose text fails are skipped")
	assert.Equal(t, "remoto JHN.3.16", verses.Data[0].Text)

	books, err := r.Books(ctx, "", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, books.Source)
	assert.Equal(t, "Novo", books.Data[0].Testament)
	assert.Equal(t, 1, books.Data[0].Chapters)

	chapters, err := r.Chapters(ctx, "b1", "43", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, chapters.Source)
	assert.Len(t, chapters.Data, 2)

	verse, err := r.Verse(ctx, "b1", "JHN.3.17", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, verse.Source)
	assert.Equal(t, 17, verse.Data.Number)

	passage, err := r.Passage(ctx, "b1", "JHN.3.16-JHN.3.17", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, passage.Source)
	assert.Equal(t, "João 3:16-17", passage.Data.Reference)
	assert.Equal(t, "remoto JHN.3.16 remoto JHN.3.17", passage.Data.Content)
}

func TestLegacyFallback(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	r := New(Options{DB: setupPrimary(t), Legacy: setupLegacy(t), Remote: remote})

	verses, err := r.Verses(ctx, "b1", "43-3", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, verses.Source)
	require.Len(t, verses.Data, 3)
	assert.Equal(t, Verse{ID: "JHN.3.16", Number: 16, Text: "Porque Deus amou o mundo de tal maneira", Reference: "João 3:16"}, verses.Data[0])

	verse, err := r.Verse(ctx, "b1", "43:3:18", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, verse.Source)
	assert.Equal(t, "JHN.3.18", verse.Data.ID)

	chapters, err := r.Chapters(ctx, "b1", "JHN", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, chapters.Source)
	assert.Equal(t, []Chapter{{ID: "JHN.3", Number: 3, BookID: "JHN"}}, chapters.Data)

	books, err := r.Books(ctx, "b1", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, books.Source)
	assert.Equal(t, "JHN", books.Data[0].ID)

	search, err := r.Search(ctx, "b1", "Filho", "pt", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, search.Source)
	assert.Equal(t, "João 3:17", search.Data.Verses[0].Reference)

	assert.Zero(t, remote.calls.Load(), "remote is not reached when the legacy tables answer")

	// chapter 4 is not in the legacy tables
	verses, err = r.Verses(ctx, "b1", "JHN.4", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, verses.Source)
}

func TestLegacySearchPaging(t *testing.T) {
	ctx := context.Background()
	r := New(Options{Legacy: setupLegacy(t)})

	first, err := r.Search(ctx, "b1", "Porque", "pt", 1, 0)
	require.NoError(t, err)
	require.Len(t, first.Data.Verses, 1)
	assert.Equal(t, "João 3:16", first.Data.Verses[0].Reference)

	second, err := r.Search(ctx, "b1", "Porque", "pt", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, second.Source)
	require.Len(t, second.Data.Verses, 1)
	assert.Equal(t, "João 3:17", second.Data.Verses[0].Reference)
}

func TestEveryBackendFailing(t *testing.T) {
	r := New(Options{Remote: &fakeRemote{failing: true}})

	_, err := r.Books(context.Background(), "b1", "pt")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, errDown)

	_, err = r.Verses(context.Background(), "b1", "nonsense", "pt")
	require.ErrorIs(t, err, ErrBadID)

	// an empty answer is not an error
	r = New(Options{DB: setupPrimary(t)})
	res, err := r.Books(context.Background(), "b1", "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceNone, res.Source)
	assert.Empty(t, res.Data)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	r := New(Options{Remote: &fakeRemote{}})

	res, err := r.Lookup(ctx, "", "João 3:16", "pt", 0)
	require.NoError(t, err)
	assert.Equal(t, LookupPassage, res.Data.Kind)
	assert.Equal(t, "passagem JHN.3.16", res.Data.Passage.Content)

	res, err = r.Lookup(ctx, "", "Salmos 23", "pt", 0)
	require.NoError(t, err)
	assert.Equal(t, "passagem PSA.23", res.Data.Passage.Content)

	res, err = r.Lookup(ctx, "", "amor", "pt", 0)
	require.NoError(t, err)
	assert.Equal(t, LookupSearch, res.Data.Kind)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, "amou amor", res.Data.Search.Verses[0].Text)

	_, err = r.Lookup(ctx, "", "  ", "pt", 0)
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSimpleVerse(t *testing.T) {
	ctx := context.Background()

	r := New(Options{Verses: &fakeVerses{}, Legacy: setupLegacy(t)})
	res, err := r.SimpleVerse(ctx, "João 3:16", "")
	require.NoError(t, err)
	assert.Equal(t, SourceBibleAPI, res.Source)
	assert.Equal(t, "João Ferreira de Almeida", res.Data.Translation)

	r = New(Options{Verses: &fakeVerses{failing: true}, Legacy: setupLegacy(t)})
	res, err = r.SimpleVerse(ctx, "João 3:16-17", "almeida")
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, res.Source)
	assert.Equal(t, "João 3:16-17", res.Data.Reference)
	assert.Equal(t, "Porque Deus amou o mundo de tal maneira Porque Deus enviou o seu Filho ao mundo", res.Data.Text)

	_, err = r.SimpleVerse(ctx, "Livro Inventado 1:1", "almeida")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, versesapi.ErrVerseNotFound)
}

func TestLanguageBooks(t *testing.T) {
	r := New(Options{})

	res, err := r.LanguageBooks(context.Background(), "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, res.Source)
	assert.Len(t, res.Data[canon.OldTestament], 39)
	assert.Len(t, res.Data[canon.NewTestament], 27)
	assert.Equal(t, "Gênesis", res.Data[canon.OldTestament][0].Name)

	res, err = r.LanguageBooks(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, "Genesis", res.Data[canon.OldTestament][0].Name)

	r = New(Options{Legacy: setupLegacy(t)})
	res, err = r.LanguageBooks(context.Background(), "pt")
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, res.Source)
	assert.Empty(t, res.Data[canon.OldTestament])
	assert.Equal(t, "João", res.Data[canon.NewTestament][0].Name)
}

func TestDailyVerse(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, time.January, 2, 8, 0, 0, 0, time.UTC)

	r := New(Options{Verses: &fakeVerses{failing: true}})
	dv := r.DailyVerse(ctx, day)
	assert.Equal(t, DailyVerse{
		Date: "2026-01-02", Reference: "Salmos 23:1", Text: "O Senhor é o meu pastor, nada me faltará.",
		Version: "ARC", Source: SourceStatic,
	}, dv)

	verses := &fakeVerses{}
	r = New(Options{Verses: verses})
	dv = r.DailyVerse(ctx, day)
	assert.Equal(t, SourceBibleAPI, dv.Source)
	assert.Equal(t, "texto de Salmos 23:1", dv.Text)

	r.DailyVerse(ctx, day.Add(time.Hour))
	assert.Equal(t, int32(1), verses.calls.Load(), "cached for the day")

	dv = r.DailyVerse(ctx, day.AddDate(0, 0, 1))
	assert.Equal(t, "Salmos 37:5", dv.Reference)
	assert.Equal(t, int32(2), verses.calls.Load())
}

func TestDailyVerseSharedLookup(t *testing.T) {
	day := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	verses := &fakeVerses{failing: true, delay: 200 * time.Millisecond}
	r := New(Options{Verses: verses})

	var wg sync.WaitGroup

	results := make([]DailyVerse, 5)
	start := time.Now()

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = r.DailyVerse(context.Background(), day)
		}()
	}

	wg.Wait()

	assert.Less(t, time.Since(start), 600*time.Millisecond, "callers do not queue behind each other")
	assert.Equal(t, int32(1), verses.calls.Load())

	for _, dv := range results {
		assert.Equal(t, SourceStatic, dv.Source)
	}

	// the static fallback is cached too
	r.DailyVerse(context.Background(), day)
	assert.Equal(t, int32(1), verses.calls.Load())
}

func TestParseIDs(t *testing.T) {
	ref, err := parsePassage("JHN.3.16-JHN.3.18")
	require.NoError(t, err)
	assert.Equal(t, 16, ref.Verse)
	assert.Equal(t, 18, ref.EndVerse)

	ref, err = parsePassage("PSA.23")
	require.NoError(t, err)
	assert.Zero(t, ref.Verse)

	b, n, err := parseChapter("43-3")
	require.NoError(t, err)
	assert.Equal(t, "JHN", b.USFM)
	assert.Equal(t, 3, n)

	_, err = parseBook("XYZ")
	require.ErrorIs(t, err, ErrBadID)

	_, err = parseVerse("JHN.3")
	require.ErrorIs(t, err, ErrBadID)

	assert.Equal(t, "en", langCode("eng"))
	assert.Equal(t, "pt", langCode(""))
}
