// Package importer copies versions, books, chapters and verses from the scripture api
// into the primary database.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/bible/canon"
	store "github.com/biblia-online/biblia/internal/db/controller/bible"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/metrics"
	"github.com/biblia-online/biblia/internal/scripture"
)

const (
	defaultConcurrency = 4
	// importTimeout bounds a shared import run.
	importTimeout = 10 * time.Minute
)

var (
	// ErrMissingBibleID is returned when no bible id was given.
	ErrMissingBibleID = errors.New("bibleId is required")
	// ErrMissingBookID is returned when no book id was given.
	ErrMissingBookID = errors.New("bookId is required")
	// ErrMissingChapterID is returned when no chapter id was given.
	ErrMissingChapterID = errors.New("chapterId is required")
	// ErrMissingVerseID is returned when no verse id was given.
	ErrMissingVerseID = errors.New("verseId is required")
)

// Remote is the part of the scripture api the importer reads.
type Remote interface {
	Bible(ctx context.Context, bibleID string) (*scripture.Bible, error)
	Books(ctx context.Context, bibleID string) ([]scripture.Book, error)
	Chapters(ctx context.Context, bibleID, bookID string) ([]scripture.Chapter, error)
	Verses(ctx context.Context, bibleID, chapterID string) ([]scripture.Verse, error)
	Verse(ctx context.Context, bibleID, verseID string) (*scripture.Verse, error)
}

// Result of an import. Success is false when a parent row is missing.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// VerseContent is the text of a single verse.
type VerseContent struct {
	Success   bool   `json:"success"`
	Content   string `json:"content"`
	Reference string `json:"reference"`
}

// Importer writes remote content into the primary database.
// Concurrent imports of the same version, book or chapter share one run.
type Importer struct {
	db          *gorm.DB
	remote      Remote
	concurrency int
	group       singleflight.Group
}

// New creates an Importer fetching at most concurrency verses at a time.
func New(db *gorm.DB, remote Remote, concurrency int) *Importer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Importer{db: db, remote: remote, concurrency: concurrency}
}

// ImportBooks imports the books of a bible, creating the version row when missing.
func (i *Importer) ImportBooks(ctx context.Context, bibleID string) (*Result, error) {
	if bibleID == "" {
		return nil, ErrMissingBibleID
	}

	return i.once(ctx, "books:"+bibleID, func(ctx context.Context) (*Result, error) {
		version, err := i.ensureVersion(ctx, bibleID)
		if err != nil {
			return nil, err
		}

		if version == nil {
			return failed("Versão não encontrada: %s", bibleID), nil
		}

		books, err := i.remote.Books(ctx, bibleID)
		if err != nil {
			return nil, fmt.Errorf("fetch books of %s: %w", bibleID, err)
		}

		count := 0

		for idx, b := range books {
			row := models.BibleBook{
				BookID:       b.ID,
				Name:         b.Name,
				Abbreviation: b.Abbreviation,
				Position:     idx + 1,
				VersionID:    version.ID,
			}

			if known, ok := canon.ByUSFM(b.ID); ok {
				row.Position = known.Position
				row.Testament = known.Testament()
			}

			if _, err = store.UpsertBook(i.db, row); err != nil {
				log.Error().Err(err).Str("bible_id", bibleID).Str("book_id", b.ID).Msg("failed to import book")

				continue
			}

			count++
		}

		metrics.ImportedRows.WithLabelValues("books").Add(float64(count))
		log.Info().Str("bible_id", bibleID).Int("count", count).Msg("books imported")

		return succeeded(count, "Importados %d livros com sucesso.", count), nil
	})
}

// ImportChapters imports the chapters of an already imported book.
func (i *Importer) ImportChapters(ctx context.Context, bibleID, bookID string) (*Result, error) {
	if bibleID == "" {
		return nil, ErrMissingBibleID
	}

	if bookID == "" {
		return nil, ErrMissingBookID
	}

	return i.once(ctx, "chapters:"+bibleID+":"+bookID, func(ctx context.Context) (*Result, error) {
		if res, err := i.requireVersion(bibleID); res != nil || err != nil {
			return res, err
		}

		book, err := store.Book(i.db, bibleID, bookID)
		if errors.Is(err, store.ErrNotFound) {
			return failed("Livro não encontrado: %s", bookID), nil
		}

		if err != nil {
			return nil, err
		}

		chapters, err := i.remote.Chapters(ctx, bibleID, bookID)
		if err != nil {
			return nil, fmt.Errorf("fetch chapters of %s: %w", bookID, err)
		}

		numbered := 0
		count := 0

		for _, c := range chapters {
			number, convErr := strconv.Atoi(c.Number)
			if convErr == nil {
				numbered++
			}

			row := models.BibleChapter{ChapterID: c.ID, Number: number, BookID: book.ID}
			if _, err = store.UpsertChapter(i.db, row); err != nil {
				log.Error().Err(err).Str("bible_id", bibleID).Str("chapter_id", c.ID).Msg("failed to import chapter")

				continue
			}

			count++
		}

		if err = store.SetChapterCount(i.db, book.ID, numbered); err != nil {
			log.Error().Err(err).Str("bible_id", bibleID).Str("book_id", bookID).Msg("failed to update chapter count")
		}

		metrics.ImportedRows.WithLabelValues("chapters").Add(float64(count))
		log.Info().Str("bible_id", bibleID).Str("book_id", bookID).Int("count", count).Msg("chapters imported")

		return succeeded(count, "Importados %d capítulos com sucesso.", count), nil
	})
}

// ImportVerses imports the verses of an already imported chapter, fetching every verse text.
// Verses whose text cannot be fetched or stored are skipped.
func (i *Importer) ImportVerses(ctx context.Context, bibleID, chapterID string) (*Result, error) {
	if bibleID == "" {
		return nil, ErrMissingBibleID
	}

	if chapterID == "" {
		return nil, ErrMissingChapterID
	}

	return i.once(ctx, "verses:"+bibleID+":"+chapterID, func(ctx context.Context) (*Result, error) {
		if res, err := i.requireVersion(bibleID); res != nil || err != nil {
			return res, err
		}

		chapter, err := store.Chapter(i.db, bibleID, chapterID)
		if errors.Is(err, store.ErrNotFound) {
			return failed("Capítulo não encontrado: %s", chapterID), nil
		}

		if err != nil {
			return nil, err
		}

		listed, err := i.remote.Verses(ctx, bibleID, chapterID)
		if err != nil {
			return nil, fmt.Errorf("fetch verses of %s: %w", chapterID, err)
		}

		fetched := i.fetchContents(ctx, bibleID, listed)
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		count := 0

		for _, v := range fetched {
			if v == nil {
				continue
			}

			row := models.BibleVerse{
				VerseID:   v.ID,
				Number:    canon.LastSegmentNumber(v.ID),
				Text:      v.Content,
				Reference: v.Reference,
				ChapterID: chapter.ID,
			}

			if _, err = store.UpsertVerse(i.db, row); err != nil {
				log.Error().Err(err).Str("bible_id", bibleID).Str("verse_id", v.ID).Msg("failed to import verse")

				continue
			}

			count++
		}

		metrics.ImportedRows.WithLabelValues("verses").Add(float64(count))
		log.Info().Str("bible_id", bibleID).Str("chapter_id", chapterID).Int("count", count).Msg("verses imported")

		return succeeded(count, "Importados %d versículos com sucesso.", count), nil
	})
}

// VerseContent returns the text of one verse, from the primary database when imported.
func (i *Importer) VerseContent(ctx context.Context, bibleID, verseID string) (*VerseContent, error) {
	if bibleID == "" {
		return nil, ErrMissingBibleID
	}

	if verseID == "" {
		return nil, ErrMissingVerseID
	}

	if row, err := store.Verse(i.db, bibleID, verseID); err == nil && row.Text != "" {
		return &VerseContent{Success: true, Content: row.Text, Reference: row.Reference}, nil
	}

	v, err := i.remote.Verse(ctx, bibleID, verseID)
	if err != nil {
		return nil, fmt.Errorf("fetch verse %s: %w", verseID, err)
	}

	return &VerseContent{Success: true, Content: v.Content, Reference: v.Reference}, nil
}

// fetchContents loads the text of every listed verse keeping the listing order.
// Failed verses are left nil.
func (i *Importer) fetchContents(ctx context.Context, bibleID string, listed []scripture.Verse) []*scripture.Verse {
	out := make([]*scripture.Verse, len(listed))

	var g errgroup.Group

	g.SetLimit(i.concurrency)

	for idx, v := range listed {
		g.Go(func() error {
			full, err := i.remote.Verse(ctx, bibleID, v.ID)
			if err != nil {
				log.Warn().Err(err).Str("bible_id", bibleID).Str("verse_id", v.ID).Msg("skipping verse without content")

				return nil
			}

			if full.Reference == "" {
				full.Reference = v.Reference
			}

			out[idx] = full

			return nil
		})
	}

	_ = g.Wait()

	return out
}

// ensureVersion returns the version row, creating it from the remote metadata.
// A nil row without error means the remote does not know the bible.
func (i *Importer) ensureVersion(ctx context.Context, bibleID string) (*models.BibleVersion, error) {
	v, err := store.Version(i.db, bibleID)
	if err == nil {
		return v, nil
	}

	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	remote, err := i.remote.Bible(ctx, bibleID)
	if err != nil {
		log.Warn().Err(err).Str("bible_id", bibleID).Msg("bible metadata not available")

		return nil, nil //nolint:nilnil
	}

	return store.UpsertVersion(i.db, models.BibleVersion{
		VersionID:    bibleID,
		Name:         remote.Name,
		Abbreviation: remote.DisplayAbbreviation(),
		Language:     remote.Language.ID,
	})
}

func (i *Importer) requireVersion(bibleID string) (*Result, error) {
	_, err := store.Version(i.db, bibleID)
	if errors.Is(err, store.ErrNotFound) {
		return failed("Versão não encontrada: %s", bibleID), nil
	}

	return nil, err
}

// once runs fn for key at most once at a time. The run is detached from the
// caller's cancellation so one client leaving does not fail the others.
func (i *Importer) once(ctx context.Context, key string, fn func(ctx context.Context) (*Result, error)) (*Result, error) {
	ch := i.group.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), importTimeout)
		defer cancel()

		return fn(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*Result), nil //nolint:forcetypeassert
	}
}

func failed(format string, args ...any) *Result {
	return &Result{Message: fmt.Sprintf(format, args...)}
}

func succeeded(count int, format string, args ...any) *Result {
	return &Result{Success: true, Message: fmt.Sprintf(format, args...), Count: count}
}
