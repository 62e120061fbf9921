// Package bible resolves bible content through a chain of backends: the primary
// database, an on-demand import into it, the legacy MySQL tables, the scripture
// api and finally static data. The first backend with a non-empty answer wins.
package bible

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/legacy"
	"github.com/biblia-online/biblia/internal/metrics"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
)

const defaultConcurrency = 4

var (
	// ErrUnavailable is returned, joined with every backend error, when all backends failed.
	ErrUnavailable = errors.New("bible content unavailable")
	// ErrEmptyQuery is returned for blank searches and lookups.
	ErrEmptyQuery = errors.New("query is required")
	// ErrBadID is returned for book, chapter, verse or passage ids that cannot be parsed.
	ErrBadID = errors.New("malformed bible id")
)

// Remote is the scripture api.
type Remote interface {
	DefaultBibleID() string
	Bibles(ctx context.Context) ([]scripture.Bible, error)
	Books(ctx context.Context, bibleID string) ([]scripture.Book, error)
	Chapters(ctx context.Context, bibleID, bookID string) ([]scripture.Chapter, error)
	Verses(ctx context.Context, bibleID, chapterID string) ([]scripture.Verse, error)
	Verse(ctx context.Context, bibleID, verseID string) (*scripture.Verse, error)
	Passage(ctx context.Context, bibleID, passageID string) (*scripture.Passage, error)
	Search(ctx context.Context, bibleID, query string, limit, offset int) (*scripture.SearchResult, error)
}

// VerseLookup is the bible-api.com client.
type VerseLookup interface {
	DefaultTranslation() string
	Lookup(ctx context.Context, reference, translation string) (*versesapi.Result, error)
}

// Importer copies remote content into the primary database.
type Importer interface {
	ImportBooks(ctx context.Context, bibleID string) (*importer.Result, error)
	ImportChapters(ctx context.Context, bibleID, bookID string) (*importer.Result, error)
	ImportVerses(ctx context.Context, bibleID, chapterID string) (*importer.Result, error)
}

// Options wires the backends of a Resolver. Nil backends are skipped.
type Options struct {
	DB           *gorm.DB
	Legacy       *legacy.Store
	Remote       Remote
	Verses       VerseLookup
	Importer     Importer
	ImportOnMiss bool
	Concurrency  int // parallel verse requests to the scripture api
}

// Resolver answers bible content queries.
type Resolver struct {
	db           *gorm.DB
	legacy       *legacy.Store
	remote       Remote
	verses       VerseLookup
	importer     Importer
	importOnMiss bool
	concurrency  int

	dailyMu      sync.Mutex
	daily        *DailyVerse
	dailyExpires time.Time
	dailyGroup   singleflight.Group
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	r := &Resolver{
		db:           opts.DB,
		legacy:       opts.Legacy,
		remote:       opts.Remote,
		verses:       opts.Verses,
		importer:     opts.Importer,
		importOnMiss: opts.ImportOnMiss,
		concurrency:  opts.Concurrency,
	}

	if r.concurrency <= 0 {
		r.concurrency = defaultConcurrency
	}

	return r
}

type step[T any] struct {
	source Source
	fetch  func() (T, error)
}

// resolve runs the steps in order and returns the first non-empty answer.
// When every backend answered empty the first empty answer is returned with SourceNone.
// Steps without fetch are disabled backends.
func resolve[T any](op string, empty func(T) bool, steps ...step[T]) (Result[T], error) {
	var (
		errs     []error
		fallback *Result[T]
	)

	for _, s := range steps {
		if s.fetch == nil {
			continue
		}

		v, err := s.fetch()
		if err != nil {
			log.Warn().Err(err).Str("operation", op).Str("source", string(s.source)).Msg("bible backend failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.source, err))

			continue
		}

		if empty(v) {
			if fallback == nil {
				fallback = &Result[T]{Data: v, Source: SourceNone}
			}

			continue
		}

		metrics.Resolutions.WithLabelValues(op, string(s.source)).Inc()

		return Result[T]{Data: v, Source: s.source}, nil
	}

	if fallback != nil {
		metrics.Resolutions.WithLabelValues(op, string(SourceNone)).Inc()

		return *fallback, nil
	}

	return Result[T]{}, errors.Join(append([]error{ErrUnavailable}, errs...)...)
}

func isEmpty[E any](v []E) bool {
	return len(v) == 0
}

// bibleID falls back to the configured default bible.
func (r *Resolver) bibleID(id string) string {
	if id == "" && r.remote != nil {
		return r.remote.DefaultBibleID()
	}

	return id
}

func (r *Resolver) hasPrimary() bool {
	return r.db != nil
}

func (r *Resolver) canImport() bool {
	return r.db != nil && r.importer != nil && r.importOnMiss
}

func (r *Resolver) hasLegacy() bool {
	return r.legacy.Enabled()
}

// when returns fetch if enabled, nil otherwise.
func when[T any](enabled bool, fetch func() (T, error)) func() (T, error) {
	if !enabled {
		return nil
	}

	return fetch
}
