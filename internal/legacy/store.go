// Package legacy reads the secondary MySQL database holding the tbbiblia_pt and tbbiblia_en tables.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	tablePortuguese = "tbbiblia_pt"
	tableEnglish    = "tbbiblia_en"

	// DefaultSearchLimit is used when a search names no limit.
	DefaultSearchLimit = 10
)

var (
	// ErrDisabled is returned by every call when no legacy database is configured.
	ErrDisabled = errors.New("legacy database is disabled")
	// ErrBadChapterID is returned for chapter ids not shaped like "{liv}-{cap}".
	ErrBadChapterID = errors.New("chapter id must look like 43-3")
)

// Version is a row of bible_versions.
type Version struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
}

// Book is a distinct (liv, livro) pair.
type Book struct {
	Liv   int    `json:"liv"`
	Livro string `json:"livro"`
}

// Chapter of a book, ID is "{liv}-{cap}".
type Chapter struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	BookID int    `json:"book_id"`
}

// Verse of a chapter, Reference is "{liv}:{cap}:{ver}".
type Verse struct {
	ID        int    `json:"id"`
	Number    int    `json:"number"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// SearchVerse is a keyword hit, Reference is "{livro} {cap}:{ver}".
type SearchVerse struct {
	ID        int    `json:"id"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// SearchResult of Search.
type SearchResult struct {
	Verses []SearchVerse `json:"verses"`
	Total  int           `json:"total"`
}

type row struct {
	ID    int
	Liv   int
	Livro string
	Cap   int
	Ver   int
	Texto string
}

// Store runs read-only queries. A Store over a nil database answers ErrDisabled.
type Store struct {
	db *gorm.DB
}

// New creates a Store. db may be nil.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Enabled reports whether a legacy database is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Versions lists bible_versions ordered by language and name.
func (s *Store) Versions(ctx context.Context) ([]Version, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	out := []Version{}
	err := s.db.WithContext(ctx).
		Raw("SELECT id, name, abbreviation, language FROM bible_versions ORDER BY language, name").
		Scan(&out).Error

	return out, wrap("versions", err)
}

// Books lists the distinct books of a language, "pt" reads tbbiblia_pt, anything else tbbiblia_en.
func (s *Store) Books(ctx context.Context, lang string) ([]Book, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	out := []Book{}
	q := fmt.Sprintf("SELECT DISTINCT liv, livro FROM %s ORDER BY CAST(liv AS UNSIGNED)", readTable(lang))
	err := s.db.WithContext(ctx).Raw(q).Scan(&out).Error

	return out, wrap("books", err)
}

// Chapters lists the chapters of book number bookID.
func (s *Store) Chapters(ctx context.Context, lang string, bookID int) ([]Chapter, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	var caps []int

	q := fmt.Sprintf("SELECT DISTINCT cap FROM %s WHERE liv = ? ORDER BY CAST(cap AS UNSIGNED)", readTable(lang))
	if err := s.db.WithContext(ctx).Raw(q, bookID).Scan(&caps).Error; err != nil {
		return nil, wrap("chapters", err)
	}

	out := make([]Chapter, 0, len(caps))
	for _, c := range caps {
		out = append(out, Chapter{ID: ChapterID(bookID, c), Number: c, BookID: bookID})
	}

	return out, nil
}

// Verses lists the verses of a chapter id "{liv}-{cap}".
func (s *Store) Verses(ctx context.Context, lang, chapterID string) ([]Verse, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	liv, capNum, err := ParseChapterID(chapterID)
	if err != nil {
		return nil, err
	}

	var rows []row

	q := fmt.Sprintf("SELECT id, liv, cap, ver, texto FROM %s WHERE liv = ? AND cap = ? ORDER BY CAST(ver AS UNSIGNED)", readTable(lang))
	if err = s.db.WithContext(ctx).Raw(q, liv, capNum).Scan(&rows).Error; err != nil {
		return nil, wrap("verses", err)
	}

	out := make([]Verse, 0, len(rows))
	for _, r := range rows {
		out = append(out, Verse{
			ID:        r.ID,
			Number:    r.Ver,
			Text:      r.Texto,
			Reference: fmt.Sprintf("%d:%d:%d", r.Liv, r.Cap, r.Ver),
		})
	}

	return out, nil
}

// Search matches texto with LIKE. "en" searches tbbiblia_en, anything else tbbiblia_pt.
func (s *Store) Search(ctx context.Context, query, lang string, limit, offset int) (*SearchResult, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if offset < 0 {
		offset = 0
	}

	var rows []row

	q := fmt.Sprintf("SELECT id, liv, livro, cap, ver, texto FROM %s WHERE texto LIKE ? ORDER BY id LIMIT ? OFFSET ?", searchTable(lang))
	if err := s.db.WithContext(ctx).Raw(q, "%"+query+"%", limit, offset).Scan(&rows).Error; err != nil {
		return nil, wrap("search", err)
	}

	out := &SearchResult{Verses: make([]SearchVerse, 0, len(rows))}
	for _, r := range rows {
		out.Verses = append(out.Verses, SearchVerse{
			ID:        r.ID,
			Reference: fmt.Sprintf("%s %d:%d", r.Livro, r.Cap, r.Ver),
			Text:      r.Texto,
		})
	}

	out.Total = len(out.Verses)

	return out, nil
}

// ChapterID formats a legacy chapter id.
func ChapterID(liv, capNum int) string {
	return fmt.Sprintf("%d-%d", liv, capNum)
}

// ParseChapterID splits "{liv}-{cap}".
func ParseChapterID(id string) (liv, capNum int, err error) {
	l, c, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadChapterID, id)
	}

	if liv, err = strconv.Atoi(l); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadChapterID, id)
	}

	if capNum, err = strconv.Atoi(c); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadChapterID, id)
	}

	return liv, capNum, nil
}

func readTable(lang string) string {
	if lang == "pt" {
		return tablePortuguese
	}

	return tableEnglish
}

func searchTable(lang string) string {
	if lang == "en" {
		return tableEnglish
	}

	return tablePortuguese
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("legacy %s: %w", op, err)
}
