package canon

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotAReference is returned when the input does not look like "Book C[:V[-V]]".
	ErrNotAReference = errors.New("not a bible reference")
	// ErrUnknownBook is returned when the book part matches no canonical book.
	ErrUnknownBook = errors.New("unknown bible book")
	// ErrChapterOutOfRange is returned for chapters the book does not have.
	ErrChapterOutOfRange = errors.New("chapter out of range")
)

// book (with optional leading ordinal), chapter, optional verse and range end.
var referencePattern = regexp.MustCompile( //nolint:gochecknoglobals
	`^\s*((?:[1-3]\s*)?[^\d:,.]+?)\.?\s*(\d+)(?:\s*[:.,]\s*(\d+)(?:\s*-\s*(\d+))?)?\s*$`,
)

// Reference points to a chapter, a verse or a verse range.
type Reference struct {
	Book     *Book
	Chapter  int
	Verse    int // 0 for the whole chapter
	EndVerse int // 0 unless a range was given
}

// ParseReference parses inputs like "João 3:16", "1 Coríntios 13:4-7", "Sl 23" or "JHN 3.16".
func ParseReference(s string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrNotAReference, s)
	}

	b, ok := Find(m[1])
	if !ok {
		return Reference{}, fmt.Errorf("%w: %q", ErrUnknownBook, strings.TrimSpace(m[1]))
	}

	ref := Reference{Book: b}
	ref.Chapter, _ = strconv.Atoi(m[2])

	if ref.Chapter < 1 || ref.Chapter > b.Chapters {
		return Reference{}, fmt.Errorf("%w: %s %d", ErrChapterOutOfRange, b.USFM, ref.Chapter)
	}

	if m[3] != "" {
		ref.Verse, _ = strconv.Atoi(m[3])
	}

	if m[4] != "" {
		ref.EndVerse, _ = strconv.Atoi(m[4])
		if ref.EndVerse <= ref.Verse {
			ref.EndVerse = 0
		}
	}

	return ref, nil
}

// ChapterID returns the scripture api chapter id, e.g. JHN.3.
func (r Reference) ChapterID() string {
	return fmt.Sprintf("%s.%d", r.Book.USFM, r.Chapter)
}

// VerseID returns the scripture api verse id of the first verse, e.g. JHN.3.16.
// It is empty for whole chapters.
func (r Reference) VerseID() string {
	if r.Verse == 0 {
		return ""
	}

	return fmt.Sprintf("%s.%d", r.ChapterID(), r.Verse)
}

// PassageID returns the scripture api passage id: JHN.3, JHN.3.16 or JHN.3.16-JHN.3.18.
func (r Reference) PassageID() string {
	switch {
	case r.Verse == 0:
		return r.ChapterID()
	case r.EndVerse > 0:
		return fmt.Sprintf("%s-%s.%d", r.VerseID(), r.ChapterID(), r.EndVerse)
	default:
		return r.VerseID()
	}
}

// LegacyChapterID returns the chapter id of the legacy tables, "{liv}-{cap}".
func (r Reference) LegacyChapterID() string {
	return fmt.Sprintf("%d-%d", r.Book.Position, r.Chapter)
}

// Contains reports whether verse number n is part of the reference.
func (r Reference) Contains(n int) bool {
	switch {
	case r.Verse == 0:
		return true
	case r.EndVerse > 0:
		return n >= r.Verse && n <= r.EndVerse
	default:
		return n == r.Verse
	}
}

// Format renders the reference with the book name of lang, e.g. "João 3:16-18".
func (r Reference) Format(lang string) string {
	out := fmt.Sprintf("%s %d", r.Book.Name(lang), r.Chapter)
	if r.Verse > 0 {
		out += fmt.Sprintf(":%d", r.Verse)
	}

	if r.EndVerse > 0 {
		out += fmt.Sprintf("-%d", r.EndVerse)
	}

	return out
}

// SplitFavoriteReference splits "Book C:V" into its parts.
// The book is everything before the last space so "1 Coríntios 13:4" keeps its ordinal.
func SplitFavoriteReference(ref string) (book string, chapter, verse int, err error) {
	ref = strings.TrimSpace(ref)

	idx := strings.LastIndex(ref, " ")
	if idx <= 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNotAReference, ref)
	}

	book = strings.TrimSpace(ref[:idx])

	chapterPart, versePart, found := strings.Cut(ref[idx+1:], ":")
	if !found {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNotAReference, ref)
	}

	if chapter, err = strconv.Atoi(chapterPart); err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNotAReference, ref)
	}

	// ranges keep their first verse
	versePart, _, _ = strings.Cut(versePart, "-")

	if verse, err = strconv.Atoi(versePart); err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNotAReference, ref)
	}

	return book, chapter, verse, nil
}

// BookFromID returns the book of a scripture api id like JHN, JHN.3 or JHN.3.16.
func BookFromID(id string) (*Book, bool) {
	code, _, _ := strings.Cut(id, ".")

	return ByUSFM(code)
}

// LastSegmentNumber returns the number after the last dot of an id (JHN.3.16 -> 16).
// Non numeric segments such as "intro" yield 0.
func LastSegmentNumber(id string) int {
	seg := id
	if i := strings.LastIndex(id, "."); i >= 0 {
		seg = id[i+1:]
	}

	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0
	}

	return n
}
