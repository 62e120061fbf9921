package bible

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biblia-online/biblia/internal/bible/canon"
	"github.com/biblia-online/biblia/internal/legacy"
)

// parseBook accepts a USFM code (JHN) or a legacy book number (43).
func parseBook(id string) (*canon.Book, error) {
	if n, err := strconv.Atoi(id); err == nil {
		if b, ok := canon.ByPosition(n); ok {
			return b, nil
		}
	}

	if b, ok := canon.ByUSFM(strings.ToUpper(id)); ok {
		return b, nil
	}

	return nil, fmt.Errorf("%w: book %q", ErrBadID, id)
}

// parseChapter accepts JHN.3 or the legacy 43-3.
func parseChapter(id string) (*canon.Book, int, error) {
	if strings.Contains(id, "-") {
		liv, capNum, err := legacy.ParseChapterID(id)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: chapter %q", ErrBadID, id)
		}

		b, ok := canon.ByPosition(liv)
		if !ok {
			return nil, 0, fmt.Errorf("%w: chapter %q", ErrBadID, id)
		}

		return b, capNum, nil
	}

	code, num, found := strings.Cut(id, ".")
	if !found {
		return nil, 0, fmt.Errorf("%w: chapter %q", ErrBadID, id)
	}

	b, err := parseBook(code)
	if err != nil {
		return nil, 0, err
	}

	n, err := strconv.Atoi(num)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: chapter %q", ErrBadID, id)
	}

	return b, n, nil
}

// parseVerse accepts JHN.3.16 or the legacy reference 43:3:16.
func parseVerse(id string) (canon.Reference, error) {
	sep := "."
	if strings.Contains(id, ":") {
		sep = ":"
	}

	parts := strings.Split(id, sep)
	if len(parts) != 3 { //nolint:mnd
		return canon.Reference{}, fmt.Errorf("%w: verse %q", ErrBadID, id)
	}

	b, err := parseBook(parts[0])
	if err != nil {
		return canon.Reference{}, err
	}

	chapter, errC := strconv.Atoi(parts[1])
	verse, errV := strconv.Atoi(parts[2])

	if errC != nil || errV != nil {
		return canon.Reference{}, fmt.Errorf("%w: verse %q", ErrBadID, id)
	}

	return canon.Reference{Book: b, Chapter: chapter, Verse: verse}, nil
}

// parsePassage accepts JHN.3, JHN.3.16 and JHN.3.16-JHN.3.18.
func parsePassage(id string) (canon.Reference, error) {
	start, end, isRange := strings.Cut(id, "-")

	if strings.Count(start, ".") == 1 && !isRange {
		b, chapter, err := parseChapter(start)
		if err != nil {
			return canon.Reference{}, err
		}

		return canon.Reference{Book: b, Chapter: chapter}, nil
	}

	ref, err := parseVerse(start)
	if err != nil {
		return canon.Reference{}, err
	}

	if isRange {
		last := canon.LastSegmentNumber(end)
		if last > ref.Verse {
			ref.EndVerse = last
		}
	}

	return ref, nil
}

func verseID(b *canon.Book, chapter, verse int) string {
	return fmt.Sprintf("%s.%d.%d", b.USFM, chapter, verse)
}

func chapterID(b *canon.Book, chapter int) string {
	return fmt.Sprintf("%s.%d", b.USFM, chapter)
}

// langCode maps any language code to the "pt" or "en" of the legacy tables, portuguese by default.
func langCode(lang string) string {
	if lang == "" || canon.IsPortuguese(lang) {
		return "pt"
	}

	return "en"
}
