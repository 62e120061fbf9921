package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	byUSFM   map[string]*Book //nolint:gochecknoglobals
	byExact  map[string]*Book //nolint:gochecknoglobals
	byFolded map[string]*Book //nolint:gochecknoglobals
)

func init() { //nolint:gochecknoinits
	byUSFM = make(map[string]*Book, len(books))
	byExact = make(map[string]*Book, len(books)*4)  //nolint:mnd
	byFolded = make(map[string]*Book, len(books)*4) //nolint:mnd

	add := func(name string, b *Book) {
		if k := normalizeKey(name, false); k != "" {
			if _, taken := byExact[k]; !taken {
				byExact[k] = b
			}
		}

		if k := normalizeKey(name, true); k != "" {
			if _, taken := byFolded[k]; !taken {
				byFolded[k] = b
			}
		}
	}

	// full names first so a folded name beats a folded abbreviation
	for i := range books {
		b := &books[i]
		byUSFM[normalizeKey(b.USFM, false)] = b
		add(b.Portuguese, b)
		add(b.English, b)
	}

	for i := range books {
		b := &books[i]
		add(b.PortugueseAbv, b)
		add(b.USFM, b)
	}

	for alias, code := range aliases {
		add(alias, byUSFM[normalizeKey(code, false)])
	}
}

// Find resolves a book name, abbreviation or USFM code in portuguese or english.
// Accents are optional, but an accented match wins ("Jó" is Job, "Jo" is João).
func Find(name string) (*Book, bool) {
	if b, ok := byExact[normalizeKey(name, false)]; ok {
		return b, true
	}

	b, ok := byFolded[normalizeKey(name, true)]

	return b, ok
}

// Fold lower-cases s and strips diacritics.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}

	return out
}

func normalizeKey(s string, fold bool) string {
	if fold {
		s = Fold(s)
	} else {
		s = strings.ToLower(s)
	}

	var sb strings.Builder

	for _, r := range s {
		if r == ' ' || r == '.' || r == '_' || r == '-' {
			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
