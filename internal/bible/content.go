package bible

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/biblia-online/biblia/internal/bible/canon"
	store "github.com/biblia-online/biblia/internal/db/controller/bible"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/importer"
)

var errImportFailed = errors.New("import failed")

// Versions lists the available versions.
func (r *Resolver) Versions(ctx context.Context) (Result[[]Version], error) {
	return resolve("versions", isEmpty[Version],
		step[[]Version]{SourcePrimary, when(r.hasPrimary(), func() ([]Version, error) {
			rows, err := store.Versions(r.db.WithContext(ctx))
			if err != nil {
				return nil, err
			}

			out := make([]Version, 0, len(rows))
			for _, v := range rows {
				out = append(out, Version{ID: v.VersionID, Name: v.Name, Abbreviation: v.Abbreviation, Language: v.Language})
			}

			return out, nil
		})},
		step[[]Version]{SourceLegacy, when(r.hasLegacy(), func() ([]Version, error) {
			rows, err := r.legacy.Versions(ctx)
			if err != nil {
				return nil, err
			}

			out := make([]Version, 0, len(rows))
			for _, v := range rows {
				out = append(out, Version{ID: strconv.Itoa(v.ID), Name: v.Name, Abbreviation: v.Abbreviation, Language: v.Language})
			}

			return out, nil
		})},
		step[[]Version]{SourceRemote, when(r.remote != nil, func() ([]Version, error) {
			bibles, err := r.remote.Bibles(ctx)
			if err != nil {
				return nil, err
			}

			out := []Version{}

			for _, b := range bibles {
				if !remoteLanguages[b.Language.ID] {
					continue
				}

				out = append(out, Version{ID: b.ID, Name: b.Name, Abbreviation: b.DisplayAbbreviation(), Language: b.Language.ID})
			}

			return out, nil
		})},
		step[[]Version]{SourceStatic, func() ([]Version, error) {
			return append([]Version(nil), staticVersions...), nil
		}},
	)
}

// Books lists the books of a version. lang selects the legacy table.
func (r *Resolver) Books(ctx context.Context, bibleID, lang string) (Result[[]Book], error) {
	bibleID = r.bibleID(bibleID)

	primary := func() ([]Book, error) {
		rows, err := store.Books(r.db.WithContext(ctx), bibleID)
		if err != nil {
			return nil, err
		}

		out := make([]Book, 0, len(rows))
		for _, b := range rows {
			out = append(out, Book{
				ID: b.BookID, Name: b.Name, Abbreviation: b.Abbreviation,
				Testament: b.Testament, Position: b.Position, Chapters: b.ChapterCount,
			})
		}

		return out, nil
	}

	return resolve("books", isEmpty[Book],
		step[[]Book]{SourcePrimary, when(r.hasPrimary(), primary)},
		step[[]Book]{SourceImport, when(r.canImport(), func() ([]Book, error) {
			if err := r.importBooks(ctx, bibleID); err != nil {
				return nil, err
			}

			return primary()
		})},
		step[[]Book]{SourceLegacy, when(r.hasLegacy(), func() ([]Book, error) {
			return r.legacyBooks(ctx, lang)
		})},
		step[[]Book]{SourceRemote, when(r.remote != nil, func() ([]Book, error) {
			books, err := r.remote.Books(ctx, bibleID)
			if err != nil {
				return nil, err
			}

			out := make([]Book, 0, len(books))
			for idx, b := range books {
				book := Book{ID: b.ID, Name: b.Name, Abbreviation: b.Abbreviation, Position: idx + 1}
				if known, ok := canon.ByUSFM(b.ID); ok {
					book.Position = known.Position
					book.Testament = known.Testament()
					book.Chapters = known.Chapters
				}

				out = append(out, book)
			}

			return out, nil
		})},
	)
}

// Chapters lists the chapters of a book given as USFM code or legacy number.
func (r *Resolver) Chapters(ctx context.Context, bibleID, bookID, lang string) (Result[[]Chapter], error) {
	bibleID = r.bibleID(bibleID)

	book, err := parseBook(bookID)
	if err != nil {
		return Result[[]Chapter]{}, err
	}

	primary := func() ([]Chapter, error) {
		rows, err := store.Chapters(r.db.WithContext(ctx), bibleID, book.USFM)
		if err != nil {
			return nil, err
		}

		out := make([]Chapter, 0, len(rows))
		for _, c := range rows {
			out = append(out, Chapter{ID: c.ChapterID, Number: c.Number, BookID: book.USFM})
		}

		return out, nil
	}

	return resolve("chapters", isEmpty[Chapter],
		step[[]Chapter]{SourcePrimary, when(r.hasPrimary(), primary)},
		step[[]Chapter]{SourceImport, when(r.canImport(), func() ([]Chapter, error) {
			if err := r.importChapters(ctx, bibleID, book.USFM); err != nil {
				return nil, err
			}

			return primary()
		})},
		step[[]Chapter]{SourceLegacy, when(r.hasLegacy(), func() ([]Chapter, error) {
			rows, err := r.legacy.Chapters(ctx, langCode(lang), book.Position)
			if err != nil {
				return nil, err
			}

			out := make([]Chapter, 0, len(rows))
			for _, c := range rows {
				out = append(out, Chapter{ID: chapterID(book, c.Number), Number: c.Number, BookID: book.USFM})
			}

			return out, nil
		})},
		step[[]Chapter]{SourceRemote, when(r.remote != nil, func() ([]Chapter, error) {
			chapters, err := r.remote.Chapters(ctx, bibleID, book.USFM)
			if err != nil {
				return nil, err
			}

			out := make([]Chapter, 0, len(chapters))
			for _, c := range chapters {
				n, _ := strconv.Atoi(c.Number)
				out = append(out, Chapter{ID: c.ID, Number: n, BookID: book.USFM})
			}

			return out, nil
		})},
	)
}

// Verses lists the verses of a chapter given as JHN.3 or 43-3.
func (r *Resolver) Verses(ctx context.Context, bibleID, chapter, lang string) (Result[[]Verse], error) {
	bibleID = r.bibleID(bibleID)

	book, number, err := parseChapter(chapter)
	if err != nil {
		return Result[[]Verse]{}, err
	}

	id := chapterID(book, number)
	primary := func() ([]Verse, error) {
		rows, err := store.Verses(r.db.WithContext(ctx), bibleID, id)

		return fromRows(rows), err
	}

	return resolve("verses", isEmpty[Verse],
		step[[]Verse]{SourcePrimary, when(r.hasPrimary(), primary)},
		step[[]Verse]{SourceImport, when(r.canImport(), func() ([]Verse, error) {
			if err := r.importVerses(ctx, bibleID, id); err != nil {
				return nil, err
			}

			return primary()
		})},
		step[[]Verse]{SourceLegacy, when(r.hasLegacy(), func() ([]Verse, error) {
			return r.legacyVerses(ctx, lang, canon.Reference{Book: book, Chapter: number})
		})},
		step[[]Verse]{SourceRemote, when(r.remote != nil, func() ([]Verse, error) {
			return r.remoteVerses(ctx, bibleID, id)
		})},
	)
}

// Verse returns one verse given as JHN.3.16 or 43:3:16.
func (r *Resolver) Verse(ctx context.Context, bibleID, verse, lang string) (Result[*Verse], error) {
	bibleID = r.bibleID(bibleID)

	ref, err := parseVerse(verse)
	if err != nil {
		return Result[*Verse]{}, err
	}

	id := verseID(ref.Book, ref.Chapter, ref.Verse)
	primary := func() (*Verse, error) {
		row, err := store.Verse(r.db.WithContext(ctx), bibleID, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil //nolint:nilnil
		}

		if err != nil {
			return nil, err
		}

		v := fromRow(*row)

		return &v, nil
	}

	return resolve("verse", func(v *Verse) bool { return v == nil },
		step[*Verse]{SourcePrimary, when(r.hasPrimary(), primary)},
		step[*Verse]{SourceImport, when(r.canImport(), func() (*Verse, error) {
			if err := r.importVerses(ctx, bibleID, ref.ChapterID()); err != nil {
				return nil, err
			}

			return primary()
		})},
		step[*Verse]{SourceLegacy, when(r.hasLegacy(), func() (*Verse, error) {
			verses, err := r.legacyVerses(ctx, lang, ref)
			if err != nil || len(verses) == 0 {
				return nil, err
			}

			return &verses[0], nil
		})},
		step[*Verse]{SourceRemote, when(r.remote != nil, func() (*Verse, error) {
			v, err := r.remote.Verse(ctx, bibleID, id)
			if err != nil {
				return nil, err
			}

			return &Verse{ID: v.ID, Number: canon.LastSegmentNumber(v.ID), Text: v.Content, Reference: v.Reference}, nil
		})},
	)
}

// Passage returns a chapter, verse or verse range given as JHN.3, JHN.3.16 or JHN.3.16-JHN.3.18.
func (r *Resolver) Passage(ctx context.Context, bibleID, passage, lang string) (Result[*Passage], error) {
	bibleID = r.bibleID(bibleID)

	ref, err := parsePassage(passage)
	if err != nil {
		return Result[*Passage]{}, err
	}

	primary := func() (*Passage, error) {
		return r.primaryPassage(ctx, bibleID, ref, lang)
	}

	return resolve("passage", func(p *Passage) bool { return p == nil || p.Content == "" },
		step[*Passage]{SourcePrimary, when(r.hasPrimary(), primary)},
		step[*Passage]{SourceImport, when(r.canImport(), func() (*Passage, error) {
			if err := r.importVerses(ctx, bibleID, ref.ChapterID()); err != nil {
				return nil, err
			}

			return primary()
		})},
		step[*Passage]{SourceLegacy, when(r.hasLegacy(), func() (*Passage, error) {
			verses, err := r.legacyVerses(ctx, lang, ref)
			if err != nil {
				return nil, err
			}

			return toPassage(ref, lang, verses), nil
		})},
		step[*Passage]{SourceRemote, when(r.remote != nil, func() (*Passage, error) {
			p, err := r.remote.Passage(ctx, bibleID, ref.PassageID())
			if err != nil {
				return nil, err
			}

			return &Passage{ID: p.ID, Reference: p.Reference, Content: p.Content}, nil
		})},
	)
}

func (r *Resolver) primaryPassage(ctx context.Context, bibleID string, ref canon.Reference, lang string) (*Passage, error) {
	var (
		rows []models.BibleVerse
		err  error
	)

	db := r.db.WithContext(ctx)

	switch {
	case ref.Verse == 0:
		rows, err = store.Verses(db, bibleID, ref.ChapterID())
	case ref.EndVerse > 0:
		rows, err = store.VerseRange(db, bibleID, ref.ChapterID(), ref.Verse, ref.EndVerse)
	default:
		rows, err = store.VerseRange(db, bibleID, ref.ChapterID(), ref.Verse, ref.Verse)
	}

	if err != nil {
		return nil, err
	}

	return toPassage(ref, lang, fromRows(rows)), nil
}

func (r *Resolver) legacyBooks(ctx context.Context, lang string) ([]Book, error) {
	rows, err := r.legacy.Books(ctx, langCode(lang))
	if err != nil {
		return nil, err
	}

	out := make([]Book, 0, len(rows))
	for _, b := range rows {
		book := Book{ID: strconv.Itoa(b.Liv), Name: b.Livro, Position: b.Liv}
		if known, ok := canon.ByPosition(b.Liv); ok {
			book.ID = known.USFM
			book.Testament = known.Testament()
			book.Chapters = known.Chapters
		}

		out = append(out, book)
	}

	return out, nil
}

// legacyVerses reads the chapter of ref and keeps the verses ref covers.
func (r *Resolver) legacyVerses(ctx context.Context, lang string, ref canon.Reference) ([]Verse, error) {
	lang = langCode(lang)

	rows, err := r.legacy.Verses(ctx, lang, ref.LegacyChapterID())
	if err != nil {
		return nil, err
	}

	out := []Verse{}

	for _, v := range rows {
		if !ref.Contains(v.Number) {
			continue
		}

		verseRef := canon.Reference{Book: ref.Book, Chapter: ref.Chapter, Verse: v.Number}
		out = append(out, Verse{
			ID:        verseID(ref.Book, ref.Chapter, v.Number),
			Number:    v.Number,
			Text:      v.Text,
			Reference: verseRef.Format(lang),
		})
	}

	return out, nil
}

// remoteVerses lists a chapter and fetches every verse text. Verses that fail are skipped.
func (r *Resolver) remoteVerses(ctx context.Context, bibleID, id string) ([]Verse, error) {
	listed, err := r.remote.Verses(ctx, bibleID, id)
	if err != nil {
		return nil, err
	}

	fetched := make([]*Verse, len(listed))

	var g errgroup.Group

	g.SetLimit(r.concurrency)

	for idx, v := range listed {
		g.Go(func() error {
			full, err := r.remote.Verse(ctx, bibleID, v.ID)
			if err != nil {
				log.Warn().Err(err).Str("verse_id", v.ID).Msg("skipping verse without content")

				return nil
			}

			fetched[idx] = &Verse{ID: v.ID, Number: canon.LastSegmentNumber(v.ID), Text: full.Content, Reference: v.Reference}

			return nil
		})
	}

	_ = g.Wait()

	out := make([]Verse, 0, len(fetched))

	for _, v := range fetched {
		if v != nil {
			out = append(out, *v)
		}
	}

	return out, nil
}

func (r *Resolver) importBooks(ctx context.Context, bibleID string) error {
	return imported(r.importer.ImportBooks(ctx, bibleID))
}

// importChapters imports the books first when the book is not imported yet.
func (r *Resolver) importChapters(ctx context.Context, bibleID, bookID string) error {
	res, err := r.importer.ImportChapters(ctx, bibleID, bookID)
	if err != nil {
		return err
	}

	if res.Success {
		return nil
	}

	if err = r.importBooks(ctx, bibleID); err != nil {
		return err
	}

	return imported(r.importer.ImportChapters(ctx, bibleID, bookID))
}

// importVerses imports the chapters (and books) first when the chapter is not imported yet.
func (r *Resolver) importVerses(ctx context.Context, bibleID, chapterID string) error {
	res, err := r.importer.ImportVerses(ctx, bibleID, chapterID)
	if err != nil {
		return err
	}

	if res.Success {
		return nil
	}

	book, ok := canon.BookFromID(chapterID)
	if !ok {
		return fmt.Errorf("%w: unknown book in %s", ErrBadID, chapterID)
	}

	if err = r.importChapters(ctx, bibleID, book.USFM); err != nil {
		return err
	}

	return imported(r.importer.ImportVerses(ctx, bibleID, chapterID))
}

func imported(res *importer.Result, err error) error {
	if err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("%w: %s", errImportFailed, res.Message)
	}

	return nil
}

func fromRow(v models.BibleVerse) Verse {
	return Verse{ID: v.VerseID, Number: v.Number, Text: v.Text, Reference: v.Reference}
}

func fromRows(rows []models.BibleVerse) []Verse {
	out := make([]Verse, 0, len(rows))
	for _, v := range rows {
		out = append(out, fromRow(v))
	}

	return out
}

func toPassage(ref canon.Reference, lang string, verses []Verse) *Passage {
	texts := make([]string, 0, len(verses))
	for _, v := range verses {
		texts = append(texts, v.Text)
	}

	return &Passage{
		ID:        ref.PassageID(),
		Reference: ref.Format(langCode(lang)),
		Content:   strings.Join(texts, " "),
		Verses:    verses,
	}
}
