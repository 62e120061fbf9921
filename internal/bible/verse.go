package bible

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/bible/canon"
	"github.com/biblia-online/biblia/internal/versesapi"
)

const dateLayout = "2006-01-02"

// SimpleVerse looks up a free form reference ("João 3:16") on bible-api.com,
// then in the primary and legacy databases.
func (r *Resolver) SimpleVerse(ctx context.Context, reference, translation string) (Result[*VerseText], error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Result[*VerseText]{}, ErrEmptyQuery
	}

	if translation == "" && r.verses != nil {
		translation = r.verses.DefaultTranslation()
	}

	lang := "pt"
	if t, ok := versesapi.LookupTranslation(translation); ok {
		lang = t.Language
	}

	ref, refErr := canon.ParseReference(reference)
	local := func(fetch func() ([]Verse, error)) func() (*VerseText, error) {
		return func() (*VerseText, error) {
			if refErr != nil {
				return nil, refErr
			}

			verses, err := fetch()
			if err != nil {
				return nil, err
			}

			p := toPassage(ref, lang, verses)

			return &VerseText{Reference: p.Reference, Text: p.Content, Translation: translation}, nil
		}
	}

	return resolve("simple_verse", func(v *VerseText) bool { return v == nil || v.Text == "" },
		step[*VerseText]{SourceBibleAPI, when(r.verses != nil, func() (*VerseText, error) {
			res, err := r.verses.Lookup(ctx, reference, translation)
			if err != nil {
				return nil, err
			}

			return &VerseText{Reference: res.Reference, Text: res.Text, Translation: res.TranslationName}, nil
		})},
		step[*VerseText]{SourcePrimary, when(r.hasPrimary(), local(func() ([]Verse, error) {
			p, err := r.primaryPassage(ctx, r.bibleID(""), ref, lang)
			if err != nil {
				return nil, err
			}

			return p.Verses, nil
		}))},
		step[*VerseText]{SourceLegacy, when(r.hasLegacy(), local(func() ([]Verse, error) {
			return r.legacyVerses(ctx, lang, ref)
		}))},
	)
}

// LanguageBooks groups the books of a language by testament, from the legacy
// tables or the canon when those are not available.
func (r *Resolver) LanguageBooks(ctx context.Context, lang string) (Result[TestamentBooks], error) {
	res, err := resolve("language_books", isEmpty[Book],
		step[[]Book]{SourceLegacy, when(r.hasLegacy(), func() ([]Book, error) {
			return r.legacyBooks(ctx, lang)
		})},
		step[[]Book]{SourceStatic, func() ([]Book, error) {
			all := canon.All()
			out := make([]Book, 0, len(all))

			for _, b := range all {
				abv := ""
				if canon.IsPortuguese(langCode(lang)) {
					abv = b.PortugueseAbv
				}

				out = append(out, Book{
					ID: b.USFM, Name: b.Name(langCode(lang)), Abbreviation: abv,
					Testament: b.Testament(), Position: b.Position, Chapters: b.Chapters,
				})
			}

			return out, nil
		}},
	)
	if err != nil {
		return Result[TestamentBooks]{}, err
	}

	grouped := TestamentBooks{canon.OldTestament: {}, canon.NewTestament: {}}

	for _, b := range res.Data {
		testament := b.Testament
		if testament == "" {
			testament = canon.NewTestament
		}

		grouped[testament] = append(grouped[testament], b)
	}

	return Result[TestamentBooks]{Data: grouped, Source: res.Source}, nil
}

// DailyVerse returns the verse of day. The pick depends only on the day of year;
// resolved verses are cached until the day changes, the static fallback for
// dailyFallbackTTL. Concurrent callers share one lookup.
func (r *Resolver) DailyVerse(ctx context.Context, day time.Time) DailyVerse {
	date := day.Format(dateLayout)

	if dv, ok := r.cachedDaily(date); ok {
		return dv
	}

	v, _, _ := r.dailyGroup.Do(date, func() (any, error) {
		if dv, ok := r.cachedDaily(date); ok {
			return dv, nil
		}

		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dailyLookupTimeout)
		defer cancel()

		dv, resolved := r.resolveDaily(lookupCtx, day, date)

		ttl := dailyFallbackTTL
		if resolved {
			ttl = 24 * time.Hour
		}

		r.dailyMu.Lock()
		r.daily = &dv
		r.dailyExpires = time.Now().Add(ttl)
		r.dailyMu.Unlock()

		return dv, nil
	})

	return v.(DailyVerse) //nolint:forcetypeassert
}

const (
	dailyFallbackTTL   = 5 * time.Minute
	dailyLookupTimeout = 30 * time.Second
)

func (r *Resolver) cachedDaily(date string) (DailyVerse, bool) {
	r.dailyMu.Lock()
	defer r.dailyMu.Unlock()

	if r.daily == nil || r.daily.Date != date || time.Now().After(r.dailyExpires) {
		return DailyVerse{}, false
	}

	return *r.daily, true
}

func (r *Resolver) resolveDaily(ctx context.Context, day time.Time, date string) (DailyVerse, bool) {
	entry := dailyVerses[(day.YearDay()-1)%len(dailyVerses)]
	out := DailyVerse{Date: date, Reference: entry.reference, Text: entry.text, Version: entry.version, Source: SourceStatic}

	res, err := r.SimpleVerse(ctx, entry.reference, "")
	if err != nil || res.Data == nil || res.Data.Text == "" {
		log.Warn().Err(err).Str("reference", entry.reference).Msg("daily verse served from static text")

		return out, false
	}

	out.Text = res.Data.Text
	out.Source = res.Source

	if res.Data.Translation != "" {
		out.Version = res.Data.Translation
	}

	return out, true
}
