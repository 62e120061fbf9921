package bible

import (
	"context"
	"strconv"
	"strings"

	"github.com/biblia-online/biblia/internal/bible/canon"
	store "github.com/biblia-online/biblia/internal/db/controller/bible"
)

// DefaultSearchLimit applies when a search names no limit.
const DefaultSearchLimit = 10

// Search finds verses containing query.
func (r *Resolver) Search(ctx context.Context, bibleID, query, lang string, limit, offset int) (Result[*SearchResult], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result[*SearchResult]{}, ErrEmptyQuery
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if offset < 0 {
		offset = 0
	}

	bibleID = r.bibleID(bibleID)

	return resolve("search", func(s *SearchResult) bool { return s == nil || len(s.Verses) == 0 },
		step[*SearchResult]{SourcePrimary, when(r.hasPrimary(), func() (*SearchResult, error) {
			rows, total, err := store.Search(r.db.WithContext(ctx), bibleID, query, limit, offset)
			if err != nil {
				return nil, err
			}

			out := &SearchResult{Query: query, Total: int(total), Verses: make([]SearchHit, 0, len(rows))}
			for _, v := range rows {
				out.Verses = append(out.Verses, SearchHit{ID: v.VerseID, Reference: v.Reference, Text: v.Text})
			}

			return out, nil
		})},
		step[*SearchResult]{SourceLegacy, when(r.hasLegacy(), func() (*SearchResult, error) {
			res, err := r.legacy.Search(ctx, query, langCode(lang), limit, offset)
			if err != nil {
				return nil, err
			}

			out := &SearchResult{Query: query, Total: res.Total, Verses: make([]SearchHit, 0, len(res.Verses))}
			for _, v := range res.Verses {
				out.Verses = append(out.Verses, SearchHit{ID: strconv.Itoa(v.ID), Reference: v.Reference, Text: v.Text})
			}

			return out, nil
		})},
		step[*SearchResult]{SourceRemote, when(r.remote != nil, func() (*SearchResult, error) {
			res, err := r.remote.Search(ctx, bibleID, query, limit, offset)
			if err != nil {
				return nil, err
			}

			out := &SearchResult{Query: query, Total: res.Total, Verses: make([]SearchHit, 0, len(res.Verses))}
			for _, v := range res.Verses {
				out.Verses = append(out.Verses, SearchHit{ID: v.ID, Reference: v.Reference, Text: v.Text})
			}

			return out, nil
		})},
	)
}

// Lookup answers a reader query: references such as "João 3:16" or "Salmos 23"
// resolve to a passage, anything else is a keyword search.
func (r *Resolver) Lookup(ctx context.Context, bibleID, query, lang string, limit int) (Result[Lookup], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result[Lookup]{}, ErrEmptyQuery
	}

	if ref, err := canon.ParseReference(query); err == nil {
		res, err := r.Passage(ctx, bibleID, ref.PassageID(), lang)
		if err != nil {
			return Result[Lookup]{}, err
		}

		return Result[Lookup]{Data: Lookup{Kind: LookupPassage, Passage: res.Data}, Source: res.Source}, nil
	}

	res, err := r.Search(ctx, bibleID, query, lang, limit, 0)
	if err != nil {
		return Result[Lookup]{}, err
	}

	return Result[Lookup]{Data: Lookup{Kind: LookupSearch, Search: res.Data}, Source: res.Source}, nil
}
