package functions

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
	"github.com/biblia-online/biblia/internal/web/handler"
)

const (
	endpointSimpleVerse = "/simple-verse"
	errBibleAPI         = "Erro ao acessar a API da Bíblia"
)

type bibleAPIRequest struct {
	Endpoint string `json:"endpoint"`
	Params   params `json:"params"`
}

// endpoint maps a proxy endpoint to a scripture api path.
type endpoint struct {
	required   []string
	missingMsg string
	content    bool
	path       func(p params) string
	query      func(p params) url.Values
}

var endpoints = map[string]endpoint{ //nolint:gochecknoglobals
	"/versions": {
		path: func(params) string { return "/bibles" },
	},
	"/books": {
		required:   []string{"bibleId"},
		missingMsg: "Parâmetro bibleId é obrigatório",
		path: func(p params) string {
			return fmt.Sprintf("/bibles/%s/books", url.PathEscape(p.str("bibleId")))
		},
	},
	"/chapters": {
		required:   []string{"bibleId", "bookId"},
		missingMsg: "Parâmetros bibleId e bookId são obrigatórios",
		path: func(p params) string {
			return fmt.Sprintf("/bibles/%s/books/%s/chapters", url.PathEscape(p.str("bibleId")), url.PathEscape(p.str("bookId")))
		},
	},
	"/verses": {
		required:   []string{"bibleId", "chapterId"},
		missingMsg: "Parâmetros bibleId e chapterId são obrigatórios",
		content:    true,
		path: func(p params) string {
			return fmt.Sprintf("/bibles/%s/chapters/%s/verses", url.PathEscape(p.str("bibleId")), url.PathEscape(p.str("chapterId")))
		},
	},
	"/verse": {
		required:   []string{"bibleId", "verseId"},
		missingMsg: "Parâmetros bibleId e verseId são obrigatórios",
		content:    true,
		path: func(p params) string {
			return fmt.Sprintf("/bibles/%s/verses/%s", url.PathEscape(p.str("bibleId")), url.PathEscape(p.str("verseId")))
		},
	},
	"/search": {
		required:   []string{"bibleId", "query"},
		missingMsg: "Parâmetros bibleId e query são obrigatórios",
		path: func(p params) string {
			return fmt.Sprintf("/bibles/%s/search", url.PathEscape(p.str("bibleId")))
		},
		query: func(p params) url.Values {
			q := url.Values{"query": {p.str("query")}}

			for _, key := range []string{"limit", "offset"} {
				if v := p.str(key); v != "" && v != "0" {
					q.Set(key, v)
				}
			}

			return q
		},
	},
	"/passage": {
		required:   []string{"bibleId", "passageId"},
		missingMsg: "Parâmetros bibleId e passageId são obrigatórios",
		content:    true,
		path: func(p params) string {
			return fmt.Sprintf("/bibles/%s/passages/%s", url.PathEscape(p.str("bibleId")), url.PathEscape(p.str("passageId")))
		},
	},
}

// BibleAPI proxies {endpoint, params} to the scripture api, or to bible-api.com for /simple-verse.
func (s *Service) BibleAPI(c *fiber.Ctx) error {
	var req bibleAPIRequest
	if err := decode(c.Body(), &req); err != nil {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if req.Endpoint == "" {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Missing endpoint parameter", nil)
	}

	if req.Endpoint == endpointSimpleVerse {
		return s.simpleVerse(c, req.Params)
	}

	ep, ok := endpoints[req.Endpoint]
	if !ok {
		return handler.ErrorJSON(c, fiber.StatusNotFound, "Endpoint não suportado", nil)
	}

	for _, key := range ep.required {
		if req.Params.str(key) == "" {
			return handler.ErrorJSON(c, fiber.StatusBadRequest, ep.missingMsg, nil)
		}
	}

	var q url.Values
	if ep.query != nil {
		q = ep.query(req.Params)
	}

	if ep.content {
		q = scripture.WithIncludeContent(q)
	}

	body, err := s.scripture.Raw(c.UserContext(), ep.path(req.Params), q)
	if err != nil {
		var apiErr *scripture.APIError
		if errors.As(err, &apiErr) {
			log.Error().Int("status", apiErr.Status).Str("endpoint", req.Endpoint).Msg("scripture api error")

			return handler.ErrorJSON(c, apiErr.Status, errBibleAPI, apiErr.Body)
		}

		log.Error().Err(err).Str("endpoint", req.Endpoint).Msg("scripture api request failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, err.Error(), nil)
	}

	return sendRaw(c, fiber.StatusOK, body)
}

func (s *Service) simpleVerse(c *fiber.Ctx, p params) error {
	reference := p.str("reference")
	if reference == "" {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Parâmetro reference é obrigatório", nil)
	}

	body, err := s.verses.Raw(c.UserContext(), reference, p.str("translation"))
	if err == nil {
		return sendRaw(c, fiber.StatusOK, body)
	}

	var statusErr *versesapi.StatusError

	switch {
	case errors.Is(err, versesapi.ErrVerseNotFound):
		return handler.ErrorJSON(c, fiber.StatusNotFound, "Versículo não encontrado",
			"A referência bíblica informada não foi encontrada")
	case errors.As(err, &statusErr):
		return handler.ErrorJSON(c, statusErr.Status, errBibleAPI, fmt.Sprintf("Status: %d", statusErr.Status))
	default:
		log.Error().Err(err).Str("reference", reference).Msg("bible-api.com request failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, errBibleAPI, err.Error())
	}
}
