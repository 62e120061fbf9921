package functions

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/legacy"
)

const defaultLanguage = "pt"

type bibleMySQLRequest struct {
	Action string `json:"action"`
	Params params `json:"params"`
}

// BibleMySQL answers {action, params} from the legacy database as {success, data} or {success, error}.
func (s *Service) BibleMySQL(c *fiber.Ctx) error {
	var req bibleMySQLRequest
	if err := decode(c.Body(), &req); err != nil {
		return mysqlError(c, err)
	}

	if req.Params == nil {
		req.Params = params{}
	}

	data, err := s.legacyAction(c, req)
	if err != nil {
		log.Error().Err(err).Str("action", req.Action).Msg("legacy database action failed")

		return mysqlError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

func (s *Service) legacyAction(c *fiber.Ctx, req bibleMySQLRequest) (any, error) {
	ctx := c.UserContext()
	p := req.Params

	lang := p.str("language")
	if lang == "" {
		lang = defaultLanguage
	}

	switch req.Action {
	case "getVersions":
		return s.legacy.Versions(ctx)
	case "getBooks":
		return s.legacy.Books(ctx, lang)
	case "getChapters":
		return s.legacy.Chapters(ctx, lang, p.int("bookId", 0))
	case "getVerses":
		return s.legacy.Verses(ctx, lang, p.str("chapterId"))
	case "search":
		searchLang := p.str("versionId")
		if searchLang == "" {
			searchLang = lang
		}

		return s.legacy.Search(ctx, p.str("query"), searchLang, p.int("limit", legacy.DefaultSearchLimit), p.int("offset", 0))
	default:
		return nil, fmt.Errorf("Ação não implementada: %s", req.Action) //nolint:err113,stylecheck
	}
}

func mysqlError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
}
