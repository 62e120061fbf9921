package functions

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/scripture"
)

const invalidActionMsg = "Ação inválida. Use 'import_books', 'import_chapters', 'import_verses' ou 'get_verse_content'."

type bibleImportRequest struct {
	BibleID   string `json:"bibleId"`
	BookID    string `json:"bookId"`
	ChapterID string `json:"chapterId"`
	VerseID   string `json:"verseId"`
}

// BibleImport runs the import named by the action query parameter.
// Answers 200 when the import succeeded and 400 otherwise.
func (s *Service) BibleImport(c *fiber.Ctx) error {
	var req bibleImportRequest
	if len(c.Body()) > 0 {
		if err := decode(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}

	ctx := c.UserContext()
	action := c.Query("action")

	var (
		result any
		ok     bool
		err    error
	)

	switch action {
	case "import_books":
		var r *importer.Result
		if r, err = s.importer.ImportBooks(ctx, req.BibleID); err == nil {
			result, ok = r, r.Success
		}
	case "import_chapters":
		var r *importer.Result
		if r, err = s.importer.ImportChapters(ctx, req.BibleID, req.BookID); err == nil {
			result, ok = r, r.Success
		}
	case "import_verses":
		var r *importer.Result
		if r, err = s.importer.ImportVerses(ctx, req.BibleID, req.ChapterID); err == nil {
			result, ok = r, r.Success
		}
	case "get_verse_content":
		var r *importer.VerseContent
		if r, err = s.importer.VerseContent(ctx, req.BibleID, req.VerseID); err == nil {
			result, ok = r, r.Success
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": invalidActionMsg})
	}

	if err != nil {
		log.Error().Err(err).Str("action", action).Str("bible_id", req.BibleID).Msg("import failed")

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": importMessage(err)})
	}

	status := fiber.StatusOK
	if !ok {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(result)
}

func importMessage(err error) string {
	var apiErr *scripture.APIError
	if errors.As(err, &apiErr) {
		return "Erro na API: " + http.StatusText(apiErr.Status)
	}

	return err.Error()
}
