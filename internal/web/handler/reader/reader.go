// Package reader renders the bible reader page.
package reader

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/bible"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/navigation"
)

const (
	// Path is the path of the reader page.
	Path = handler.RootPath + "bible"

	// TemplateName is the name of the reader template.
	TemplateName = "bible"

	defaultLang = "pt"
)

var errNilDeps = errors.New("reader: app or dependencies are nil")

// Service is the reader handler service.
type Service struct {
	resolver *bible.Resolver
}

// Handler is the reader handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the reader page.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Resolver == nil {
		return errNilDeps
	}

	s.resolver = deps.Resolver

	app.Get(Path, s.Get)

	return nil
}

// Get renders the book list of ?lang= and, with ?book= or ?chapter=, its chapters or verses.
func (s *Service) Get(c *fiber.Ctx) error {
	var (
		ctx       = c.UserContext()
		bibleID   = c.Query("bible")
		bookID    = c.Query("book")
		chapterID = c.Query("chapter")
		lang      = c.Query("lang", defaultLang)
		nav       = navigation.NewContext("Bíblia", "bible").AddBreadcrumb("Bíblia", Path, chapterID == "")
	)

	data := fiber.Map{
		"Navigation": nav,
		"Bible":      bibleID,
		"Lang":       lang,
		"Book":       bookID,
		"Chapter":    chapterID,
	}

	if versions, err := s.resolver.Versions(ctx); err == nil {
		data["Versions"] = versions.Data
	}

	books, err := s.resolver.LanguageBooks(ctx, lang)
	if err != nil {
		return s.unavailable(c, data, err)
	}

	data["Books"] = books.Data

	if bookID != "" {
		chapters, errChapters := s.resolver.Chapters(ctx, bibleID, bookID, lang)
		if errChapters != nil {
			return s.unavailable(c, data, errChapters)
		}

		data["Chapters"] = chapters.Data
	}

	if chapterID != "" {
		verses, errVerses := s.resolver.Verses(ctx, bibleID, chapterID, lang)
		if errVerses != nil {
			return s.unavailable(c, data, errVerses)
		}

		data["Verses"] = verses.Data
		data["Source"] = verses.Source

		nav.AddBreadcrumb(chapterID, "", true)
	}

	return c.Render(TemplateName, data, handler.BaseLayout)
}

func (s *Service) unavailable(c *fiber.Ctx, data fiber.Map, err error) error {
	status := fiber.StatusBadGateway
	msg := "Conteúdo bíblico indisponível"

	if errors.Is(err, bible.ErrBadID) {
		status = fiber.StatusBadRequest
		msg = "Referência inválida"
	} else {
		log.Error().Err(err).Msg("reader content unavailable")
	}

	data["error"] = msg

	return c.Status(status).Render(TemplateName, data, handler.BaseLayout)
}
