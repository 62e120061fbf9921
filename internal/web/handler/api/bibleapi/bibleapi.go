// Package bibleapi serves bible content under /api/v1/bible as {data, source}.
package bibleapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/bible"
	"github.com/biblia-online/biblia/internal/db/controller/searchhistory"
	"github.com/biblia-online/biblia/internal/versesapi"
	"github.com/biblia-online/biblia/internal/web/handler"
)

const (
	// Path is the route prefix of the bible api.
	Path = handler.APIPath + "/bible"
	// SearchPath is excluded from response caching because searches are recorded.
	SearchPath = Path + "/search"
	// LookupPath is excluded from response caching for the same reason.
	LookupPath = Path + "/lookup"

	defaultLang = "pt"
)

var errNilDeps = errors.New("bibleapi: app or dependencies are nil")

// Service is the bible api handler service.
type Service struct {
	resolver *bible.Resolver
	db       *gorm.DB
	now      func() time.Time
}

// Handler is the bible api handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the bible routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Resolver == nil {
		return errNilDeps
	}

	s.resolver = deps.Resolver
	s.db = deps.DB
	s.now = time.Now

	r := app.Group(Path)
	r.Get("/versions", s.Versions)
	r.Get("/books", s.Books)
	r.Get("/chapters", s.Chapters)
	r.Get("/verses", s.Verses)
	r.Get("/verse", s.Verse)
	r.Get("/passage", s.Passage)
	r.Get("/search", s.Search)
	r.Get("/lookup", s.Lookup)
	r.Get("/simple-verse", s.SimpleVerse)
	r.Get("/languages/:lang/books", s.LanguageBooks)
	r.Get("/daily-verse", s.DailyVerse)
	r.Get("/translations", s.Translations)

	return nil
}

// Versions lists the bible versions.
func (s *Service) Versions(c *fiber.Ctx) error {
	res, err := s.resolver.Versions(c.UserContext())

	return respond(c, res, err)
}

// Books lists the books of ?bible=.
func (s *Service) Books(c *fiber.Ctx) error {
	res, err := s.resolver.Books(c.UserContext(), c.Query("bible"), lang(c))

	return respond(c, res, err)
}

// Chapters lists the chapters of ?book= in ?bible=.
func (s *Service) Chapters(c *fiber.Ctx) error {
	res, err := s.resolver.Chapters(c.UserContext(), c.Query("bible"), c.Query("book"), lang(c))

	return respond(c, res, err)
}

// Verses lists the verses of ?chapter= in ?bible=.
func (s *Service) Verses(c *fiber.Ctx) error {
	res, err := s.resolver.Verses(c.UserContext(), c.Query("bible"), c.Query("chapter"), lang(c))

	return respond(c, res, err)
}

// Verse returns verse ?id= of ?bible=.
func (s *Service) Verse(c *fiber.Ctx) error {
	res, err := s.resolver.Verse(c.UserContext(), c.Query("bible"), c.Query("id"), lang(c))
	if err == nil && res.Data == nil {
		return handler.ErrorJSON(c, fiber.StatusNotFound, "Versículo não encontrado", nil)
	}

	return respond(c, res, err)
}

// Passage returns passage ?id= of ?bible=.
func (s *Service) Passage(c *fiber.Ctx) error {
	res, err := s.resolver.Passage(c.UserContext(), c.Query("bible"), c.Query("id"), lang(c))
	if err == nil && res.Data == nil {
		return handler.ErrorJSON(c, fiber.StatusNotFound, "Passagem não encontrada", nil)
	}

	return respond(c, res, err)
}

// Search finds verses containing ?q=. Searches of signed-in users are recorded.
func (s *Service) Search(c *fiber.Ctx) error {
	query := c.Query("q")

	res, err := s.resolver.Search(c.UserContext(), c.Query("bible"), query, lang(c),
		c.QueryInt("limit", bible.DefaultSearchLimit), c.QueryInt("offset"))
	if err == nil {
		s.record(c, query)
	}

	return respond(c, res, err)
}

// Lookup resolves ?q= as a reference or a keyword search.
func (s *Service) Lookup(c *fiber.Ctx) error {
	query := c.Query("q")

	res, err := s.resolver.Lookup(c.UserContext(), c.Query("bible"), query, lang(c),
		c.QueryInt("limit", bible.DefaultSearchLimit))
	if err == nil && res.Data.Kind == bible.LookupSearch {
		s.record(c, query)
	}

	return respond(c, res, err)
}

// SimpleVerse resolves ?reference= in ?translation=.
func (s *Service) SimpleVerse(c *fiber.Ctx) error {
	res, err := s.resolver.SimpleVerse(c.UserContext(), c.Query("reference"), c.Query("translation"))
	if err == nil && res.Data == nil {
		return handler.ErrorJSON(c, fiber.StatusNotFound, "Versículo não encontrado",
			"A referência bíblica informada não foi encontrada")
	}

	return respond(c, res, err)
}

// LanguageBooks groups the books of :lang by testament.
func (s *Service) LanguageBooks(c *fiber.Ctx) error {
	res, err := s.resolver.LanguageBooks(c.UserContext(), c.Params("lang"))

	return respond(c, res, err)
}

// DailyVerse returns the verse of the day.
func (s *Service) DailyVerse(c *fiber.Ctx) error {
	v := s.resolver.DailyVerse(c.UserContext(), s.now())

	return c.JSON(fiber.Map{"data": v, "source": v.Source})
}

// Translations lists the bible-api.com translations usable with /simple-verse, ?lang= filters.
func (s *Service) Translations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": versesapi.Translations(c.Query("lang"))})
}

// record stores the search of a signed-in user. Failures are only logged.
func (s *Service) record(c *fiber.Ctx, query string) {
	userID := handler.UserID(c)
	if userID == 0 || s.db == nil {
		return
	}

	if err := searchhistory.Record(s.db, userID, query, c.Query("bible")); err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Msg("failed to record search")
	}
}

func lang(c *fiber.Ctx) string {
	return c.Query("lang", defaultLang)
}

func respond[T any](c *fiber.Ctx, res bible.Result[T], err error) error {
	switch {
	case err == nil:
		return c.JSON(res)
	case errors.Is(err, bible.ErrEmptyQuery), errors.Is(err, bible.ErrBadID):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Invalid request", err.Error())
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("bible content unavailable")

		return handler.ErrorJSON(c, fiber.StatusBadGateway, "Conteúdo bíblico indisponível", err.Error())
	}
}
