// Package library serves the favorites, highlights and search history of the signed-in user.
package library

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/db/controller/favorite"
	"github.com/biblia-online/biblia/internal/db/controller/highlight"
	"github.com/biblia-online/biblia/internal/db/controller/searchhistory"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/handler"
)

const (
	// FavoritesPath lists and saves favorite verses.
	FavoritesPath = handler.APIPath + "/favorites"
	// HighlightsPath lists and creates highlights.
	HighlightsPath = handler.APIPath + "/highlights"
	// SearchesPath lists the search history.
	SearchesPath = handler.APIPath + "/searches"
)

var errNilDeps = errors.New("library: app or dependencies are nil")

// Service is the library handler service.
type Service struct {
	db *gorm.DB
}

// Handler is the library handler.
var Handler = Service{} //nolint:gochecknoglobals

type favoriteRequest struct {
	Reference string `json:"reference" validate:"required,max=128"`
	Version   string `json:"version" validate:"max=64"`
	Text      string `json:"text"`
}

type highlightRequest struct {
	VerseID   string `json:"verse_id" validate:"required,max=48"`
	Reference string `json:"reference" validate:"max=128"`
	Content   string `json:"content"`
	Color     string `json:"color" validate:"required,oneof=yellow green blue pink purple"`
}

// Init registers the library routes. Every route requires a signed-in user.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil {
		return errNilDeps
	}

	s.db = deps.DB

	signedIn := auth.RequireAuthenticated()

	app.Get(FavoritesPath, signedIn, s.Favorites)
	app.Post(FavoritesPath, signedIn, s.SaveFavorite)
	app.Delete(FavoritesPath+"/:id", signedIn, s.DeleteFavorite)

	app.Get(HighlightsPath, signedIn, s.Highlights)
	app.Post(HighlightsPath, signedIn, s.CreateHighlight)
	app.Delete(HighlightsPath+"/:id", signedIn, s.DeleteHighlight)

	app.Get(SearchesPath, signedIn, s.Searches)

	return nil
}

// Favorites lists the favorites, newest first.
func (s *Service) Favorites(c *fiber.Ctx) error {
	out, err := favorite.List(s.db, handler.UserID(c))
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, out)
}

// SaveFavorite stores a verse given as {reference "João 3:16", version, text}.
func (s *Service) SaveFavorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	f, err := favorite.Save(s.db, handler.UserID(c), req.Reference, req.Version, req.Text)
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": f})
}

// DeleteFavorite removes a favorite of the user.
func (s *Service) DeleteFavorite(c *fiber.Ctx) error {
	if err := favorite.Delete(s.db, handler.UserID(c), c.Params("id")); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Highlights lists the highlights, or those within ?chapter=JHN.3 ordered by verse.
func (s *Service) Highlights(c *fiber.Ctx) error {
	var (
		out []models.HighlightedVerse
		err error
	)

	if chapter := c.Query("chapter"); chapter != "" {
		out, err = highlight.InChapter(s.db, handler.UserID(c), chapter)
	} else {
		out, err = highlight.List(s.db, handler.UserID(c))
	}

	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, out)
}

// CreateHighlight marks a verse.
func (s *Service) CreateHighlight(c *fiber.Ctx) error {
	var req highlightRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	h, err := highlight.Create(s.db, handler.UserID(c), req.VerseID, req.Reference, req.Content,
		models.HighlightColor(req.Color))
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": h})
}

// DeleteHighlight removes a highlight of the user.
func (s *Service) DeleteHighlight(c *fiber.Ctx) error {
	id, ok := handler.ParamUint(c, "id")
	if !ok {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Invalid id", nil)
	}

	if err := highlight.Delete(s.db, handler.UserID(c), id); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Searches lists the latest searches, ?limit= defaults to 20.
func (s *Service) Searches(c *fiber.Ctx) error {
	out, err := searchhistory.List(s.db, handler.UserID(c), c.QueryInt("limit", searchhistory.DefaultLimit))
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, out)
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, favorite.ErrInvalidReference),
		errors.Is(err, highlight.ErrInvalidColor),
		errors.Is(err, highlight.ErrVerseIDEmpty):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, favorite.ErrNotFound), errors.Is(err, highlight.ErrNotFound):
		return handler.ErrorJSON(c, fiber.StatusNotFound, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("library operation failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
}
