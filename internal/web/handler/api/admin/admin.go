// Package admin serves the administrator api: content imports and account management.
package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/web/handler"
)

const (
	// Path is the route prefix of the admin api.
	Path = handler.APIPath + "/admin"
	// ImportPath runs imports.
	ImportPath = Path + "/import"
	// UsersPath manages accounts.
	UsersPath = Path + "/users"

	// DefaultPageSize of the user listing.
	DefaultPageSize = 25
	maxPageSize     = 100
)

var errNilDeps = errors.New("admin: app or dependencies are nil")

// Service is the admin handler service.
type Service struct {
	db       *gorm.DB
	auth     *auth.Service
	local    *auth.LocalProvider
	importer *importer.Importer
}

// Handler is the admin handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the admin routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil || deps.Auth == nil || deps.Importer == nil {
		return errNilDeps
	}

	s.db = deps.DB
	s.auth = deps.Auth
	s.local = auth.NewLocalProvider(deps.DB)
	s.importer = deps.Importer

	app.Post(ImportPath+"/:kind", auth.RequireAllPermissions(s.auth, auth.PermBibleImport, auth.PermBibleRead), s.Import)

	users := app.Group(UsersPath, auth.RequirePermission(s.auth, auth.PermAdminUsers))
	users.Get("", s.Users)
	users.Put("/:id/active", s.SetActive)
	users.Put("/:id/role", s.SetRole)
	users.Post("/:id/password", s.ResetPassword)

	return nil
}

type importRequest struct {
	BibleID   string `json:"bibleId" validate:"required"`
	BookID    string `json:"bookId"`
	ChapterID string `json:"chapterId"`
}

// Import runs the import named by :kind (books, chapters or verses).
func (s *Service) Import(c *fiber.Ctx) error {
	var req importRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()

	var (
		res *importer.Result
		err error
	)

	switch kind := c.Params("kind"); kind {
	case "books":
		res, err = s.importer.ImportBooks(ctx, req.BibleID)
	case "chapters":
		res, err = s.importer.ImportChapters(ctx, req.BibleID, req.BookID)
	case "verses":
		res, err = s.importer.ImportVerses(ctx, req.BibleID, req.ChapterID)
	default:
		return handler.ErrorJSON(c, fiber.StatusNotFound, "Unknown import", kind)
	}

	switch {
	case errors.Is(err, importer.ErrMissingBibleID), errors.Is(err, importer.ErrMissingBookID),
		errors.Is(err, importer.ErrMissingChapterID):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	case err != nil:
		log.Error().Err(err).Str("bible_id", req.BibleID).Msg("admin import failed")

		return handler.ErrorJSON(c, fiber.StatusBadGateway, "Import failed", err.Error())
	}

	log.Info().Uint64("user_id", handler.UserID(c)).Str("bible_id", req.BibleID).
		Int("count", res.Count).Msg("admin import finished")

	status := fiber.StatusOK
	if !res.Success {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(res)
}
