// Package scriptureapi serves the administrator page editing the scripture api connection.
package scriptureapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	controller "github.com/biblia-online/biblia/internal/db/controller/scriptureapi"
	"github.com/biblia-online/biblia/internal/db/controller/setting"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/navigation"
)

const (
	// Path is the path to the scripture api settings page.
	Path = handler.RootPath + "admin/settings/scripture-api"

	// ResetPath drops the stored settings in favour of the config file.
	ResetPath = Path + "/reset"

	// TemplateName is the name of the scripture api settings template.
	TemplateName = "admin/settings/scripture-api"
)

var errNilDeps = errors.New("scriptureapi: app or dependencies are nil")

// Service is the scripture api settings handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	client    *scripture.Client
	validator *validator.Validate
}

// Handler is the scripture api settings handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the scripture api settings handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.DB == nil || deps.Auth == nil {
		return errNilDeps
	}

	s.db = deps.DB
	s.cfg = deps.Config
	s.client = deps.Scripture
	s.validator = validator.New()

	app.Get(Path, auth.RequirePermission(deps.Auth, auth.PermAdminSettings), s.Get)
	app.Post(Path, auth.RequirePermission(deps.Auth, auth.PermAdminSettings), s.Post)
	app.Post(ResetPath, auth.RequirePermission(deps.Auth, auth.PermAdminSettings), s.Reset)

	return nil
}

func navigationContext() *navigation.Context {
	return navigation.NewContext("API da Bíblia", "settings").
		AddBreadcrumb("Configurações", "", false).
		AddBreadcrumb("API da Bíblia", Path, true)
}

// Get renders the settings form, falling back to the config file values when nothing was saved yet.
func (s *Service) Get(c *fiber.Ctx) error {
	settings := &controller.Settings{}
	if err := settings.Load(s.db); err != nil {
		if !errors.Is(err, setting.ErrSettingNotFound) {
			log.Error().Err(err).Msg("failed to load scripture api settings")

			return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
		}

		log.Debug().Msg("scripture api settings not found, rendering config defaults")

		settings.BaseURL = s.cfg.Scripture.BaseURL
		settings.DefaultBibleID = s.cfg.Scripture.DefaultBibleID
	}

	return c.Render(TemplateName, fiber.Map{
		"Settings":   settings,
		"Navigation": navigationContext(),
	}, handler.BaseLayout)
}

// Post validates and stores the settings, then reconfigures the running client.
func (s *Service) Post(c *fiber.Ctx) error {
	nav := navigationContext()

	settings := &controller.Settings{}
	if err := c.BodyParser(settings); err != nil {
		log.Error().Err(err).Msg("failed to parse scripture api settings form")

		return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
			"Settings":   settings,
			"Navigation": nav,
			"error":      "Dados do formulário inválidos",
		}, handler.BaseLayout)
	}

	if err := s.validator.Struct(settings); err != nil {
		var validationErrors validator.ValidationErrors
		errors.As(err, &validationErrors)

		fields := make([]string, len(validationErrors))
		for i, ve := range validationErrors {
			fields[i] = ve.Field()
		}

		log.Warn().Strs("fields", fields).Msg("validation failed for scripture api settings")

		return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
			"Settings":   settings,
			"Navigation": nav,
			"error":      "Campos inválidos",
			"Fields":     fields,
		}, handler.BaseLayout)
	}

	if err := settings.Save(s.db); err != nil {
		log.Error().Err(err).Msg("failed to save scripture api settings")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
			"Settings":   settings,
			"Navigation": nav,
			"error":      "Falha ao salvar as configurações",
		}, handler.BaseLayout)
	}

	if s.client != nil {
		s.client.Configure(settings.BaseURL, settings.APIKey, settings.DefaultBibleID)
	}

	log.Info().Str("base_url", settings.BaseURL).Str("default_bible_id", settings.DefaultBibleID).
		Msg("scripture api settings saved")

	return c.Render(TemplateName, fiber.Map{
		"Settings":   settings,
		"Navigation": nav,
		"Success":    "Configurações salvas",
	}, handler.BaseLayout)
}

// Reset deletes the stored settings and reconfigures the client from the config file.
func (s *Service) Reset(c *fiber.Ctx) error {
	if err := controller.Reset(s.db); err != nil {
		log.Error().Err(err).Msg("failed to reset scripture api settings")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to reset settings")
	}

	if s.client != nil {
		s.client.Configure(s.cfg.Scripture.BaseURL, s.cfg.Scripture.APIKey, s.cfg.Scripture.DefaultBibleID)
	}

	log.Info().Msg("scripture api settings reset to config file")

	return c.Redirect(Path, fiber.StatusSeeOther)
}
