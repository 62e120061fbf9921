// Package home renders the landing page with the verse of the day.
package home

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/biblia-online/biblia/internal/bible"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/navigation"
)

const (
	// Path is the path of the home page.
	Path = handler.RootPath

	// TemplateName is the name of the home template.
	TemplateName = "index"
)

var errNilDeps = errors.New("home: app or dependencies are nil")

// Service is the home page handler service.
type Service struct {
	cfg      *config.Config
	resolver *bible.Resolver
	now      func() time.Time
}

// Handler is the home page handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the home page.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.Resolver == nil {
		return errNilDeps
	}

	s.cfg = deps.Config
	s.resolver = deps.Resolver
	s.now = time.Now

	app.Get(Path, s.Get)

	return nil
}

// Get renders the verse of the day.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{
		"Title":      s.cfg.Title,
		"DailyVerse": s.resolver.DailyVerse(c.UserContext(), s.now()),
		"Navigation": navigation.NewContext("Início", "home"),
	}, handler.BaseLayout)
}
