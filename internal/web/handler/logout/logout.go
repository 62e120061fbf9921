// Package logout ends sessions of local and OIDC accounts.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/login"
	"github.com/biblia-online/biblia/internal/web/session"
)

// Path is the path of the logout route.
const Path = handler.RootPath + "logout"

var errNilDeps = errors.New("logout: app or config is nil")

// EndSessionURL returns the identity provider logout url for an ID token, "" when there is none.
type EndSessionURL func(idToken string) string

// Service is the logout handler service.
type Service struct {
	cfg        *config.Config
	endSession EndSessionURL
}

// Handler is the logout handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the logout handler. endSession may be nil.
func (s *Service) Init(app *fiber.App, deps *handler.Deps, endSession EndSessionURL) error {
	if app == nil || deps == nil || deps.Config == nil {
		return errNilDeps
	}

	s.cfg = deps.Config
	s.endSession = endSession

	// logout route (outside auth middleware protection)
	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout deletes the session and clears the cookie. OIDC sessions continue at the
// provider end session endpoint when it has one.
func (s *Service) Logout(c *fiber.Ctx) error {
	sess, _ := session.Current(c)

	if err := session.End(c, s.cfg.DevMode); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	if sess != nil && sess.IDToken != "" && s.endSession != nil {
		if u := s.endSession(sess.IDToken); u != "" {
			return c.Redirect(u)
		}
	}

	return c.Redirect(login.Path)
}
