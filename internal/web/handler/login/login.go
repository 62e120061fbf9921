package login

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = handler.RootPath + "login"

	// RegisterPath is the path to the sign-up page.
	RegisterPath = handler.RootPath + "register"

	// TemplateName is the name of the login template.
	TemplateName = "login"

	// RegisterTemplateName is the name of the sign-up template.
	RegisterTemplateName = "register"

	// AfterLoginPath is where signed-in users land.
	AfterLoginPath = handler.RootPath

	defaultSessionExpiry = 24 * time.Hour
)

var errNilDeps = errors.New("login: app or dependencies are nil")

// Service is the login handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	local *auth.LocalProvider
	totp  *auth.TOTP
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

type loginForm struct {
	Email    string `form:"email"    validate:"required"`
	Password string `form:"password" validate:"required"`
	Code     string `form:"code"`
}

// Init initializes the login and sign-up pages.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.DB == nil {
		return errNilDeps
	}

	s.db = deps.DB
	s.cfg = deps.Config
	s.local = auth.NewLocalProvider(deps.DB)
	s.totp = auth.NewTOTP(deps.DB, deps.Config.Auth.TOTP.Issuer)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	app.Route(RegisterPath, func(router fiber.Router) {
		router.Get(handler.RootPath, s.GetRegister)
		router.Post(handler.RootPath, s.PostRegister)
	})

	return nil
}

// binding returns the template data shared by the login and sign-up pages.
func (s *Service) binding(extra fiber.Map) fiber.Map {
	m := fiber.Map{
		"local_db_enabled": s.cfg.Auth.LocalDB.Enabled,
		"oidc_enabled":     s.cfg.Auth.OIDC.Enabled,
		"registration":     s.cfg.Auth.LocalDB.Enabled && s.cfg.Auth.Registration,
		"Title":            s.cfg.Title,
	}

	for k, v := range extra {
		m[k] = v
	}

	return m
}

func (s *Service) renderError(c *fiber.Ctx, err error, form *loginForm) error {
	extra := fiber.Map{"error": err.Error()}
	if form != nil {
		extra["Email"] = form.Email
		extra["totp_required"] = errors.Is(err, ErrTOTPCode)
	}

	return c.Render(TemplateName, s.binding(extra))
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled && !s.cfg.Auth.OIDC.Enabled {
		return c.Render(TemplateName, s.binding(fiber.Map{"error": ErrNoAuthMethod.Error()}))
	}

	return c.Render(TemplateName, s.binding(nil))
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled {
		return s.renderError(c, ErrLocalAuthDisabled, nil)
	}

	form := new(loginForm)
	if err := c.BodyParser(form); err != nil || len(handler.Validate(form)) > 0 {
		return s.renderError(c, ErrInvalidFormData, form)
	}

	user, err := s.authenticate(form)
	if err != nil {
		log.Warn().Err(err).Str("email", auth.NormalizeEmail(form.Email)).Msg("failed login")

		return s.renderError(c, err, form)
	}

	if err = session.Start(c, &session.Data{User: *user}, s.expiry(), s.cfg.DevMode); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.renderError(c, ErrInternalServerError, form)
	}

	log.Info().Uint64("user_id", user.ID).Msg("user signed in")

	return c.Redirect(AfterLoginPath)
}

// authenticate checks the password and, for accounts with two-factor auth, the code.
func (s *Service) authenticate(form *loginForm) (*models.User, error) {
	user, err := s.local.Authenticate(form.Email, form.Password)

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		return nil, ErrInvalidCredentials
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return nil, ErrAccountDisabled
	default:
		log.Error().Err(err).Msg("local authentication failed")

		return nil, ErrInternalServerError
	}

	if err = s.totp.Verify(user, strings.TrimSpace(form.Code)); err != nil {
		return nil, ErrTOTPCode
	}

	return user, nil
}

func (s *Service) expiry() time.Duration {
	if s.cfg.Webserver.Session.ExpiryTime > 0 {
		return s.cfg.Webserver.Session.ExpiryTime
	}

	return defaultSessionExpiry
}
