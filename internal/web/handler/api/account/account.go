// Package account serves sign-up, sign-in and the profile of the signed-in user.
package account

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/session"
)

const (
	// AuthPath is the route prefix of sign-up and sign-in.
	AuthPath = handler.APIPath + "/auth"
	// ProfilePath is the route prefix of the profile of the signed-in user.
	ProfilePath = handler.APIPath + "/profile"

	defaultSessionExpiry = 24 * time.Hour
)

var errNilDeps = errors.New("account: app or dependencies are nil")

// Service is the account handler service.
type Service struct {
	cfg    *config.Config
	auth   *auth.Service
	local  *auth.LocalProvider
	totp   *auth.TOTP
	expiry time.Duration
}

// Handler is the account handler.
var Handler = Service{} //nolint:gochecknoglobals

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code"`
}

type profileRequest struct {
	Username  string `json:"username" validate:"max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

type passwordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// Init registers the account routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.DB == nil {
		return errNilDeps
	}

	s.cfg = deps.Config
	s.auth = deps.Auth
	s.local = auth.NewLocalProvider(deps.DB)
	s.totp = auth.NewTOTP(deps.DB, deps.Config.Auth.TOTP.Issuer)

	s.expiry = deps.Config.Webserver.Session.ExpiryTime
	if s.expiry == 0 {
		s.expiry = defaultSessionExpiry
	}

	a := app.Group(AuthPath)
	a.Post("/register", s.Register)
	a.Post("/login", s.Login)
	a.Post("/logout", s.Logout)

	p := app.Group(ProfilePath, auth.RequireAuthenticated())
	p.Get("", s.Profile)
	p.Put("", s.UpdateProfile)
	p.Put("/password", s.ChangePassword)
	p.Post("/totp", s.EnrollTOTP)
	p.Post("/totp/confirm", s.ConfirmTOTP)
	p.Delete("/totp", s.DisableTOTP)

	return nil
}

// Register creates a local account and signs it in.
func (s *Service) Register(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled || !s.cfg.Auth.Registration {
		return handler.ErrorJSON(c, fiber.StatusForbidden, "Cadastro desativado", nil)
	}

	var req registerRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	user, err := s.local.Register(req.Email, req.Password, req.Username)
	if err != nil {
		return authError(c, err)
	}

	log.Info().Uint64("user_id", user.ID).Msg("account registered")

	if err = session.Start(c, &session.Data{User: *user}, s.expiry, s.cfg.DevMode); err != nil {
		return sessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": user})
}

// Login checks the credentials and the second factor, then starts a session.
// Accounts with two-factor auth answer 401 {"totp_required": true} until a code is sent.
func (s *Service) Login(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled {
		return handler.ErrorJSON(c, fiber.StatusForbidden, "Login local desativado", nil)
	}

	var req loginRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	user, err := s.local.Authenticate(req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", auth.NormalizeEmail(req.Email)).Msg("failed login")

		return authError(c, err)
	}

	if err = s.totp.Verify(user, req.Code); err != nil {
		if errors.Is(err, auth.ErrTOTPRequired) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "totp_required": true})
		}

		return authError(c, err)
	}

	if err = session.Start(c, &session.Data{User: *user}, s.expiry, s.cfg.DevMode); err != nil {
		return sessionError(c, err)
	}

	log.Info().Uint64("user_id", user.ID).Msg("user signed in")

	return handler.DataJSON(c, user)
}

// Logout ends the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	if err := session.End(c, s.cfg.DevMode); err != nil {
		log.Warn().Err(err).Msg("failed to delete session")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Profile returns the signed-in user with the granted permissions.
func (s *Service) Profile(c *fiber.Ctx) error {
	user, err := s.local.GetUserByID(handler.UserID(c))
	if err != nil {
		return authError(c, err)
	}

	permissions := []string{}
	if s.auth != nil {
		if permissions, err = s.auth.GetUserPermissions(user.ID); err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to load permissions")
		}
	}

	return c.JSON(fiber.Map{"data": user, "permissions": permissions})
}

// UpdateProfile changes the display name and avatar.
func (s *Service) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	user, err := s.local.UpdateProfile(handler.UserID(c), req.Username, req.AvatarURL)
	if err != nil {
		return authError(c, err)
	}

	s.refresh(c, *user)

	return handler.DataJSON(c, user)
}

// ChangePassword replaces the password after checking the old one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	var req passwordRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	if err := s.local.ChangePassword(handler.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		return authError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// EnrollTOTP creates a second factor secret, active after ConfirmTOTP.
func (s *Service) EnrollTOTP(c *fiber.Ctx) error {
	enrollment, err := s.totp.Enroll(handler.UserID(c))
	if err != nil {
		return authError(c, err)
	}

	return handler.DataJSON(c, enrollment)
}

// ConfirmTOTP activates the enrolled secret.
func (s *Service) ConfirmTOTP(c *fiber.Ctx) error {
	var req codeRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	if err := s.totp.Confirm(handler.UserID(c), req.Code); err != nil {
		return authError(c, err)
	}

	s.reload(c)

	return c.SendStatus(fiber.StatusNoContent)
}

// DisableTOTP removes the second factor.
func (s *Service) DisableTOTP(c *fiber.Ctx) error {
	var req codeRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	if err := s.totp.Disable(handler.UserID(c), req.Code); err != nil {
		return authError(c, err)
	}

	s.reload(c)

	return c.SendStatus(fiber.StatusNoContent)
}

// reload rereads the signed-in user into the session.
func (s *Service) reload(c *fiber.Ctx) {
	user, err := s.local.GetUserByID(handler.UserID(c))
	if err != nil {
		log.Warn().Err(err).Msg("failed to reload user")

		return
	}

	s.refresh(c, *user)
}

func (s *Service) refresh(c *fiber.Ctx, user models.User) {
	if err := session.Refresh(c, user, s.expiry); err != nil {
		log.Warn().Err(err).Uint64("user_id", user.ID).Msg("failed to refresh session")
	}
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrInvalidOldPassword),
		errors.Is(err, auth.ErrTOTPNotEnrolled),
		errors.Is(err, auth.ErrTOTPAlreadyEnabled):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, auth.ErrEmailExists):
		return handler.ErrorJSON(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidTOTPCode),
		errors.Is(err, auth.ErrTOTPRequired):
		return handler.ErrorJSON(c, fiber.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return handler.ErrorJSON(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.ErrorJSON(c, fiber.StatusNotFound, err.Error(), nil)
	default:
		log.Error().Err(err).Msg("account operation failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
}

func sessionError(c *fiber.Ctx, err error) error {
	log.Error().Err(err).Msg("failed to start session")

	return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
}
