package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/session"
)

type registerForm struct {
	Email           string `form:"email"            validate:"required,email"`
	Username        string `form:"username"         validate:"max=100"`
	Password        string `form:"password"         validate:"required,min=6"`
	PasswordConfirm string `form:"password_confirm" validate:"required"`
}

func (s *Service) registrationEnabled() bool {
	return s.cfg.Auth.LocalDB.Enabled && s.cfg.Auth.Registration
}

func (s *Service) renderRegisterError(c *fiber.Ctx, err error, form *registerForm) error {
	extra := fiber.Map{"error": err.Error()}
	if form != nil {
		extra["Email"] = form.Email
		extra["Username"] = form.Username
	}

	return c.Render(RegisterTemplateName, s.binding(extra))
}

// GetRegister renders the sign-up page.
func (s *Service) GetRegister(c *fiber.Ctx) error {
	if !s.registrationEnabled() {
		return s.renderRegisterError(c, ErrRegistrationDisabled, nil)
	}

	return c.Render(RegisterTemplateName, s.binding(nil))
}

// PostRegister creates a local account and signs it in.
func (s *Service) PostRegister(c *fiber.Ctx) error {
	if !s.registrationEnabled() {
		return s.renderRegisterError(c, ErrRegistrationDisabled, nil)
	}

	form := new(registerForm)
	if err := c.BodyParser(form); err != nil || len(handler.Validate(form)) > 0 {
		return s.renderRegisterError(c, ErrInvalidFormData, form)
	}

	if form.Password != form.PasswordConfirm {
		return s.renderRegisterError(c, ErrPasswordMismatch, form)
	}

	user, err := s.local.Register(form.Email, form.Password, form.Username)

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrEmailExists):
		return s.renderRegisterError(c, ErrEmailTaken, form)
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrPasswordTooShort):
		return s.renderRegisterError(c, ErrInvalidFormData, form)
	default:
		log.Error().Err(err).Msg("failed to register account")

		return s.renderRegisterError(c, ErrInternalServerError, form)
	}

	log.Info().Uint64("user_id", user.ID).Msg("account registered")

	if err = session.Start(c, &session.Data{User: *user}, s.expiry(), s.cfg.DevMode); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return c.Redirect(Path)
	}

	return c.Redirect(AfterLoginPath)
}
