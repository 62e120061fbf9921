package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/navigation"
)

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,max=100"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,max=128"`
}

// Users lists accounts by id, ?active=true|false filters, ?page= and ?pageSize= paginate.
// ?email= looks up a single account.
func (s *Service) Users(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		return s.userByEmail(c, email)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}

	var active *bool

	if v := c.Query("active"); v != "" {
		b := c.QueryBool("active")
		active = &b
	}

	users, total, err := s.local.ListUsers(active, pageSize, (page-1)*pageSize)
	if err != nil {
		log.Error().Err(err).Msg("list users failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Failed to load users", nil)
	}

	return c.JSON(fiber.Map{"data": users, "pagination": navigation.NewPage(page, pageSize, total)})
}

// SetActive enables or disables an account. Administrators cannot disable themselves.
func (s *Service) SetActive(c *fiber.Ctx) error {
	id, ok := handler.ParamUint(c, "id")
	if !ok {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Invalid id", nil)
	}

	var req activeRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	if id == handler.UserID(c) && !*req.Active {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "You cannot disable your own account", nil)
	}

	if _, err := s.local.GetUserByID(id); err != nil {
		return userError(c, err)
	}

	var err error
	if *req.Active {
		err = s.local.ActivateUser(id)
	} else {
		err = s.local.DeactivateUser(id)
	}

	if err != nil {
		return userError(c, err)
	}

	log.Info().Uint64("user_id", id).Bool("active", *req.Active).Uint64("by", handler.UserID(c)).
		Msg("account state changed")

	return c.SendStatus(fiber.StatusNoContent)
}

// SetRole assigns a role to an account.
func (s *Service) SetRole(c *fiber.Ctx) error {
	id, ok := handler.ParamUint(c, "id")
	if !ok {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Invalid id", nil)
	}

	var req roleRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	if err := s.auth.AssignRoleToUser(id, req.Role); err != nil {
		return userError(c, err)
	}

	log.Info().Uint64("user_id", id).Str("role", req.Role).Uint64("by", handler.UserID(c)).Msg("role assigned")

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) userByEmail(c *fiber.Ctx, email string) error {
	user, err := s.local.GetUserByEmail(email)
	if errors.Is(err, auth.ErrUserNotFound) {
		return c.JSON(fiber.Map{"data": []any{}, "pagination": navigation.NewPage(1, DefaultPageSize, 0)})
	}

	if err != nil {
		return userError(c, err)
	}

	return c.JSON(fiber.Map{"data": []any{user}, "pagination": navigation.NewPage(1, DefaultPageSize, 1)})
}

// ResetPassword sets a new password on a local account.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	id, ok := handler.ParamUint(c, "id")
	if !ok {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, "Invalid id", nil)
	}

	var req passwordRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	if err := s.local.ResetPassword(id, req.Password); err != nil {
		return userError(c, err)
	}

	log.Info().Uint64("user_id", id).Uint64("by", handler.UserID(c)).Msg("password reset")

	return c.SendStatus(fiber.StatusNoContent)
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.ErrorJSON(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, auth.ErrPasswordTooShort):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, auth.ErrRoleNotFound):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	default:
		log.Error().Err(err).Msg("user management failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
}
