// Package subscription serves the premium plan of the signed-in user.
package subscription

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	store "github.com/biblia-online/biblia/internal/db/controller/subscription"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/handler"
)

// Path is the route of the subscription api.
const Path = handler.APIPath + "/subscription"

var errNilDeps = errors.New("subscription: app or dependencies are nil")

// Service is the subscription handler service.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// Handler is the subscription handler.
var Handler = Service{} //nolint:gochecknoglobals

type subscribeRequest struct {
	PlanType string `json:"plan_type" validate:"required,oneof=monthly annual"`
}

// Init registers the subscription routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil || deps.Auth == nil {
		return errNilDeps
	}

	s.db = deps.DB
	if s.now == nil {
		s.now = time.Now
	}

	manage := auth.RequirePermission(deps.Auth, auth.PermSubscriptionManage)

	app.Get(Path, manage, s.Current)
	app.Post(Path, manage, s.Subscribe)
	app.Delete(Path, manage, s.Cancel)

	return nil
}

// Current returns the active subscription, 404 when there is none.
func (s *Service) Current(c *fiber.Ctx) error {
	sub, err := store.Current(s.db, handler.UserID(c), s.now())
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, sub)
}

// Subscribe starts a plan, replacing the active one.
func (s *Service) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	sub, err := store.Subscribe(s.db, handler.UserID(c), models.PlanType(req.PlanType), s.now())
	if err != nil {
		return storeError(c, err)
	}

	log.Info().Uint64("user_id", sub.UserID).Str("plan", string(sub.PlanType)).Msg("subscription started")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": sub})
}

// Cancel deactivates the active subscription.
func (s *Service) Cancel(c *fiber.Ctx) error {
	if err := store.Cancel(s.db, handler.UserID(c)); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidPlan):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		return handler.ErrorJSON(c, fiber.StatusNotFound, err.Error(), nil)
	default:
		log.Error().Err(err).Msg("subscription operation failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
}
