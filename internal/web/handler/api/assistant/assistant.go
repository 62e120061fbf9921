// Package assistant serves the bible chat assistant.
package assistant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/chat"
	"github.com/biblia-online/biblia/internal/web/handler"
)

// Path is the route of the chat api.
const Path = handler.APIPath + "/chat"

var errNilDeps = errors.New("assistant: app or dependencies are nil")

// Service is the chat handler service.
type Service struct {
	chat *chat.Client
}

// Handler is the chat handler.
var Handler = Service{} //nolint:gochecknoglobals

type questionRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

// Init registers the chat route.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Chat == nil || deps.Auth == nil {
		return errNilDeps
	}

	s.chat = deps.Chat

	app.Post(Path, auth.RequirePermission(deps.Auth, auth.PermChatAsk), s.Ask)

	return nil
}

// Ask answers {question} with {data: {answer, source}}.
func (s *Service) Ask(c *fiber.Ctx) error {
	var req questionRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	answer, err := s.chat.Reply(c.UserContext(), req.Question)
	if errors.Is(err, chat.ErrEmptyQuestion) {
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err != nil {
		log.Error().Err(err).Msg("chat reply failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}

	return handler.DataJSON(c, answer)
}
