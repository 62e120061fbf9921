package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/session"
)

// ErrorJSON writes {"error": msg, "details": details}. Details are left out when nil.
func ErrorJSON(c *fiber.Ctx, status int, msg string, details any) error {
	body := fiber.Map{"error": msg}
	if details != nil {
		body["details"] = details
	}

	return c.Status(status).JSON(body)
}

// DataJSON writes {"data": data}.
func DataJSON(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

// CurrentUser returns the signed-in user of the request.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	sess, ok := session.Current(c)
	if !ok {
		return nil, false
	}

	return &sess.User, true
}

// UserID returns the id of the signed-in user, 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint64 {
	if u, ok := CurrentUser(c); ok {
		return u.ID
	}

	return 0
}

// ParamUint parses a positive numeric route parameter.
func ParamUint(c *fiber.Ctx, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)

	return v, err == nil && v > 0
}
