package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a validation error of one field.
type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
}

var validate = validator.New() //nolint:gochecknoglobals

// Validate performs validation on the provided data and returns the failed fields.
func Validate(data any) []ErrorResponse {
	var validationErrors validator.ValidationErrors
	if err := validate.Struct(data); !errors.As(err, &validationErrors) {
		return nil
	}

	out := make([]ErrorResponse, 0, len(validationErrors))
	for _, err := range validationErrors {
		out = append(out, ErrorResponse{
			FailedField: err.Field(),
			Tag:         err.Tag(),
		})
	}

	return out
}

// Bind parses the request body into v and validates it.
// It writes the 400 answer itself and returns false when the body is unusable.
func Bind(c *fiber.Ctx, v any) (bool, error) {
	if err := c.BodyParser(v); err != nil {
		return false, ErrorJSON(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if failed := Validate(v); len(failed) > 0 {
		return false, ErrorJSON(c, fiber.StatusBadRequest, "Invalid request", failed)
	}

	return true, nil
}
