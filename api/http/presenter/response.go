package presenter

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/pkg/profile"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type ValidationResponse struct {
	Message string               `json:"message"`
	Fields  []profile.FieldError `json:"fields"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// Validation answers 422 with the offending fields.
func Validation(c *fiber.Ctx, err *profile.ValidationError) error {
	return JSON(c, http.StatusUnprocessableEntity, ValidationResponse{Message: err.Error(), Fields: err.Fields})
}
