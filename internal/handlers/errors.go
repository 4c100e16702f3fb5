package handlers

import (
	"errors"
	"log"

	"etalase/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps the shared error kinds onto HTTP status codes.
func statusFor(err error) int {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateCode):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err in the API's error shape. message describes the
// failed operation.
func respondError(c *fiber.Ctx, message string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}

	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(status).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  vErr.Fields,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
