package middleware

import (
	"context"
	"log"
	"strings"

	"etalase/internal/models"

	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the fiber Locals key holding the authenticated models.Identity.
const IdentityKey = "identity"

// Authorizer validates a bearer token. *services.AuthService satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (models.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		identity, err := auth.Authorize(c.UserContext(), parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(IdentityKey).(models.Identity)
	return identity, ok
}
