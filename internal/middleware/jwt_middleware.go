package middleware

import (
	"log"
	"strings"

	"contractors/internal/models"
	"contractors/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that checks for a valid JWT token. The
// token comes from the Authorization header ("Bearer <token>") or, for
// older clients, from a bare "jwt" header. Valid claims are stored in the
// request locals as "user_id" (uint) and "username" (string).
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""

		authHeader := c.Get("Authorization")
		switch {
		case authHeader != "":
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(
					models.Failure("Authorization header format must be 'Bearer <token>'", fiber.StatusUnauthorized))
			}
			tokenString = parts[1]
		case c.Get("jwt") != "":
			tokenString = c.Get("jwt")
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(
				models.Failure("Authorization header is required", fiber.StatusUnauthorized))
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(
				models.Failure("Invalid or expired token", fiber.StatusUnauthorized))
		}

		// JSON numbers arrive as float64 in MapClaims.
		userID, ok := claims["user_id"].(float64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(
				models.Failure("Invalid or expired token", fiber.StatusUnauthorized))
		}
		c.Locals("user_id", uint(userID))
		if username, ok := claims["username"].(string); ok {
			c.Locals("username", username)
		}

		return c.Next()
	}
}
