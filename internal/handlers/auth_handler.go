package handlers

import (
	"contractors/internal/middleware"
	"contractors/internal/models"
	"contractors/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Delete("/remove", middleware.AuthRequired(h.authService), h.HandleRemove)
}

// HandleRegister handles new user registration and returns a bearer token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	token, err := h.authService.Register(c.UserContext(), req.UserName, req.EmailAddress, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.Success(token))
}

// HandleLogin authenticates a user and returns a bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	token, err := h.authService.Authenticate(c.UserContext(), req.EmailAddress, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.Success(token))
}

// HandleRemove deletes the authenticated user's account. The identity comes
// from the validated token, not from a header the caller could spoof.
func (h *AuthHandler) HandleRemove(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(
			models.Failure("Invalid or expired token", fiber.StatusUnauthorized))
	}

	if err := h.authService.RemoveUser(c.UserContext(), int(userID)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
