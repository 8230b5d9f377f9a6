package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"contractors/internal/models"
	"contractors/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError translates a service failure into the uniform envelope.
// NotFound maps to 404, Unprocessable to 422 and everything else to 400 —
// a 500 is never surfaced to the caller, the cause is logged instead.
func respondError(c *fiber.Ctx, err error) error {
	serviceErr, ok := services.AsServiceError(err)
	if !ok {
		log.Printf("Unexpected error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusBadRequest).JSON(
			models.Failure("Unexpected error.", fiber.StatusInternalServerError))
	}

	switch serviceErr.Kind {
	case services.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure(serviceErr.Message, fiber.StatusNotFound))
	case services.KindUnprocessable:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(
			models.Failure(serviceErr.Message, fiber.StatusUnprocessableEntity))
	default:
		log.Printf("Internal error handling %s %s: %v", c.Method(), c.Path(), serviceErr)
		return c.Status(fiber.StatusBadRequest).JSON(
			models.Failure(serviceErr.Message, fiber.StatusInternalServerError))
	}
}

// respondBadBody reports an unparseable request body.
func respondBadBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(
		models.Failure("Invalid request body.", fiber.StatusBadRequest))
}

// respondValidationError flattens validator errors into one message.
func respondValidationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return respondBadBody(c, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldError.Field(), fieldError.Tag()))
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(
		models.Failure("Validation failed: "+strings.Join(messages, "; "), fiber.StatusUnprocessableEntity))
}

// userIDFromHeader reads a non-negative user id from the named header.
func userIDFromHeader(c *fiber.Ctx, header string) (uint, bool) {
	userID, err := strconv.Atoi(strings.TrimSpace(c.Get(header)))
	if err != nil || userID < 0 {
		return 0, false
	}
	return uint(userID), true
}
