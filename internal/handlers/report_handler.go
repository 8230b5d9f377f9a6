package handlers

import (
	"contractors/internal/models"
	"contractors/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles HTTP requests for PDF reports.
type ReportHandler struct {
	service *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// RegisterRoutes registers the report routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/report", h.HandleCreateReport)
}

// HandleCreateReport renders the calling user's contractors as a PDF stream.
func (h *ReportHandler) HandleCreateReport(c *fiber.Ctx) error {
	userID, ok := userIDFromHeader(c, "userId")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("User id cannot be lesser than 0.", fiber.StatusNotFound))
	}

	pdf, err := h.service.CreateReport(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="contractors-report.pdf"`)
	return c.Send(pdf)
}
