package handlers

import (
	"contractors/internal/models"
	"contractors/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContractorHandler handles HTTP requests for contractors.
type ContractorHandler struct {
	service  *services.ContractorService
	validate *validator.Validate
}

// NewContractorHandler creates a new ContractorHandler.
func NewContractorHandler(service *services.ContractorService) *ContractorHandler {
	return &ContractorHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the contractor routes with the Fiber app.
func (h *ContractorHandler) RegisterRoutes(router fiber.Router) {
	contractorRoutes := router.Group("/contractors")
	contractorRoutes.Get("/", h.HandleList)
	contractorRoutes.Get("/:id", h.HandleGetByID)
	contractorRoutes.Post("/", h.HandleCreate)
	contractorRoutes.Put("/:id", h.HandleUpdate)
	contractorRoutes.Delete("/:id", h.HandleDelete)
}

// HandleGetByID retrieves a single contractor with its additional data.
func (h *ContractorHandler) HandleGetByID(c *fiber.Ctx) error {
	contractorID, err := c.ParamsInt("id")
	if err != nil || contractorID < 0 {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("Contractor id cannot be lesser than 0.", fiber.StatusNotFound))
	}

	contractor, err := h.service.GetContractorByID(c.UserContext(), uint(contractorID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.Success(contractor))
}

// HandleList returns one page of the calling user's contractors. The user is
// identified by the userId header; paging defaults are page=1, count=10,
// orderByAsc=true.
func (h *ContractorHandler) HandleList(c *fiber.Ctx) error {
	userID, ok := userIDFromHeader(c, "userId")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("User id cannot be lesser than 0.", fiber.StatusNotFound))
	}

	query := c.Query("query")
	page := c.QueryInt("page", 1)
	count := c.QueryInt("count", 10)
	orderByAsc := c.QueryBool("orderByAsc", true)

	result, err := h.service.GetContractors(c.UserContext(), userID, query, page, count, orderByAsc)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.Success(result))
}

// HandleCreate creates a contractor with its additional data and returns the
// generated id.
func (h *ContractorHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.AddUpdateContractorRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	contractorID, err := h.service.CreateContractor(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.Success(contractorID))
}

// HandleUpdate overwrites a contractor's name, description and its whole
// additional-data set. The caller must own the contractor.
func (h *ContractorHandler) HandleUpdate(c *fiber.Ctx) error {
	contractorID, err := c.ParamsInt("id")
	if err != nil || contractorID < 0 {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("Contractor id cannot be lesser than 0.", fiber.StatusNotFound))
	}
	userID, ok := userIDFromHeader(c, "UserId")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("User id cannot be lesser than 0.", fiber.StatusNotFound))
	}

	var req models.AddUpdateContractorRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.service.UpdateContractor(c.UserContext(), userID, uint(contractorID), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.Success(nil))
}

// HandleDelete removes a contractor and its additional data. The caller must
// own the contractor.
func (h *ContractorHandler) HandleDelete(c *fiber.Ctx) error {
	contractorID, err := c.ParamsInt("id")
	if err != nil || contractorID < 0 {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("Contractor id cannot be lesser than 0.", fiber.StatusNotFound))
	}
	userID, ok := userIDFromHeader(c, "UserId")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(
			models.Failure("User id cannot be lesser than 0.", fiber.StatusNotFound))
	}

	if err := h.service.DeleteContractor(c.UserContext(), userID, uint(contractorID)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
