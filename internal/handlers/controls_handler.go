package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

// ControlsHandler handles execution controls endpoints
type ControlsHandler struct {
	controlsService *services.ControlsService
	feedService     *services.ExecutionFeedService
}

// NewControlsHandler creates a new controls handler
func NewControlsHandler(controlsService *services.ControlsService, feedService *services.ExecutionFeedService) *ControlsHandler {
	return &ControlsHandler{
		controlsService: controlsService,
		feedService:     feedService,
	}
}

// GetControls returns the owner's execution controls (defaults if unset)
// GET /api/v1/controls
func (h *ControlsHandler) GetControls(c *fiber.Ctx) error {
	return c.JSON(h.controlsService.Get(middleware.OwnerID(c)))
}

// UpdateControls upserts the owner's execution controls
// PUT /api/v1/controls
func (h *ControlsHandler) UpdateControls(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	var input services.ControlsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	controls := h.controlsService.Update(ownerID, input)
	h.feedService.Invalidate(c.Context(), ownerID)
	return c.JSON(controls)
}
