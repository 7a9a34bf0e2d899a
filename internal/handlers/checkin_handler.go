package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/models"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

// CheckinHandler handles daily check-in endpoints
type CheckinHandler struct {
	checkinService *services.CheckinService
	engine         *services.MemoryEngine
	feedService    *services.ExecutionFeedService
}

// NewCheckinHandler creates a new check-in handler
func NewCheckinHandler(
	checkinService *services.CheckinService,
	engine *services.MemoryEngine,
	feedService *services.ExecutionFeedService,
) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
		engine:         engine,
		feedService:    feedService,
	}
}

// SubmitCheckin records one daily check-in
// POST /api/v1/checkins
func (h *CheckinHandler) SubmitCheckin(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	var input services.CheckinInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.checkinService.Record(ownerID, input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// A blocker is a friction signal worth remembering for a while.
	if record.Blocker != "" {
		h.engine.Ingest(ownerID, middleware.OptIn(c), models.MemoryIngestEvent{
			Type:      string(models.MemoryTypeFriction),
			Stability: string(models.StabilityTransient),
			Source:    string(models.SourceCheckin),
			Text:      "Blocked by: " + record.Blocker,
			Weight:    0.7,
			Tags:      []string{"blocker"},
		})
	}

	h.feedService.Invalidate(c.Context(), ownerID)
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetCheckinHistory returns recent check-ins, newest first
// GET /api/v1/checkins?limit=30
func (h *CheckinHandler) GetCheckinHistory(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	limit, err := strconv.Atoi(c.Query("limit", "30"))
	if err != nil || limit < 1 {
		limit = 30
	}

	history := h.checkinService.History(ownerID, limit)
	return c.JSON(fiber.Map{
		"checkins": history,
		"count":    len(history),
	})
}

// GetLatestCheckin returns the most recent check-in
// GET /api/v1/checkins/latest
func (h *CheckinHandler) GetLatestCheckin(c *fiber.Ctx) error {
	latest := h.checkinService.Latest(middleware.OwnerID(c))
	if latest == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No check-ins yet",
		})
	}
	return c.JSON(latest)
}
