package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/models"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

// MemoryHandler handles memory-related API endpoints
type MemoryHandler struct {
	engine      *services.MemoryEngine
	noteService *services.NoteService
	feedService *services.ExecutionFeedService
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(
	engine *services.MemoryEngine,
	noteService *services.NoteService,
	feedService *services.ExecutionFeedService,
) *MemoryHandler {
	return &MemoryHandler{
		engine:      engine,
		noteService: noteService,
		feedService: feedService,
	}
}

// IngestMemory folds one behavioral signal into the owner's memory
// POST /api/v1/memories
func (h *MemoryHandler) IngestMemory(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	var event models.MemoryIngestEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record := h.engine.Ingest(ownerID, middleware.OptIn(c), event)
	if record == nil {
		// Opt-out and empty input are silent no-ops, not errors.
		return c.JSON(fiber.Map{"stored": false})
	}

	h.feedService.Invalidate(c.Context(), ownerID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"stored": true,
		"record": record,
	})
}

// RetrieveMemories returns the owner's top-scored memories for a query
// GET /api/v1/memories?query=...&limit=20
func (h *MemoryHandler) RetrieveMemories(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	query := c.Query("query", "")
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil {
		limit = 20
	}

	items := h.engine.Retrieve(ownerID, middleware.OptIn(c), query, limit)
	if items == nil {
		items = []models.MemoryRetrievedItem{}
	}
	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// ClearMemories removes the owner's records matching the scope
// DELETE /api/v1/memories?scope=all|permanent|transient
func (h *MemoryHandler) ClearMemories(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)
	scope := models.NormalizeClearScope(c.Query("scope", "all"))

	removed := h.engine.Clear(ownerID, scope)
	h.feedService.Invalidate(c.Context(), ownerID)

	return c.JSON(fiber.Map{
		"removed": removed,
		"scope":   scope,
	})
}

// ImportMemories runs a bulk historical import of up to 250 items
// POST /api/v1/memories/import
func (h *MemoryHandler) ImportMemories(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	var payload struct {
		Items []models.MemoryImportItem `json:"items"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(payload.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No items to import",
		})
	}

	result, err := h.noteService.Import(ownerID, middleware.OptIn(c), payload.Items)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.feedService.Invalidate(c.Context(), ownerID)
	return c.JSON(result)
}
