package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

// NoteHandler handles note endpoints
type NoteHandler struct {
	noteService *services.NoteService
	feedService *services.ExecutionFeedService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *services.NoteService, feedService *services.ExecutionFeedService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		feedService: feedService,
	}
}

// ListNotes returns the owner's notes, most recently updated first
// GET /api/v1/notes
func (h *NoteHandler) ListNotes(c *fiber.Ctx) error {
	notes := h.noteService.List(middleware.OwnerID(c))
	return c.JSON(fiber.Map{
		"notes": notes,
		"count": len(notes),
	})
}

// UpsertNote creates or updates a note
// POST /api/v1/notes
func (h *NoteHandler) UpsertNote(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	var input services.NoteInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	note, err := h.noteService.Upsert(ownerID, input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.feedService.Invalidate(c.Context(), ownerID)
	return c.Status(fiber.StatusCreated).JSON(note)
}

// DeleteNote removes one note
// DELETE /api/v1/notes/:id
func (h *NoteHandler) DeleteNote(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	if !h.noteService.Delete(ownerID, c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Note not found",
		})
	}

	h.feedService.Invalidate(c.Context(), ownerID)
	return c.JSON(fiber.Map{"deleted": true})
}
