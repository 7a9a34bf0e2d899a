package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

// FeedHandler handles the proactive execution feed endpoint
type FeedHandler struct {
	feedService *services.ExecutionFeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.ExecutionFeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed composes and returns the owner's execution feed
// GET /api/v1/feed
func (h *FeedHandler) GetFeed(c *fiber.Ctx) error {
	response := h.feedService.BuildFeed(
		c.Context(),
		middleware.OwnerID(c),
		middleware.OptIn(c),
		middleware.RequestLocale(c),
	)
	return c.JSON(response)
}
