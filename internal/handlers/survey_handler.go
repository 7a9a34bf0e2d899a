package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/models"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

// SurveyHandler handles the deep survey endpoints
type SurveyHandler struct {
	surveyService *services.SurveyService
	feedService   *services.ExecutionFeedService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveyService *services.SurveyService, feedService *services.ExecutionFeedService) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
		feedService:   feedService,
	}
}

// GetSurveyState returns the owner's survey progress and signal hints
// GET /api/v1/survey
func (h *SurveyHandler) GetSurveyState(c *fiber.Ctx) error {
	state := h.surveyService.Get(middleware.OwnerID(c))
	if state == nil {
		return c.JSON(fiber.Map{
			"started": false,
		})
	}
	return c.JSON(fiber.Map{
		"started":   true,
		"completed": state.Completed(),
		"state":     state,
		"hints":     surveyHints(state),
	})
}

// SubmitSurveyAnswer records one survey answer
// POST /api/v1/survey/answers
func (h *SurveyHandler) SubmitSurveyAnswer(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	var payload struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	state, err := h.surveyService.Answer(ownerID, payload.Key, payload.Value)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(state)
}

// CompleteSurvey marks the survey finished and seeds memories from the
// reactive answers
// POST /api/v1/survey/complete
func (h *SurveyHandler) CompleteSurvey(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)

	state, err := h.surveyService.Complete(ownerID, middleware.OptIn(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.feedService.Invalidate(c.Context(), ownerID)
	return c.JSON(state)
}

// surveyHints summarizes the high-signal answers for downstream prompts.
func surveyHints(state *models.SurveyState) []string {
	var hints []string
	for _, key := range []string{
		models.SurveyKeyPrimaryGoal,
		models.SurveyKeyDailyPressure,
		models.SurveyKeyCharityCommitment,
	} {
		if value := state.Answers[key]; value != "" {
			hints = append(hints, fmt.Sprintf("%s: %s", key, value))
		}
	}
	return hints
}
