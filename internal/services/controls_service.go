package services

import (
	"strings"
	"sync"
	"time"

	"github.com/strappedupmami/journeyatlas/internal/database"
	"github.com/strappedupmami/journeyatlas/internal/models"
)

// ControlsService stores the per-owner execution feed preferences.
// Reads always succeed: owners without saved controls get the defaults.
type ControlsService struct {
	mu      sync.RWMutex
	byOwner map[string]models.ExecutionControls
	persist *PersistenceService
}

// ControlsInput is the raw upsert payload; enum-like fields are free-form
// and normalized permissively.
type ControlsInput struct {
	Cadence                    string `json:"cadence"`
	DetailLevel                string `json:"detail_level"`
	IncludeCompanyAwareness    *bool  `json:"include_company_awareness"`
	IncludeReminderSuggestions *bool  `json:"include_reminder_suggestions"`
	RemindersApp               string `json:"reminders_app"`
	AlarmsApp                  string `json:"alarms_app"`
}

// NewControlsService creates a controls service.
func NewControlsService(persist *PersistenceService) *ControlsService {
	return &ControlsService{
		byOwner: make(map[string]models.ExecutionControls),
		persist: persist,
	}
}

// Get returns the owner's controls, falling back to defaults.
func (s *ControlsService) Get(ownerID string) models.ExecutionControls {
	s.mu.RLock()
	controls, ok := s.byOwner[ownerID]
	s.mu.RUnlock()

	if !ok {
		return models.DefaultExecutionControls(ownerID)
	}
	return controls
}

// Update upserts the owner's controls. Omitted fields keep their current
// value: empty strings and nil booleans both mean "leave as is", so a
// partial PUT never resets a stored preference. Unknown enum strings
// still fall back to the defaults.
func (s *ControlsService) Update(ownerID string, input ControlsInput) models.ExecutionControls {
	s.mu.Lock()
	controls, ok := s.byOwner[ownerID]
	if !ok {
		controls = models.DefaultExecutionControls(ownerID)
	}

	if strings.TrimSpace(input.Cadence) != "" {
		controls.Cadence = models.NormalizeCadence(input.Cadence)
	}
	if strings.TrimSpace(input.DetailLevel) != "" {
		controls.DetailLevel = models.NormalizeDetailLevel(input.DetailLevel)
	}
	if input.IncludeCompanyAwareness != nil {
		controls.IncludeCompanyAwareness = *input.IncludeCompanyAwareness
	}
	if input.IncludeReminderSuggestions != nil {
		controls.IncludeReminderSuggestions = *input.IncludeReminderSuggestions
	}
	if app := sanitizeLimitedText(input.RemindersApp, maxTagLen); app != "" {
		controls.RemindersApp = app
	}
	if app := sanitizeLimitedText(input.AlarmsApp, maxTagLen); app != "" {
		controls.AlarmsApp = app
	}
	controls.UpdatedAt = time.Now().UTC()

	s.byOwner[ownerID] = controls
	s.mu.Unlock()

	s.persist.RequestPersist(ownerID)
	return controls
}

// RestoreOwner seeds the owner's controls from a snapshot.
func (s *ControlsService) RestoreOwner(ownerID string, controls *models.ExecutionControls) {
	if ownerID == "" || controls == nil {
		return
	}
	s.mu.Lock()
	s.byOwner[ownerID] = *controls
	s.mu.Unlock()
}

// FillSnapshot implements SnapshotProvider.
func (s *ControlsService) FillSnapshot(ownerID string, snap *database.OwnerSnapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if controls, ok := s.byOwner[ownerID]; ok {
		snap.Controls = &controls
	}
}
