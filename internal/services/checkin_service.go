package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strappedupmami/journeyatlas/internal/database"
	"github.com/strappedupmami/journeyatlas/internal/models"
)

// CheckinService keeps the per-owner check-in history. Records are
// append-only and immutable; the history is bounded to the most recent
// MaxCheckinHistory entries.
type CheckinService struct {
	mu      sync.RWMutex
	byOwner map[string][]models.CheckinRecord
	persist *PersistenceService
}

// CheckinInput is the raw submission for one daily check-in.
type CheckinInput struct {
	DailyFocus    string `json:"daily_focus"`
	MidTermFocus  string `json:"mid_term_focus"`
	LongTermFocus string `json:"long_term_focus"`
	Blocker       string `json:"blocker"`
	NextAction    string `json:"next_action"`
	EnergyLevel   int    `json:"energy_level"`
	Mood          string `json:"mood"`
}

// NewCheckinService creates a check-in service.
func NewCheckinService(persist *PersistenceService) *CheckinService {
	return &CheckinService{
		byOwner: make(map[string][]models.CheckinRecord),
		persist: persist,
	}
}

// Record appends one check-in. The daily focus is required; everything
// else is optional. Energy levels outside 1-5 are clamped.
func (s *CheckinService) Record(ownerID string, input CheckinInput) (models.CheckinRecord, error) {
	if ownerID == "" {
		return models.CheckinRecord{}, fmt.Errorf("owner id is required")
	}

	dailyFocus := sanitizeLimitedText(input.DailyFocus, maxTitleLen)
	if dailyFocus == "" {
		return models.CheckinRecord{}, fmt.Errorf("daily_focus is required")
	}

	energy := input.EnergyLevel
	if energy < 1 {
		energy = 1
	}
	if energy > 5 {
		energy = 5
	}

	record := models.CheckinRecord{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		DailyFocus:    dailyFocus,
		MidTermFocus:  sanitizeLimitedText(input.MidTermFocus, maxTitleLen),
		LongTermFocus: sanitizeLimitedText(input.LongTermFocus, maxTitleLen),
		Blocker:       sanitizeLimitedText(input.Blocker, maxTitleLen),
		NextAction:    sanitizeLimitedText(input.NextAction, maxTitleLen),
		EnergyLevel:   energy,
		Mood:          sanitizeLimitedText(input.Mood, maxTitleLen),
		CreatedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	history := append(s.byOwner[ownerID], record)
	if len(history) > models.MaxCheckinHistory {
		history = history[len(history)-models.MaxCheckinHistory:]
	}
	s.byOwner[ownerID] = history
	s.mu.Unlock()

	s.persist.RequestPersist(ownerID)
	return record, nil
}

// Latest returns the most recent check-in, or nil when the owner has none.
func (s *CheckinService) Latest(ownerID string) *models.CheckinRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byOwner[ownerID]
	if len(history) == 0 {
		return nil
	}
	latest := history[len(history)-1]
	return &latest
}

// History returns up to limit check-ins, newest first.
func (s *CheckinService) History(ownerID string, limit int) []models.CheckinRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byOwner[ownerID]
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}

	out := make([]models.CheckinRecord, 0, limit)
	for i := len(history) - 1; i >= len(history)-limit; i-- {
		out = append(out, history[i])
	}
	return out
}

// RestoreOwner seeds the owner's history from a snapshot.
func (s *CheckinService) RestoreOwner(ownerID string, records []models.CheckinRecord) {
	if ownerID == "" || len(records) == 0 {
		return
	}

	if len(records) > models.MaxCheckinHistory {
		records = records[len(records)-models.MaxCheckinHistory:]
	}

	s.mu.Lock()
	s.byOwner[ownerID] = append([]models.CheckinRecord(nil), records...)
	s.mu.Unlock()
}

// FillSnapshot implements SnapshotProvider.
func (s *CheckinService) FillSnapshot(ownerID string, snap *database.OwnerSnapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byOwner[ownerID]
	if len(history) == 0 {
		return
	}
	snap.Checkins = append([]models.CheckinRecord(nil), history...)
}
