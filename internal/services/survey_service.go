package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/strappedupmami/journeyatlas/internal/database"
	"github.com/strappedupmami/journeyatlas/internal/models"
)

// SurveyService tracks each owner's progress through the onboarding deep
// survey. Completing the survey also seeds permanent memories from the
// answer keys the engine reacts to.
type SurveyService struct {
	mu      sync.RWMutex
	byOwner map[string]*models.SurveyState
	engine  *MemoryEngine
	persist *PersistenceService
}

// NewSurveyService creates a survey service. engine may be nil in tests
// that do not exercise the memory seeding path.
func NewSurveyService(engine *MemoryEngine, persist *PersistenceService) *SurveyService {
	return &SurveyService{
		byOwner: make(map[string]*models.SurveyState),
		engine:  engine,
		persist: persist,
	}
}

// Get returns a copy of the owner's survey state, or nil when the survey
// was never started.
func (s *SurveyService) Get(ownerID string) *models.SurveyState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.byOwner[ownerID]
	if state == nil {
		return nil
	}
	clone := *state
	clone.Answers = cloneAnswers(state.Answers)
	return &clone
}

// Answer records one survey answer, starting the survey on first contact.
// Answering after completion updates the stored answer but does not reopen
// the survey.
func (s *SurveyService) Answer(ownerID, key, value string) (*models.SurveyState, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}
	key = sanitizeLimitedText(key, maxTagLen)
	if key == "" {
		return nil, fmt.Errorf("answer key is required")
	}

	now := time.Now().UTC()

	s.mu.Lock()
	state := s.byOwner[ownerID]
	if state == nil {
		state = &models.SurveyState{
			OwnerID:   ownerID,
			Answers:   make(map[string]string),
			StartedAt: now,
		}
		s.byOwner[ownerID] = state
	}
	state.Answers[key] = sanitizeLimitedText(value, maxMemoryTextLen)
	state.UpdatedAt = now

	clone := *state
	clone.Answers = cloneAnswers(state.Answers)
	s.mu.Unlock()

	s.persist.RequestPersist(ownerID)
	return &clone, nil
}

// Complete marks the survey finished and, when the owner is opted in,
// folds the reactive answers into permanent memories. Completing twice is
// a no-op that keeps the original completion time.
func (s *SurveyService) Complete(ownerID string, optIn bool) (*models.SurveyState, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	now := time.Now().UTC()

	s.mu.Lock()
	state := s.byOwner[ownerID]
	if state == nil {
		state = &models.SurveyState{
			OwnerID:   ownerID,
			Answers:   make(map[string]string),
			StartedAt: now,
		}
		s.byOwner[ownerID] = state
	}

	alreadyComplete := state.CompletedAt != nil
	if !alreadyComplete {
		completed := now
		state.CompletedAt = &completed
		state.UpdatedAt = now
	}

	clone := *state
	clone.Answers = cloneAnswers(state.Answers)
	s.mu.Unlock()

	if !alreadyComplete {
		s.seedMemories(ownerID, optIn, clone.Answers)
		log.Printf("📋 [SURVEY] Owner %s completed the deep survey (%d answers)", ownerID, len(clone.Answers))
		s.persist.RequestPersist(ownerID)
	}
	return &clone, nil
}

// seedMemories converts the reactive survey answers into permanent
// memories so retrieval and the memory extractor can see them.
func (s *SurveyService) seedMemories(ownerID string, optIn bool, answers map[string]string) {
	if s.engine == nil {
		return
	}

	seeds := []struct {
		key        string
		memoryType string
		prefix     string
		weight     float64
	}{
		{models.SurveyKeyPrimaryGoal, "goal", "Primary goal: ", 0.9},
		{models.SurveyKeyDailyPressure, "friction", "Daily pressure: ", 0.75},
		{models.SurveyKeyCharityCommitment, "constraint", "Charity commitment: ", 0.6},
	}

	for _, seed := range seeds {
		answer := answers[seed.key]
		if answer == "" {
			continue
		}
		s.engine.Ingest(ownerID, optIn, models.MemoryIngestEvent{
			Type:      seed.memoryType,
			Stability: string(models.StabilityPermanent),
			Source:    string(models.SourceSurvey),
			Text:      seed.prefix + answer,
			Weight:    seed.weight,
			Tags:      []string{"survey", seed.key},
		})
	}
}

// RestoreOwner seeds the owner's survey state from a snapshot.
func (s *SurveyService) RestoreOwner(ownerID string, state *models.SurveyState) {
	if ownerID == "" || state == nil {
		return
	}

	clone := *state
	clone.Answers = cloneAnswers(state.Answers)
	if clone.Answers == nil {
		clone.Answers = make(map[string]string)
	}

	s.mu.Lock()
	s.byOwner[ownerID] = &clone
	s.mu.Unlock()
}

// FillSnapshot implements SnapshotProvider.
func (s *SurveyService) FillSnapshot(ownerID string, snap *database.OwnerSnapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.byOwner[ownerID]
	if state == nil {
		return
	}
	clone := *state
	clone.Answers = cloneAnswers(state.Answers)
	snap.Survey = &clone
}

func cloneAnswers(answers map[string]string) map[string]string {
	if answers == nil {
		return nil
	}
	clone := make(map[string]string, len(answers))
	for k, v := range answers {
		clone[k] = v
	}
	return clone
}
