package services

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strappedupmami/journeyatlas/internal/database"
	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Bulk import is bounded to keep a single request from flooding the
// engine.
const maxImportItems = 250

// NoteService stores per-owner notes and runs the bulk memory import
// path, which turns historical items into notes plus manual memories.
type NoteService struct {
	mu      sync.RWMutex
	byOwner map[string][]models.NoteRecord
	engine  *MemoryEngine
	persist *PersistenceService
}

// NoteInput is the raw upsert payload for one note.
type NoteInput struct {
	ID      string   `json:"note_id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ImportResult summarizes one bulk import run.
type ImportResult struct {
	NotesCreated    int `json:"notes_created"`
	MemoriesCreated int `json:"memories_created"`
	Skipped         int `json:"skipped"`
}

// NewNoteService creates a note service. engine may be nil in tests that
// do not exercise the import path.
func NewNoteService(engine *MemoryEngine, persist *PersistenceService) *NoteService {
	return &NoteService{
		byOwner: make(map[string][]models.NoteRecord),
		engine:  engine,
		persist: persist,
	}
}

// Upsert creates or updates a note. A matching ID updates in place;
// otherwise a new note is created. The list is bounded to
// MaxNotesPerOwner, dropping the oldest by update time.
func (s *NoteService) Upsert(ownerID string, input NoteInput) (models.NoteRecord, error) {
	if ownerID == "" {
		return models.NoteRecord{}, fmt.Errorf("owner id is required")
	}

	title := sanitizeLimitedText(input.Title, maxTitleLen)
	content := sanitizeLimitedText(input.Content, maxMemoryTextLen)
	if title == "" && content == "" {
		return models.NoteRecord{}, fmt.Errorf("note needs a title or content")
	}

	record := models.NoteRecord{
		ID:        input.ID,
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		Tags:      normalizeTags(input.Tags),
		UpdatedAt: time.Now().UTC(),
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	s.mu.Lock()
	notes := s.byOwner[ownerID]
	replaced := false
	for i := range notes {
		if notes[i].ID == record.ID {
			notes[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		notes = append(notes, record)
	}
	if len(notes) > models.MaxNotesPerOwner {
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].UpdatedAt.Before(notes[j].UpdatedAt)
		})
		notes = notes[len(notes)-models.MaxNotesPerOwner:]
	}
	s.byOwner[ownerID] = notes
	s.mu.Unlock()

	s.persist.RequestPersist(ownerID)
	return record, nil
}

// Delete removes one note by ID. Returns false when no such note exists.
func (s *NoteService) Delete(ownerID, noteID string) bool {
	s.mu.Lock()
	notes := s.byOwner[ownerID]
	kept := notes[:0]
	removed := false
	for _, note := range notes {
		if note.ID == noteID {
			removed = true
			continue
		}
		kept = append(kept, note)
	}
	s.byOwner[ownerID] = kept
	s.mu.Unlock()

	if removed {
		s.persist.RequestPersist(ownerID)
	}
	return removed
}

// List returns all of the owner's notes, most recently updated first.
func (s *NoteService) List(ownerID string) []models.NoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := append([]models.NoteRecord(nil), s.byOwner[ownerID]...)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes
}

// Recent returns up to limit notes, most recently updated first.
func (s *NoteService) Recent(ownerID string, limit int) []models.NoteRecord {
	notes := s.List(ownerID)
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return notes
}

// Import runs a bulk historical import: each item becomes a note and,
// when the owner is opted in, a manual memory. At most maxImportItems are
// processed; the rest are skipped.
func (s *NoteService) Import(ownerID string, optIn bool, items []models.MemoryImportItem) (ImportResult, error) {
	if ownerID == "" {
		return ImportResult{}, fmt.Errorf("owner id is required")
	}

	var result ImportResult
	if len(items) > maxImportItems {
		result.Skipped = len(items) - maxImportItems
		items = items[:maxImportItems]
	}

	for _, item := range items {
		title := sanitizeLimitedText(item.Title, maxTitleLen)
		content := sanitizeLimitedText(item.Content, maxMemoryTextLen)
		if title == "" && content == "" {
			result.Skipped++
			continue
		}

		if _, err := s.Upsert(ownerID, NoteInput{Title: title, Content: content, Tags: item.Tags}); err != nil {
			result.Skipped++
			continue
		}
		result.NotesCreated++

		if s.engine == nil || !optIn {
			continue
		}

		text := content
		if text == "" {
			text = title
		}
		source := item.Source
		if source == "" {
			source = string(models.SourceManual)
		}
		var happenedAt *time.Time
		if item.HappenedAt != "" {
			if parsed, err := time.Parse(time.RFC3339, item.HappenedAt); err == nil {
				utc := parsed.UTC()
				happenedAt = &utc
			}
		}

		if record := s.engine.Ingest(ownerID, optIn, models.MemoryIngestEvent{
			Type:       string(models.MemoryTypeInsight),
			Stability:  string(models.StabilityPermanent),
			Source:     source,
			Text:       text,
			Weight:     0.6,
			Tags:       item.Tags,
			HappenedAt: happenedAt,
		}); record != nil {
			result.MemoriesCreated++
		}
	}

	log.Printf("📥 [IMPORT] Owner %s: %d notes, %d memories, %d skipped",
		ownerID, result.NotesCreated, result.MemoriesCreated, result.Skipped)
	return result, nil
}

// RestoreOwner seeds the owner's notes from a snapshot.
func (s *NoteService) RestoreOwner(ownerID string, notes []models.NoteRecord) {
	if ownerID == "" || len(notes) == 0 {
		return
	}
	s.mu.Lock()
	s.byOwner[ownerID] = append([]models.NoteRecord(nil), notes...)
	s.mu.Unlock()
}

// FillSnapshot implements SnapshotProvider.
func (s *NoteService) FillSnapshot(ownerID string, snap *database.OwnerSnapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := s.byOwner[ownerID]
	if len(notes) == 0 {
		return
	}
	snap.Notes = append([]models.NoteRecord(nil), notes...)
}
