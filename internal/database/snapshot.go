package database

import (
	"context"
	"time"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// OwnerSnapshot is the durable image of one owner's engine state. The
// in-memory engine is the source of truth for the hot path; snapshots are
// a write-behind cache used only to survive restarts.
type OwnerSnapshot struct {
	OwnerID  string                     `json:"owner_id" bson:"ownerId"`
	Memories []models.MemoryRecord      `json:"memories,omitempty" bson:"memories,omitempty"`
	Checkins []models.CheckinRecord     `json:"checkins,omitempty" bson:"checkins,omitempty"`
	Controls *models.ExecutionControls  `json:"controls,omitempty" bson:"controls,omitempty"`
	Survey   *models.SurveyState        `json:"survey,omitempty" bson:"survey,omitempty"`
	Notes    []models.NoteRecord        `json:"notes,omitempty" bson:"notes,omitempty"`
	SavedAt  time.Time                  `json:"saved_at" bson:"savedAt"`
}

// SnapshotStore persists owner snapshots. Implementations must tolerate
// being called concurrently for different owners; callers serialize per
// owner. Save failures are logged and swallowed by the engine, never
// propagated to requests.
type SnapshotStore interface {
	SaveOwner(ctx context.Context, snap OwnerSnapshot) error
	LoadOwners(ctx context.Context) ([]OwnerSnapshot, error)
	Close(ctx context.Context) error
}

// NoopStore discards snapshots. Used when persistence is disabled and in
// engine tests that only exercise in-memory behavior.
type NoopStore struct{}

func (NoopStore) SaveOwner(context.Context, OwnerSnapshot) error   { return nil }
func (NoopStore) LoadOwners(context.Context) ([]OwnerSnapshot, error) { return nil, nil }
func (NoopStore) Close(context.Context) error                      { return nil }
