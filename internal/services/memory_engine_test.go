package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

func newTestEngine() *MemoryEngine {
	return NewMemoryEngine(NewPersistenceService(nil, nil), nil)
}

// seedRecord places a record directly into the owner's collection,
// bypassing ingest-time pruning. Used to stage already-expired records.
func seedRecord(engine *MemoryEngine, ownerID string, record models.MemoryRecord) {
	collection := engine.ownerCollection(ownerID)
	collection.mu.Lock()
	clone := record
	collection.records = append(collection.records, &clone)
	collection.mu.Unlock()
}

func expiredTransient(ownerID, text string) models.MemoryRecord {
	now := time.Now().UTC()
	expired := now.Add(-24 * time.Hour)
	return models.MemoryRecord{
		ID: "stale-" + text, OwnerID: ownerID,
		Type: models.MemoryTypeMood, Stability: models.StabilityTransient,
		Source: models.SourceChat, Text: text, Weight: 0.5,
		Fingerprint: "fp-" + text,
		CreatedAt:   now.Add(-30 * 24 * time.Hour),
		UpdatedAt:   now.Add(-30 * 24 * time.Hour),
		ExpiresAt:   &expired,
	}
}

func TestIngestPrivacyGate(t *testing.T) {
	engine := newTestEngine()

	record := engine.Ingest("user-1", false, models.MemoryIngestEvent{
		Type: "preference", Text: "prefers quiet mornings",
	})
	if record != nil {
		t.Fatalf("expected nil record when opted out, got %+v", record)
	}
	if items := engine.Retrieve("user-1", true, "", 10); len(items) != 0 {
		t.Fatalf("expected empty collection after opted-out ingest, got %d items", len(items))
	}
}

func TestIngestEmptyTextIsNoop(t *testing.T) {
	engine := newTestEngine()

	record := engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "goal", Text: "  \t\n  ",
	})
	if record != nil {
		t.Fatalf("expected nil record for blank text, got %+v", record)
	}
}

func TestIngestDeduplicatesByFingerprint(t *testing.T) {
	engine := newTestEngine()

	first := engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "preference", Text: "Loves Dark-Mode!!!", Weight: 0.9, Tags: []string{"ui"},
	})
	if first == nil {
		t.Fatal("first ingest returned nil")
	}

	// Same semantic identity: punctuation and casing must not matter.
	second := engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "preference", Text: "loves dark mode", Weight: 0.5, Tags: []string{"theme"},
	})
	if second == nil {
		t.Fatal("second ingest returned nil")
	}

	if second.ID != first.ID {
		t.Errorf("expected dedup onto the same record, got ids %s and %s", first.ID, second.ID)
	}
	if got, want := second.Weight, 0.7; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected averaged weight %v, got %v", want, got)
	}
	if len(second.Tags) != 2 {
		t.Errorf("expected tags to merge into 2, got %v", second.Tags)
	}

	items := engine.Retrieve("user-1", true, "", 10)
	if len(items) != 1 {
		t.Fatalf("expected a single record after dedup, got %d", len(items))
	}
}

func TestIngestWeightNormalization(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   float64
	}{
		{"nan defaults", math.NaN(), 0.5},
		{"positive inf defaults", math.Inf(1), 0.5},
		{"clamped low", -3, 0.05},
		{"clamped high", 7, 1.0},
		{"in range kept", 0.42, 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			record := engine.Ingest("user-1", true, models.MemoryIngestEvent{
				Type: "insight", Text: "weight test " + tt.name, Weight: tt.weight,
			})
			if record == nil {
				t.Fatal("ingest returned nil")
			}
			if math.Abs(record.Weight-tt.want) > 1e-9 {
				t.Errorf("weight = %v, want %v", record.Weight, tt.want)
			}
		})
	}
}

func TestTransientDefaultExpiry(t *testing.T) {
	engine := newTestEngine()

	happened := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "mood", Stability: "transient", Text: "stressed about launch",
		HappenedAt: &happened,
	})
	if record == nil {
		t.Fatal("ingest returned nil")
	}
	if record.ExpiresAt == nil {
		t.Fatal("transient record missing default expiry")
	}
	if want := happened.Add(14 * 24 * time.Hour); !record.ExpiresAt.Equal(want) {
		t.Errorf("expiry = %v, want %v", record.ExpiresAt, want)
	}

	permanent := engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "identity", Stability: "permanent", Text: "is a founder",
	})
	if permanent.ExpiresAt != nil {
		t.Errorf("permanent record must not carry expiry, got %v", permanent.ExpiresAt)
	}
}

func TestRetrieveSkipsExpired(t *testing.T) {
	engine := newTestEngine()

	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "goal", Stability: "permanent", Text: "ship the beta",
	})
	seedRecord(engine, "user-1", expiredTransient("user-1", "old transient mood"))

	items := engine.Retrieve("user-1", true, "", 10)
	if len(items) != 1 {
		t.Fatalf("expected only the live record, got %d items", len(items))
	}
	if items[0].Record.Text != "ship the beta" {
		t.Errorf("unexpected surviving record: %q", items[0].Record.Text)
	}

	// The next mutation for the owner removes the expired record.
	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "insight", Stability: "permanent", Text: "fresh insight",
	})
	if records := engine.snapshotOwner("user-1"); len(records) != 2 {
		t.Errorf("expected expired record gone after mutation, got %d records", len(records))
	}
}

func TestRetrieveOrdering(t *testing.T) {
	engine := newTestEngine()

	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "insight", Stability: "permanent", Text: "minor observation", Weight: 0.2,
	})
	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "goal", Stability: "permanent", Text: "major strategic goal", Weight: 0.95,
	})

	items := engine.Retrieve("user-1", true, "", 10)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Record.Weight < items[1].Record.Weight {
		t.Errorf("higher weight should rank first, got %v before %v",
			items[0].Record.Weight, items[1].Record.Weight)
	}
	if items[0].FinalScore < items[1].FinalScore {
		t.Errorf("items not sorted by final score: %v < %v",
			items[0].FinalScore, items[1].FinalScore)
	}
}

func TestRetrieveRelevanceBoost(t *testing.T) {
	engine := newTestEngine()

	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "preference", Stability: "permanent", Text: "enjoys trail running on weekends", Weight: 0.5,
	})
	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "preference", Stability: "permanent", Text: "drinks espresso every morning", Weight: 0.5,
	})

	items := engine.Retrieve("user-1", true, "trail running", 10)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !strings.Contains(items[0].Record.Text, "running") {
		t.Errorf("query-relevant record should rank first, got %q", items[0].Record.Text)
	}
	if items[0].RelevanceScore <= items[1].RelevanceScore {
		t.Errorf("relevance scores not separating: %v vs %v",
			items[0].RelevanceScore, items[1].RelevanceScore)
	}
}

func TestRetrieveLimitClamp(t *testing.T) {
	engine := newTestEngine()
	for i := 0; i < 5; i++ {
		engine.Ingest("user-1", true, models.MemoryIngestEvent{
			Type: "insight", Stability: "permanent",
			Text: "distinct insight number " + string(rune('a'+i)),
		})
	}

	if items := engine.Retrieve("user-1", true, "", 0); len(items) != 1 {
		t.Errorf("limit 0 should clamp to 1, got %d items", len(items))
	}
	if items := engine.Retrieve("user-1", true, "", -4); len(items) != 1 {
		t.Errorf("negative limit should clamp to 1, got %d items", len(items))
	}
	if items := engine.Retrieve("user-1", true, "", 500); len(items) != 5 {
		t.Errorf("oversized limit should return all 5, got %d items", len(items))
	}
}

func TestClearScopes(t *testing.T) {
	seed := func(engine *MemoryEngine) {
		engine.Ingest("user-1", true, models.MemoryIngestEvent{
			Type: "identity", Stability: "permanent", Text: "permanent fact",
		})
		engine.Ingest("user-1", true, models.MemoryIngestEvent{
			Type: "mood", Stability: "transient", Text: "transient feeling",
		})
	}

	tests := []struct {
		scope     models.MemoryClearScope
		removed   int
		remaining int
	}{
		{models.ClearScopeAll, 2, 0},
		{models.ClearScopePermanent, 1, 1},
		{models.ClearScopeTransient, 1, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			engine := newTestEngine()
			seed(engine)

			if removed := engine.Clear("user-1", tt.scope); removed != tt.removed {
				t.Errorf("removed = %d, want %d", removed, tt.removed)
			}
			if items := engine.Retrieve("user-1", true, "", 10); len(items) != tt.remaining {
				t.Errorf("remaining = %d, want %d", len(items), tt.remaining)
			}
		})
	}
}

func TestPruneExpiredSweep(t *testing.T) {
	engine := newTestEngine()

	seedRecord(engine, "user-1", expiredTransient("user-1", "stale mood"))
	engine.Ingest("user-2", true, models.MemoryIngestEvent{
		Type: "goal", Stability: "permanent", Text: "long term goal",
	})

	if pruned := engine.PruneExpired(time.Now().UTC()); pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	if records := engine.snapshotOwner("user-1"); len(records) != 0 {
		t.Errorf("expired record survived the sweep: %d records", len(records))
	}
	if items := engine.Retrieve("user-2", true, "", 10); len(items) != 1 {
		t.Errorf("other owner's records must survive the sweep, got %d", len(items))
	}
}

func TestClearPrunesExpired(t *testing.T) {
	engine := newTestEngine()

	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "identity", Stability: "permanent", Text: "permanent fact",
	})
	seedRecord(engine, "user-1", expiredTransient("user-1", "stale transient"))

	// Clearing only permanent records must still sweep the expired
	// transient out, like every other mutation does.
	if removed := engine.Clear("user-1", models.ClearScopePermanent); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if records := engine.snapshotOwner("user-1"); len(records) != 0 {
		t.Errorf("expired transient survived clear, got %d records", len(records))
	}
}

func TestRestoreOwnerRoundTrip(t *testing.T) {
	engine := newTestEngine()
	engine.Ingest("user-1", true, models.MemoryIngestEvent{
		Type: "preference", Stability: "permanent", Text: "prefers async updates", Weight: 0.8,
	})

	records := engine.snapshotOwner("user-1")
	if len(records) != 1 {
		t.Fatalf("snapshot has %d records, want 1", len(records))
	}

	restored := newTestEngine()
	restored.RestoreOwner("user-1", records)

	items := restored.Retrieve("user-1", true, "", 10)
	if len(items) != 1 {
		t.Fatalf("restored engine has %d records, want 1", len(items))
	}
	if items[0].Record.Text != "prefers async updates" {
		t.Errorf("restored text = %q", items[0].Record.Text)
	}
	if items[0].Record.Fingerprint != records[0].Fingerprint {
		t.Errorf("fingerprint changed across restore")
	}
}
