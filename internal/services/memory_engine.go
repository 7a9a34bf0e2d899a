package services

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strappedupmami/journeyatlas/internal/database"
	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Memory engine tuning. Retrieval weights favor intrinsic weight, then
// recency, then query relevance, with a small bonus for permanent records.
const (
	maxRecordsPerOwner  = 3000
	transientDefaultTTL = 14 * 24 * time.Hour
	fingerprintPrefix   = 300 // normalized chars hashed for identity

	minWeight     = 0.05
	maxWeight     = 1.0
	defaultWeight = 0.5

	recencyHalfLifeHours = 72.0

	retrievalWeightFactor    = 0.45
	retrievalRecencyFactor   = 0.30
	retrievalRelevanceFactor = 0.25
	permanentBonus           = 0.05

	retentionWeightFactor  = 0.7
	retentionRecencyFactor = 0.3

	minRetrieveLimit = 1
	maxRetrieveLimit = 64
)

// MemoryEngine owns the per-owner long-term memory collections:
// ingestion, deduplication, decay, pruning and retrieval scoring.
//
// It never returns errors to callers: privacy opt-out, empty input and
// unknown owners all degrade to nil/empty results. Durability is a
// write-behind concern handled by the PersistenceService after locks are
// released.
type MemoryEngine struct {
	mu      sync.RWMutex
	owners  map[string]*memoryCollection
	persist *PersistenceService
	metrics *Metrics
}

type memoryCollection struct {
	mu      sync.RWMutex
	records []*models.MemoryRecord
}

// NewMemoryEngine creates an engine backed by the given write-behind
// persistence service. metrics may be nil in tests.
func NewMemoryEngine(persist *PersistenceService, metrics *Metrics) *MemoryEngine {
	return &MemoryEngine{
		owners:  make(map[string]*memoryCollection),
		persist: persist,
		metrics: metrics,
	}
}

// Ingest folds one behavioral signal into the owner's memory. Returns the
// created or updated record, or nil when the event was a no-op (opt-out,
// empty text after sanitization, missing owner).
func (e *MemoryEngine) Ingest(ownerID string, optIn bool, event models.MemoryIngestEvent) *models.MemoryRecord {
	if ownerID == "" || !optIn {
		e.metrics.RecordIngest("skipped")
		return nil
	}

	text := sanitizeLimitedText(event.Text, maxMemoryTextLen)
	if text == "" {
		e.metrics.RecordIngest("skipped")
		return nil
	}

	memoryType := models.NormalizeMemoryType(event.Type)
	stability := models.NormalizeStability(event.Stability)
	source := models.NormalizeMemorySource(event.Source)
	tags := normalizeTags(event.Tags)
	fingerprint := memoryFingerprint(memoryType, stability, text)

	now := time.Now().UTC()
	happenedAt := now
	if event.HappenedAt != nil && !event.HappenedAt.IsZero() {
		happenedAt = event.HappenedAt.UTC()
	}

	expiresAt := expiryFor(stability, happenedAt, event.ExpiresAt)
	weight := clampWeight(event.Weight)

	collection := e.ownerCollection(ownerID)
	collection.mu.Lock()

	var result models.MemoryRecord
	outcome := "created"
	if existing := findByFingerprint(collection.records, fingerprint); existing != nil {
		existing.Weight = clamp((existing.Weight+weight)/2, minWeight, maxWeight)
		existing.Tags = unionTags(existing.Tags, tags)
		existing.Source = source
		existing.Text = text
		existing.UpdatedAt = now
		existing.ExpiresAt = expiresAt
		result = *existing
		outcome = "updated"
	} else {
		record := &models.MemoryRecord{
			ID:          uuid.New().String(),
			OwnerID:     ownerID,
			Type:        memoryType,
			Stability:   stability,
			Source:      source,
			Text:        text,
			Weight:      weight,
			Tags:        tags,
			Fingerprint: fingerprint,
			CreatedAt:   happenedAt,
			UpdatedAt:   now,
			ExpiresAt:   expiresAt,
		}
		collection.records = append(collection.records, record)
		result = *record
	}

	pruned := pruneAndCompact(collection, now)
	collection.mu.Unlock()

	e.metrics.RecordIngest(outcome)
	e.metrics.RecordPruned(pruned)
	e.persist.RequestPersist(ownerID)

	return &result
}

// Retrieve scores every live record for the query and returns the top
// results, best first. Opt-out and unknown owners yield an empty slice.
func (e *MemoryEngine) Retrieve(ownerID string, optIn bool, query string, limit int) []models.MemoryRetrievedItem {
	if ownerID == "" || !optIn {
		return nil
	}

	records := e.snapshotOwner(ownerID)
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	queryTokens := tokenize(query)

	items := make([]models.MemoryRetrievedItem, 0, len(records))
	for _, record := range records {
		if record.Expired(now) {
			continue
		}

		recency := recencyScore(record.UpdatedAt, now)
		relevance := relevanceScore(queryTokens, record)
		final := record.Weight*retrievalWeightFactor +
			recency*retrievalRecencyFactor +
			relevance*retrievalRelevanceFactor
		if record.Stability == models.StabilityPermanent {
			final += permanentBonus
		}

		items = append(items, models.MemoryRetrievedItem{
			Record:         record,
			RecencyScore:   recency,
			RelevanceScore: relevance,
			FinalScore:     final,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})

	if limit < minRetrieveLimit {
		limit = minRetrieveLimit
	}
	if limit > maxRetrieveLimit {
		limit = maxRetrieveLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Clear removes the owner's records matching the scope and returns how
// many were removed.
func (e *MemoryEngine) Clear(ownerID string, scope models.MemoryClearScope) int {
	if ownerID == "" {
		return 0
	}

	collection := e.ownerCollection(ownerID)
	collection.mu.Lock()

	kept := collection.records[:0]
	removed := 0
	for _, record := range collection.records {
		if scopeMatches(scope, record.Stability) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	collection.records = kept
	pruned := pruneAndCompact(collection, time.Now().UTC())
	collection.mu.Unlock()

	e.metrics.RecordPruned(pruned)
	if removed > 0 || pruned > 0 {
		log.Printf("🗑️ [MEMORY] Cleared %d records (scope: %s) for owner %s", removed, scope, ownerID)
		e.persist.RequestPersist(ownerID)
	}
	return removed
}

// PruneExpired removes expired records for every owner. Called by the
// background maintenance sweep; lazy pruning on mutation keeps the engine
// correct even if this never runs.
func (e *MemoryEngine) PruneExpired(now time.Time) int {
	e.mu.RLock()
	owners := make([]string, 0, len(e.owners))
	for ownerID := range e.owners {
		owners = append(owners, ownerID)
	}
	e.mu.RUnlock()

	total := 0
	for _, ownerID := range owners {
		collection := e.ownerCollection(ownerID)
		collection.mu.Lock()
		pruned := pruneAndCompact(collection, now)
		collection.mu.Unlock()

		if pruned > 0 {
			total += pruned
			e.persist.RequestPersist(ownerID)
		}
	}

	e.metrics.RecordPruned(total)
	e.metrics.SetMemoryRecords(e.recordCount())
	return total
}

// RestoreOwner seeds the owner's collection from a snapshot. Expired
// records are dropped on the way in. Called at startup, before traffic.
func (e *MemoryEngine) RestoreOwner(ownerID string, records []models.MemoryRecord) {
	if ownerID == "" || len(records) == 0 {
		return
	}

	now := time.Now().UTC()
	collection := e.ownerCollection(ownerID)
	collection.mu.Lock()
	defer collection.mu.Unlock()

	collection.records = collection.records[:0]
	for i := range records {
		record := records[i]
		if record.Expired(now) {
			continue
		}
		collection.records = append(collection.records, &record)
	}
	pruneAndCompact(collection, now)
}

// FillSnapshot implements SnapshotProvider.
func (e *MemoryEngine) FillSnapshot(ownerID string, snap *database.OwnerSnapshot) {
	snap.Memories = e.snapshotOwner(ownerID)
}

// snapshotOwner returns a deep-enough copy of the owner's records: the
// slice and record values are cloned, so scoring never races a mutation.
func (e *MemoryEngine) snapshotOwner(ownerID string) []models.MemoryRecord {
	e.mu.RLock()
	collection := e.owners[ownerID]
	e.mu.RUnlock()
	if collection == nil {
		return nil
	}

	collection.mu.RLock()
	defer collection.mu.RUnlock()

	records := make([]models.MemoryRecord, 0, len(collection.records))
	for _, record := range collection.records {
		records = append(records, *record)
	}
	return records
}

func (e *MemoryEngine) ownerCollection(ownerID string) *memoryCollection {
	e.mu.RLock()
	collection := e.owners[ownerID]
	e.mu.RUnlock()
	if collection != nil {
		return collection
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if collection = e.owners[ownerID]; collection == nil {
		collection = &memoryCollection{}
		e.owners[ownerID] = collection
	}
	return collection
}

func (e *MemoryEngine) recordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := 0
	for _, collection := range e.owners {
		collection.mu.RLock()
		total += len(collection.records)
		collection.mu.RUnlock()
	}
	return total
}

// pruneAndCompact drops expired records, re-ranks the survivors by
// retention score and truncates to the per-owner cap. Caller must hold
// the collection's write lock. Returns how many records were removed.
func pruneAndCompact(collection *memoryCollection, now time.Time) int {
	before := len(collection.records)

	kept := collection.records[:0]
	for _, record := range collection.records {
		if record.Expired(now) {
			continue
		}
		kept = append(kept, record)
	}
	collection.records = kept

	sort.SliceStable(collection.records, func(i, j int) bool {
		return retentionScore(collection.records[i], now) > retentionScore(collection.records[j], now)
	})
	if len(collection.records) > maxRecordsPerOwner {
		collection.records = collection.records[:maxRecordsPerOwner]
	}

	return before - len(collection.records)
}

// retentionScore ranks records for eviction: intrinsic weight dominates,
// recency keeps fresh records alive.
func retentionScore(record *models.MemoryRecord, now time.Time) float64 {
	return record.Weight*retentionWeightFactor + recencyScore(record.UpdatedAt, now)*retentionRecencyFactor
}

// recencyScore decays hyperbolically with age: 1.0 when fresh, 0.5 at 72
// hours, approaching 0 as the record ages.
func recencyScore(updatedAt, now time.Time) float64 {
	ageHours := now.Sub(updatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return 1 / (1 + ageHours/recencyHalfLifeHours)
}

// relevanceScore is the token-overlap ratio between the query and the
// record's text plus tags. No query tokens means no relevance signal.
func relevanceScore(queryTokens []string, record models.MemoryRecord) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	recordTokens := make(map[string]bool)
	for _, token := range tokenize(record.Text) {
		recordTokens[token] = true
	}
	for _, tag := range record.Tags {
		for _, token := range tokenize(tag) {
			recordTokens[token] = true
		}
	}

	seen := make(map[string]bool, len(queryTokens))
	matched := 0
	unique := 0
	for _, token := range queryTokens {
		if seen[token] {
			continue
		}
		seen[token] = true
		unique++
		if recordTokens[token] {
			matched++
		}
	}
	if unique == 0 {
		return 0
	}
	return float64(matched) / float64(unique)
}

// memoryFingerprint hashes the semantic identity of a memory: its type,
// stability and the first 300 normalized characters of its text.
func memoryFingerprint(memoryType models.MemoryType, stability models.MemoryStability, text string) string {
	normalized := truncateRunes(normalizeForFingerprint(text), fingerprintPrefix)
	sum := sha256.Sum256([]byte(string(memoryType) + "|" + string(stability) + "|" + normalized))
	return hex.EncodeToString(sum[:])
}

func expiryFor(stability models.MemoryStability, happenedAt time.Time, explicit *time.Time) *time.Time {
	if stability == models.StabilityPermanent {
		return nil
	}
	if explicit != nil && !explicit.IsZero() {
		expiry := explicit.UTC()
		return &expiry
	}
	expiry := happenedAt.Add(transientDefaultTTL)
	return &expiry
}

func clampWeight(weight float64) float64 {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return defaultWeight
	}
	return clamp(weight, minWeight, maxWeight)
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func findByFingerprint(records []*models.MemoryRecord, fingerprint string) *models.MemoryRecord {
	for _, record := range records {
		if record.Fingerprint == fingerprint {
			return record
		}
	}
	return nil
}

func unionTags(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	return normalizeTags(merged)
}

func scopeMatches(scope models.MemoryClearScope, stability models.MemoryStability) bool {
	switch scope {
	case models.ClearScopePermanent:
		return stability == models.StabilityPermanent
	case models.ClearScopeTransient:
		return stability == models.StabilityTransient
	default:
		return true
	}
}
