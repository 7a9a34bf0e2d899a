package services

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/strappedupmami/journeyatlas/internal/database"
)

// SnapshotProvider contributes one owner's slice of durable state to a
// snapshot. Implementations must only read under their own locks.
type SnapshotProvider interface {
	FillSnapshot(ownerID string, snap *database.OwnerSnapshot)
}

// PersistenceService is the write-behind side of the engine. Mutating
// services call RequestPersist after releasing their locks; the save runs
// on its own goroutine and its failure is logged, never propagated. The
// in-memory state stays authoritative for the request either way.
type PersistenceService struct {
	store     database.SnapshotStore
	metrics   *Metrics
	providers []SnapshotProvider
	limiters  sync.Map // ownerID -> *rate.Limiter
	wg        sync.WaitGroup
}

// Per-owner save throttle: coalesces mutation bursts into at most one
// snapshot every two seconds (burst of 1 keeps the first save immediate).
const snapshotInterval = 2 * time.Second

// NewPersistenceService creates a persistence service over the given store.
func NewPersistenceService(store database.SnapshotStore, metrics *Metrics) *PersistenceService {
	if store == nil {
		store = database.NoopStore{}
	}
	return &PersistenceService{store: store, metrics: metrics}
}

// Register adds a provider. Call during wiring, before any traffic.
func (p *PersistenceService) Register(provider SnapshotProvider) {
	p.providers = append(p.providers, provider)
}

// RequestPersist schedules a best-effort snapshot save for the owner.
// Returns immediately; bursts are coalesced by the per-owner throttle.
func (p *PersistenceService) RequestPersist(ownerID string) {
	if ownerID == "" {
		return
	}

	if !p.ownerLimiter(ownerID).Allow() {
		p.metrics.RecordSnapshotSave("throttled")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		snap := database.OwnerSnapshot{OwnerID: ownerID, SavedAt: time.Now().UTC()}
		for _, provider := range p.providers {
			provider.FillSnapshot(ownerID, &snap)
		}

		if err := p.store.SaveOwner(ctx, snap); err != nil {
			log.Printf("⚠️ [PERSIST] Snapshot save failed for owner %s: %v", ownerID, err)
			p.metrics.RecordSnapshotSave("error")
			return
		}
		p.metrics.RecordSnapshotSave("ok")
	}()
}

// Flush waits for in-flight saves. Used on shutdown and in tests.
func (p *PersistenceService) Flush() {
	p.wg.Wait()
}

// Restore loads every stored snapshot and hands each one to the given
// restore function. Called once at startup, before traffic.
func (p *PersistenceService) Restore(ctx context.Context, restore func(database.OwnerSnapshot)) error {
	snapshots, err := p.store.LoadOwners(ctx)
	if err != nil {
		return err
	}
	for _, snap := range snapshots {
		restore(snap)
	}
	if len(snapshots) > 0 {
		log.Printf("📦 [PERSIST] Restored %d owner snapshots", len(snapshots))
	}
	return nil
}

func (p *PersistenceService) ownerLimiter(ownerID string) *rate.Limiter {
	if limiter, ok := p.limiters.Load(ownerID); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := p.limiters.LoadOrStore(ownerID, rate.NewLimiter(rate.Every(snapshotInterval), 1))
	return limiter.(*rate.Limiter)
}
