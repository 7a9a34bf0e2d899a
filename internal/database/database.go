package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the default snapshot store: a single-file embedded
// database holding one JSON payload per owner.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the snapshot database at
// the given path. Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// Snapshot writes are serialized per owner; a small pool is plenty.
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping snapshot database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, err
	}

	log.Printf("✅ SQLite snapshot store ready at %s", path)
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS owner_snapshots (
			owner_id TEXT PRIMARY KEY,
			payload  TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create owner_snapshots table: %w", err)
	}
	return nil
}

// SaveOwner upserts the owner's full snapshot as one JSON payload.
func (s *SQLiteStore) SaveOwner(ctx context.Context, snap OwnerSnapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for owner %s: %w", snap.OwnerID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO owner_snapshots (owner_id, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`, snap.OwnerID, string(payload), snap.SavedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save snapshot for owner %s: %w", snap.OwnerID, err)
	}
	return nil
}

// LoadOwners returns every stored snapshot; corrupt rows are skipped with
// a warning rather than failing the whole load.
func (s *SQLiteStore) LoadOwners(ctx context.Context) ([]OwnerSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT owner_id, payload FROM owner_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []OwnerSnapshot
	for rows.Next() {
		var ownerID, payload string
		if err := rows.Scan(&ownerID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		var snap OwnerSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			log.Printf("⚠️ [SNAPSHOT] Skipping corrupt snapshot for owner %s: %v", ownerID, err)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}
