package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/adaptedmind/pkg/models"
)

// DefaultSnapshotKey identifies the single in-progress test of this device
const DefaultSnapshotKey = "adaptedmind:test-session"

// SnapshotRepository stores the autosaved test session as a JSON row
type SnapshotRepository struct {
	db  *sqlx.DB
	key string
}

// NewSnapshotRepository creates a repository for the given key; an empty key
// selects DefaultSnapshotKey.
func NewSnapshotRepository(db *sqlx.DB, key string) *SnapshotRepository {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotRepository{db: db, key: key}
}

// Save overwrites the stored snapshot
func (r *SnapshotRepository) Save(ctx context.Context, snapshot models.SessionSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO session_snapshots (snapshot_key, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (snapshot_key) DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`), r.key, string(payload), snapshot.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when there is none
func (r *SnapshotRepository) Load(ctx context.Context) (*models.SessionSnapshot, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload,
		r.db.Rebind("SELECT payload FROM session_snapshots WHERE snapshot_key = ?"), r.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot models.SessionSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// Clear removes the stored snapshot
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM session_snapshots WHERE snapshot_key = ?"), r.key)
	if err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
