// Package repo persists the corpus snapshot in the kv_state table
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fishguard/internal/modkit/repokit"
	"fishguard/internal/services/corpus/domain"

	"github.com/jackc/pgx/v5"
)

// snapshotKey is the kv_state key holding the serialized corpus
const snapshotKey = "phishingLists"

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the corpus snapshot repository
type Storage interface {
	LoadSnapshot(ctx context.Context) (domain.Snapshot, bool, error)
	SaveSnapshot(ctx context.Context, s domain.Snapshot) error
}

// LoadSnapshot implements Storage
func (s *pg) LoadSnapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	var raw []byte
	row := s.q.QueryRow(ctx, `SELECT value FROM kv_state WHERE key = $1`, snapshotKey)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return domain.Snapshot{}, false, nil
		}
		return domain.Snapshot{}, false, fmt.Errorf("corpus: load snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// a corrupt snapshot is treated as absent so ingestion rebuilds it
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// SaveSnapshot implements Storage
func (s *pg) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("corpus: encode snapshot: %w", err)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO kv_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		snapshotKey, raw)
	if err != nil {
		return fmt.Errorf("corpus: save snapshot: %w", err)
	}
	return nil
}
