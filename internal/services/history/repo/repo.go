// Package repo persists scan history and the threat counter in kv_state
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fishguard/internal/modkit/repokit"
	"fishguard/internal/services/history/domain"

	"github.com/jackc/pgx/v5"
)

const (
	historyKey     = "history"
	threatCountKey = "threatCount"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the history repository
type Storage interface {
	LoadHistory(ctx context.Context) ([]domain.Entry, error)
	SaveHistory(ctx context.Context, entries []domain.Entry) error
	LoadThreatCount(ctx context.Context) (int, error)
	SaveThreatCount(ctx context.Context, n int) error
}

func (s *pg) loadValue(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	row := s.q.QueryRow(ctx, `SELECT value FROM kv_state WHERE key = $1`, key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("history: load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("history: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *pg) saveValue(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("history: encode %s: %w", key, err)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO kv_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, raw)
	if err != nil {
		return fmt.Errorf("history: save %s: %w", key, err)
	}
	return nil
}

// LoadHistory implements Storage
func (s *pg) LoadHistory(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	if _, err := s.loadValue(ctx, historyKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveHistory implements Storage
func (s *pg) SaveHistory(ctx context.Context, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	return s.saveValue(ctx, historyKey, entries)
}

// LoadThreatCount implements Storage
func (s *pg) LoadThreatCount(ctx context.Context) (int, error) {
	var n int
	if _, err := s.loadValue(ctx, threatCountKey, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// SaveThreatCount implements Storage
func (s *pg) SaveThreatCount(ctx context.Context, n int) error {
	return s.saveValue(ctx, threatCountKey, n)
}
