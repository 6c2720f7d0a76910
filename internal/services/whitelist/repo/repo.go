// Package repo persists the whitelist in the kv_state table
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fishguard/internal/modkit/repokit"

	"github.com/jackc/pgx/v5"
)

const whitelistKey = "whitelist"

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the whitelist repository
type Storage interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, domains []string) error
}

// Load implements Storage; a missing key is an empty whitelist
func (s *pg) Load(ctx context.Context) ([]string, error) {
	var raw []byte
	row := s.q.QueryRow(ctx, `SELECT value FROM kv_state WHERE key = $1`, whitelistKey)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("whitelist: load: %w", err)
	}
	var domains []string
	if err := json.Unmarshal(raw, &domains); err != nil {
		return nil, fmt.Errorf("whitelist: decode: %w", err)
	}
	return domains, nil
}

// Save implements Storage
func (s *pg) Save(ctx context.Context, domains []string) error {
	if domains == nil {
		domains = []string{}
	}
	raw, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("whitelist: encode: %w", err)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO kv_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		whitelistKey, raw)
	if err != nil {
		return fmt.Errorf("whitelist: save: %w", err)
	}
	return nil
}
