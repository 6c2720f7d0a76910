// Package repo reads stored reputation API credentials from kv_state
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

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the credentials repository
type Storage interface {
	// APIKey returns the stored key for provider, or "" when unset
	APIKey(ctx context.Context, provider string) (string, error)
}

// APIKey implements Storage. Keys live under apiKey_<provider>
func (s *pg) APIKey(ctx context.Context, provider string) (string, error) {
	var raw []byte
	row := s.q.QueryRow(ctx, `SELECT value FROM kv_state WHERE key = $1`, "apiKey_"+provider)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("scan: load api key for %s: %w", provider, err)
	}
	var key string
	if err := json.Unmarshal(raw, &key); err != nil {
		return "", fmt.Errorf("scan: decode api key for %s: %w", provider, err)
	}
	return key, nil
}
