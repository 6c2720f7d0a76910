package service

import (
	"context"

	"fishguard/internal/modkit/repokit"
	"fishguard/internal/services/corpus/domain"
	"fishguard/internal/services/corpus/repo"
)

// Snapshots adapts the Postgres snapshot repo to domain.SnapshotPort
type Snapshots struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
}

// NewSnapshots constructs the snapshot persistence adapter
func NewSnapshots(db repokit.TxRunner, b repokit.Binder[repo.Storage]) *Snapshots {
	return &Snapshots{DB: db, Binder: b}
}

// Save implements domain.SnapshotPort
func (s *Snapshots) Save(ctx context.Context, snap domain.Snapshot) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).SaveSnapshot(ctx, snap)
	})
}

// Load implements domain.SnapshotPort
func (s *Snapshots) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	var (
		snap domain.Snapshot
		ok   bool
	)
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		snap, ok, err = s.Binder.Bind(q).LoadSnapshot(ctx)
		return err
	})
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, ok, nil
}
