// Package service provides the scan history service implementation
package service

import (
	"context"

	"fishguard/internal/modkit/repokit"
	"fishguard/internal/services/history/domain"
	"fishguard/internal/services/history/repo"
)

// Service implements domain.Port
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
}

// New constructs a new history service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage]) *Service {
	return &Service{DB: db, Binder: b}
}

// Append implements domain.Port
func (s *Service) Append(ctx context.Context, e domain.Entry) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		entries, err := st.LoadHistory(ctx)
		if err != nil {
			return err
		}
		entries = append([]domain.Entry{e}, entries...)
		if len(entries) > domain.Cap {
			entries = entries[:domain.Cap]
		}
		return st.SaveHistory(ctx, entries)
	})
}

// List implements domain.Port
func (s *Service) List(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		entries, err = s.Binder.Bind(q).LoadHistory(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

// Clear implements domain.Port
func (s *Service) Clear(ctx context.Context) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).SaveHistory(ctx, nil)
	})
}

// IncrementThreats implements domain.Port
func (s *Service) IncrementThreats(ctx context.Context) (int, error) {
	var n int
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		cur, err := st.LoadThreatCount(ctx)
		if err != nil {
			return err
		}
		n = cur + 1
		return st.SaveThreatCount(ctx, n)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ThreatCount implements domain.Port
func (s *Service) ThreatCount(ctx context.Context) (int, error) {
	var n int
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		n, err = s.Binder.Bind(q).LoadThreatCount(ctx)
		return err
	})
	return n, err
}

// ResetThreats implements domain.Port
func (s *Service) ResetThreats(ctx context.Context) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).SaveThreatCount(ctx, 0)
	})
}
