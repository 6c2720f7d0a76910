// Package service provides the whitelist service implementation
package service

import (
	"context"

	"fishguard/internal/core/urlx"
	"fishguard/internal/modkit/repokit"
	"fishguard/internal/services/whitelist/repo"
)

// Service implements domain.Port
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
}

// New constructs a new whitelist service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage]) *Service {
	return &Service{DB: db, Binder: b}
}

// Add implements domain.Port
func (s *Service) Add(ctx context.Context, url string) error {
	host, _, err := urlx.SplitHostPath(url)
	if err != nil {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		domains, err := st.Load(ctx)
		if err != nil {
			return err
		}
		for _, d := range domains {
			if d == host {
				return nil
			}
		}
		return st.Save(ctx, append(domains, host))
	})
}

// Remove implements domain.Port
func (s *Service) Remove(ctx context.Context, url string) error {
	host, _, err := urlx.SplitHostPath(url)
	if err != nil {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		domains, err := st.Load(ctx)
		if err != nil {
			return err
		}
		kept := domains[:0]
		for _, d := range domains {
			if d != host {
				kept = append(kept, d)
			}
		}
		return st.Save(ctx, kept)
	})
}

// List implements domain.Port
func (s *Service) List(ctx context.Context) ([]string, error) {
	var domains []string
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		domains, err = s.Binder.Bind(q).Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if domains == nil {
		domains = []string{}
	}
	return domains, nil
}

// Contains implements domain.Port
func (s *Service) Contains(ctx context.Context, url string) (bool, error) {
	host, _, err := urlx.SplitHostPath(url)
	if err != nil {
		return false, nil
	}
	domains, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range domains {
		if d == host {
			return true, nil
		}
	}
	return false, nil
}
