package service

import (
	"context"

	"fishguard/internal/modkit/repokit"
	"fishguard/internal/services/scan/repo"
)

// Credentials adapts the Postgres credentials repo to domain.CredentialsPort
type Credentials struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
}

// NewCredentials constructs the credentials adapter
func NewCredentials(db repokit.TxRunner, b repokit.Binder[repo.Storage]) *Credentials {
	return &Credentials{DB: db, Binder: b}
}

// APIKey implements domain.CredentialsPort
func (c *Credentials) APIKey(ctx context.Context, provider string) (string, error) {
	var key string
	err := c.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		key, err = c.Binder.Bind(q).APIKey(ctx, provider)
		return err
	})
	return key, err
}
