// Package ch provides a clickhouse client
package ch

import (
	"context"
	"fmt"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL string

	// ClientName and ClientTag identify this process in client info
	ClientName string
	ClientTag  string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a native clickhouse connection
type CH struct {
	conn driver.Conn
}

// Open dials clickhouse using a DSN URL and verifies connectivity
func Open(ctx context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.ClientName, cfg.ClientTag)

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ch: ping: %w", err)
	}
	return &CH{conn: conn}, nil
}

// Insert writes data to table in one batch. Accepted shapes: [][]any for
// positional rows, a slice of structs, or a single struct (ch tags map fields
// to columns)
func (c *CH) Insert(ctx context.Context, table string, data any) error {
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch: prepare batch %s: %w", table, err)
	}

	switch rows := data.(type) {
	case [][]any:
		for _, r := range rows {
			if err := batch.Append(r...); err != nil {
				return fmt.Errorf("ch: append %s: %w", table, err)
			}
		}
	default:
		rv := reflect.ValueOf(data)
		if rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				if err := batch.AppendStruct(ptrTo(rv.Index(i))); err != nil {
					return fmt.Errorf("ch: append %s: %w", table, err)
				}
			}
		} else {
			if err := batch.AppendStruct(ptrTo(rv)); err != nil {
				return fmt.Errorf("ch: append %s: %w", table, err)
			}
		}
	}
	return batch.Send()
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes resources
func (c *CH) Close() error { return c.conn.Close() }

// ptrTo returns an addressable pointer for AppendStruct, copying when needed
func ptrTo(v reflect.Value) any {
	if v.Kind() == reflect.Ptr {
		return v.Interface()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p.Interface()
}
