// Package store opens the optional storage backends the registry can sit on
package store

import (
	"context"
	"errors"
	"fmt"

	"bugprint/internal/platform/logger"
)

// Store holds whichever backends Open was asked for; disabled ones stay nil
type Store struct {
	// Log is handed to the backends; the zero value discards
	Log logger.Logger

	PG TxRunner
	KV KV
}

// Row scans a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set; Close must be called
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what an Exec touched
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// KV is a string keyed byte store
type KV interface {
	Get(ctx context.Context, key string) (val []byte, found bool, err error)
	Set(ctx context.Context, key string, val []byte) error
	Close() error
}

// Pinger reports whether a backend answers
type Pinger interface{ Ping(context.Context) error }

// Open starts every backend cfg enables, pg first
// a failure closes what was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if cfg.PG.Enabled {
		q, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = q
	}
	if cfg.KV.Enabled {
		d, err := openKV(ctx, cfg, s)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.KV = d
	}
	return s, nil
}

// backend names an opened seam for Guard and Close
type backend struct {
	name string
	seam any
}

func (s *Store) backends() []backend {
	var out []backend
	if s.PG != nil {
		out = append(out, backend{"pg", s.PG})
	}
	if s.KV != nil {
		out = append(out, backend{"kv", s.KV})
	}
	return out
}

// Guard pings every opened backend that can be pinged and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil store")
	}
	var errs []error
	for _, b := range s.backends() {
		p, ok := b.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close shuts the backends down in reverse open order
func (s *Store) Close(context.Context) error {
	bs := s.backends()
	var errs []error
	for i := len(bs) - 1; i >= 0; i-- {
		c, ok := bs[i].seam.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bs[i].name, err))
		}
	}
	return errors.Join(errs...)
}
