// Package pg opens the pgx pool behind the registry's postgres backend
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the subset of pool settings the registry exposes
type Config struct {
	URL string
	// AppName shows up as application_name in pg_stat_activity
	AppName  string
	MaxConns int32
	// SlowMs marks traced statements at or above it as slow; negative disables
	SlowMs int
}

// PG owns the pool and the tracer statements are reported to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// newPool is swapped in tests
var newPool = pgxpool.NewWithConfig

// poolConfig parses cfg.URL and applies the overrides cfg sets
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	return pc, nil
}

// Open builds the pool; it does not wait for the server to answer
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close is safe on a nil PG or pool
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
