package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"bugprint/internal/platform/store/kv"
	"bugprint/internal/platform/store/pg"
)

const (
	pgPingAttempts = 20
	pgPingTimeout  = 3 * time.Second
)

// pgBackoff spaces connect attempts from 150ms up to 2s
func pgBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(150*time.Millisecond),
		backoff.WithMaxInterval(2*time.Second),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, pgPingAttempts-1), ctx)
}

// openPG builds the pool and waits for the server to answer before publishing the adapter
// the wait pings the pool directly so it leaves no trace lines
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer)
	if err != nil {
		return nil, err
	}

	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, pgPingTimeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	}
	if err := backoff.Retry(ping, pgBackoff(ctx)); err != nil {
		p.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", pgPingAttempts, err)
	}
	return newPGAdapter(p), nil
}

func openKV(ctx context.Context, cfg Config, s *Store) (KV, error) {
	d, err := kv.Open(ctx, kv.Config{
		Path:       cfg.KV.Path,
		InMemory:   cfg.KV.InMemory,
		SyncWrites: cfg.KV.SyncWrites,
		GCInterval: cfg.KV.GCInterval,
	}, s.Log)
	if err != nil {
		return nil, err
	}
	return newKVAdapter(d), nil
}
