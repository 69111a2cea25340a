package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bugprint/internal/platform/store/pg"
)

// pgxConn is what *pgxpool.Pool and pgx.Tx have in common
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced is a RowQuerier over c that reports every statement to tracer
type traced struct {
	c      pgxConn
	tracer pg.QueryTracer
	slowUS int64
}

func newTraced(c pgxConn, p *pg.PG) traced {
	return traced{c: c, tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000}
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.c.Exec(ctx, sql, args...)
	t.emit(ctx, sql, args, start, err)
	return tag{ct}, err
}

// Query reports when the result set opens, scan time is not counted
func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.c.Query(ctx, sql, args...)
	t.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{r: rs}, nil
}

// QueryRow reports after Scan so the event carries the scan error
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return row{
		r:     t.c.QueryRow(ctx, sql, args...),
		after: func(err error) { t.emit(ctx, sql, args, start, err) },
	}
}

func (t traced) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	us := time.Since(start).Microseconds()
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: us,
		Err:       err,
		Slow:      t.slowUS >= 0 && us >= t.slowUS,
	})
}

// pgAdapter is the TxRunner the Store exposes for postgres
type pgAdapter struct {
	traced
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{traced: newTraced(p.Pool, p), p: p}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "select 1").Scan(&one)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

// Tx commits when fn returns nil; any error or panic rolls back
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	return runTx(ctx, tx, newTraced(tx, a.p), fn)
}

// runTx is split from Tx so the commit and rollback rules can run against a fake tx
func runTx(ctx context.Context, tx pgx.Tx, q RowQuerier, fn func(q RowQuerier) error) error {
	// a no op once Commit succeeded
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type rows struct{ r pgx.Rows }

func (x rows) Next() bool            { return x.r.Next() }
func (x rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rows) Err() error            { return x.r.Err() }
func (x rows) Close()                { x.r.Close() }

func (x rows) Columns() []string {
	fds := x.r.FieldDescriptions()
	out := make([]string, len(fds))
	for i, f := range fds {
		out[i] = f.Name
	}
	return out
}

type tag struct{ t pgconn.CommandTag }

func (t tag) String() string      { return t.t.String() }
func (t tag) RowsAffected() int64 { return t.t.RowsAffected() }
