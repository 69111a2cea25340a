package repo

import (
	"context"
	"encoding/json"

	"bugprint/internal/modkit/repokit"
	perr "bugprint/internal/platform/errors"
	"bugprint/internal/platform/store"
	"bugprint/internal/services/registry/domain"
)

// Store is the full persistence surface a claim capable backend offers
type Store interface {
	domain.EntryStore
	domain.Claimer
}

type (
	// PG is a binder that binds the registry repo to a Queryer or TxRunner
	PG struct{}
	// queries implements Store on postgres
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the postgres registry repo
func NewPG() repokit.Binder[Store] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Store { return &queries{q: repokit.RequireQueryer(q)} }

// Schema creates the registry table; every statement is idempotent
var Schema = []string{
	`create table if not exists bug_fingerprints (
  fingerprint text primary key check (fingerprint ~ '^[0-9a-f]{64}$'),
  status      text not null check (status in ('pending','confirmed')),
  saved_at    bigint not null,
  meta        jsonb not null default '{}'::jsonb
)`,
	`create index if not exists bug_fingerprints_saved_at_idx on bug_fingerprints (saved_at)`,
}

// schemaLockKey serializes EnsureSchema across instances starting together
const schemaLockKey int64 = 0x6275677072696e74

// lockSchema is the begin hook that takes the schema advisory lock for the tx
func lockSchema(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, `select pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return perr.FromPostgres(err, "registry: schema lock")
	}
	return nil
}

// EnsureSchema applies Schema in one transaction under the schema lock
func EnsureSchema(ctx context.Context, tx repokit.TxRunner) error {
	return repokit.WithBeginHooks(tx, lockSchema).Tx(ctx, func(q repokit.Queryer) error {
		for _, stmt := range Schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return perr.FromPostgres(err, "registry: ensure schema")
			}
		}
		return nil
	})
}

func encodeMeta(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "registry: encode meta")
	}
	return string(b), nil
}

func decodeMeta(b []byte) (map[string]any, error) {
	var m map[string]any
	if len(b) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "registry: decode meta")
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// row is one scanned bug_fingerprints record
type row struct {
	fp domain.Fingerprint
	e  domain.Entry
}

func scanRow(sc store.Row) (row, error) {
	var (
		x    row
		fp   string
		st   string
		meta []byte
	)
	if err := sc.Scan(&fp, &st, &x.e.SavedAt, &meta); err != nil {
		return row{}, perr.FromPostgres(err, "registry: scan")
	}
	x.fp = domain.Fingerprint(fp)
	x.e.Status = domain.Status(st)
	m, err := decodeMeta(meta)
	if err != nil {
		return row{}, err
	}
	x.e.Meta = m
	return x, nil
}

func (r *queries) Load(ctx context.Context, fp domain.Fingerprint) (domain.Entry, bool, error) {
	const sql = `
select fingerprint, status, saved_at, meta
from bug_fingerprints
where fingerprint = $1
`
	x, found, err := store.One(ctx, r.q, scanRow, sql, string(fp))
	if err != nil {
		return domain.Entry{}, false, perr.FromPostgres(err, "registry: load")
	}
	return x.e, found, nil
}

func (r *queries) Save(ctx context.Context, fp domain.Fingerprint, e domain.Entry) error {
	const sql = `
insert into bug_fingerprints (fingerprint, status, saved_at, meta)
values ($1, $2, $3, $4::jsonb)
on conflict (fingerprint) do update
set status = excluded.status, saved_at = excluded.saved_at, meta = excluded.meta
`
	meta, err := encodeMeta(e.Meta)
	if err != nil {
		return err
	}
	if _, err := store.Affected(ctx, r.q, sql, string(fp), string(e.Status), e.SavedAt, meta); err != nil {
		return perr.FromPostgres(err, "registry: save")
	}
	return nil
}

func (r *queries) Replace(ctx context.Context, fp domain.Fingerprint, e domain.Entry) (bool, error) {
	const sql = `
update bug_fingerprints
set status = $2, saved_at = $3, meta = $4::jsonb
where fingerprint = $1
`
	meta, err := encodeMeta(e.Meta)
	if err != nil {
		return false, err
	}
	n, err := store.Affected(ctx, r.q, sql, string(fp), string(e.Status), e.SavedAt, meta)
	if err != nil {
		return false, perr.FromPostgres(err, "registry: replace")
	}
	return n > 0, nil
}

// Claim is a conditional upsert: the update arm only fires for stale or expired rows
func (r *queries) Claim(ctx context.Context, fp domain.Fingerprint, e domain.Entry, staleBefore, expiredBefore int64) (bool, error) {
	const sql = `
insert into bug_fingerprints as b (fingerprint, status, saved_at, meta)
values ($1, $2, $3, $4::jsonb)
on conflict (fingerprint) do update
set status = excluded.status, saved_at = excluded.saved_at, meta = excluded.meta
where (b.status = 'pending' and b.saved_at <= $5) or b.saved_at < $6
`
	meta, err := encodeMeta(e.Meta)
	if err != nil {
		return false, err
	}
	n, err := store.Affected(ctx, r.q, sql, string(fp), string(e.Status), e.SavedAt, meta, staleBefore, expiredBefore)
	if err != nil {
		return false, perr.FromPostgres(err, "registry: claim")
	}
	return n > 0, nil
}

func (r *queries) DeletePending(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	const sql = `delete from bug_fingerprints where fingerprint = $1 and status = 'pending'`
	n, err := store.Affected(ctx, r.q, sql, string(fp))
	if err != nil {
		return false, perr.FromPostgres(err, "registry: delete pending")
	}
	return n > 0, nil
}

func (r *queries) DeleteStale(ctx context.Context, fp domain.Fingerprint, savedBefore int64) (bool, error) {
	const sql = `delete from bug_fingerprints where fingerprint = $1 and saved_at < $2`
	n, err := store.Affected(ctx, r.q, sql, string(fp), savedBefore)
	if err != nil {
		return false, perr.FromPostgres(err, "registry: delete stale")
	}
	return n > 0, nil
}

func (r *queries) Prune(ctx context.Context, savedBefore int64) (int, error) {
	const sql = `delete from bug_fingerprints where saved_at < $1`
	n, err := store.Affected(ctx, r.q, sql, savedBefore)
	if err != nil {
		return 0, perr.FromPostgres(err, "registry: prune")
	}
	return int(n), nil
}

// Range reads the full table before calling fn so fn may write through the same pool
func (r *queries) Range(ctx context.Context, fn func(domain.Fingerprint, domain.Entry) bool) error {
	const sql = `
select fingerprint, status, saved_at, meta
from bug_fingerprints
order by fingerprint asc
`
	snap, err := store.Many(ctx, r.q, scanRow, sql)
	if err != nil {
		return perr.FromPostgres(err, "registry: range")
	}
	for _, x := range snap {
		if !fn(x.fp, x.e) {
			break
		}
	}
	return nil
}
