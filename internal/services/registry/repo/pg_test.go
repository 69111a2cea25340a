package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "bugprint/internal/platform/errors"
	"bugprint/internal/platform/store"
	"bugprint/internal/services/registry/domain"
)

type affected int64

func (a affected) String() string      { return "UPDATE" }
func (a affected) RowsAffected() int64 { return int64(a) }

// tableRows serves bug_fingerprints rows as (fingerprint, status, saved_at, meta)
type tableRows struct {
	data [][4]any
	i    int
}

func (r *tableRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *tableRows) Scan(dest ...any) error {
	x := r.data[r.i-1]
	*dest[0].(*string) = x[0].(string)
	*dest[1].(*string) = x[1].(string)
	*dest[2].(*int64) = x[2].(int64)
	*dest[3].(*[]byte) = []byte(x[3].(string))
	return nil
}

func (r *tableRows) Err() error        { return nil }
func (r *tableRows) Close()            {}
func (r *tableRows) Columns() []string { return []string{"fingerprint", "status", "saved_at", "meta"} }

// scriptedDB records statements and answers from canned results
type scriptedDB struct {
	stmts   []string
	args    [][]any
	n       int64
	rows    [][4]any
	execErr error
	inTx    bool
}

func (d *scriptedDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	d.stmts = append(d.stmts, strings.TrimSpace(sql))
	d.args = append(d.args, args)
	if d.execErr != nil {
		return nil, d.execErr
	}
	return affected(d.n), nil
}

func (d *scriptedDB) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	d.stmts = append(d.stmts, strings.TrimSpace(sql))
	d.args = append(d.args, args)
	return &tableRows{data: d.rows}, nil
}

func (d *scriptedDB) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (d *scriptedDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	d.inTx = true
	defer func() { d.inTx = false }()
	return fn(d)
}

func TestPG_LoadDecodesRow(t *testing.T) {
	db := &scriptedDB{rows: [][4]any{{string(fpOf('a')), "confirmed", int64(42), `{"ticketKey":"BUG-1"}`}}}
	s := NewPG().Bind(db)

	e, found, err := s.Load(context.Background(), fpOf('a'))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.Entry{Status: domain.StatusConfirmed, SavedAt: 42, Meta: map[string]any{"ticketKey": "BUG-1"}}, e)
	assert.Equal(t, []any{string(fpOf('a'))}, db.args[0])

	db.rows = nil
	_, found, err = s.Load(context.Background(), fpOf('a'))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPG_LoadEmptyMetaIsNil(t *testing.T) {
	db := &scriptedDB{rows: [][4]any{{string(fpOf('a')), "pending", int64(1), `{}`}}}
	e, _, err := NewPG().Bind(db).Load(context.Background(), fpOf('a'))
	require.NoError(t, err)
	assert.Nil(t, e.Meta)
}

func TestPG_ClaimPassesCutoffs(t *testing.T) {
	db := &scriptedDB{n: 1}
	s := NewPG().Bind(db)

	ok, err := s.Claim(context.Background(), fpOf('a'), domain.Entry{Status: domain.StatusPending, SavedAt: 500}, 200, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{string(fpOf('a')), "pending", int64(500), "{}", int64(200), int64(100)}, db.args[0])

	db.n = 0
	ok, err = s.Claim(context.Background(), fpOf('a'), domain.Entry{Status: domain.StatusPending, SavedAt: 500}, 200, 100)
	require.NoError(t, err)
	assert.False(t, ok, "no row touched means the conflict arm refused")
}

func TestPG_RangeSnapshotsBeforeCallback(t *testing.T) {
	db := &scriptedDB{rows: [][4]any{
		{string(fpOf('a')), "pending", int64(1), `{}`},
		{string(fpOf('b')), "confirmed", int64(2), `{"ticketKey":"BUG-2"}`},
	}}
	s := NewPG().Bind(db)

	var seen []domain.Fingerprint
	err := s.Range(context.Background(), func(fp domain.Fingerprint, _ domain.Entry) bool {
		// writing mid walk must not disturb the result set
		_, err := s.DeletePending(context.Background(), fp)
		require.NoError(t, err)
		seen = append(seen, fp)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Fingerprint{fpOf('a'), fpOf('b')}, seen)
}

func TestPG_ErrorsAreCoded(t *testing.T) {
	db := &scriptedDB{execErr: &pgconn.PgError{Code: "40P01"}}
	_, err := NewPG().Bind(db).Prune(context.Background(), 10)
	require.Error(t, err)
	_, coded := perr.As(err)
	assert.True(t, coded)

	db.execErr = errors.New("conn reset")
	_, err = NewPG().Bind(db).DeletePending(context.Background(), fpOf('a'))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDB))
}

func TestEnsureSchema_LocksFirst(t *testing.T) {
	db := &scriptedDB{}
	require.NoError(t, EnsureSchema(context.Background(), db))

	require.Len(t, db.stmts, len(Schema)+1)
	assert.Equal(t, "select pg_advisory_xact_lock($1)", db.stmts[0])
	assert.Equal(t, []any{schemaLockKey}, db.args[0])
	for i, stmt := range Schema {
		assert.Equal(t, strings.TrimSpace(stmt), db.stmts[i+1])
	}
}

func TestEnsureSchema_LockFailureStops(t *testing.T) {
	db := &scriptedDB{execErr: errors.New("lock timeout")}
	err := EnsureSchema(context.Background(), db)
	require.Error(t, err)
	assert.Len(t, db.stmts, 1)
}
