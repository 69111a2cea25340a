package repo

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugprint/internal/platform/store/kv"
	"bugprint/internal/platform/testkit"
	"bugprint/internal/services/registry/domain"
)

// mapKV is a goroutine safe domain.KV with error injection
type mapKV struct {
	mu     sync.Mutex
	m      map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMapKV() *mapKV { return &mapKV{m: map[string][]byte{}} }

func (k *mapKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.getErr != nil {
		return nil, false, k.getErr
	}
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *mapKV) Set(_ context.Context, key string, val []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.setErr != nil {
		return k.setErr
	}
	k.sets++
	k.m[key] = append([]byte(nil), val...)
	return nil
}

func TestBlob_Contract_MapKV(t *testing.T) {
	runStoreContract(t, func(*testing.T) domain.EntryStore { return NewBlob(newMapKV()) })
}

func TestBlob_Contract_Badger(t *testing.T) {
	runStoreContract(t, func(t *testing.T) domain.EntryStore {
		db, err := kv.Open(context.Background(), kv.Config{InMemory: true}, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewBlob(db)
	})
}

func TestBlob_WireFormat(t *testing.T) {
	ctx := context.Background()
	k := newMapKV()
	s := NewBlob(k)

	require.NoError(t, s.Save(ctx, fpOf('a'), domain.Entry{
		Status:  domain.StatusConfirmed,
		SavedAt: 1700000000000,
		Meta:    map[string]any{"ticketKey": "BUG-9", "title": "Checkout failed"},
	}))

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(k.m[domain.NamespaceKey], &doc))
	assert.Equal(t, map[string]any{
		"status":    "confirmed",
		"savedAt":   float64(1700000000000),
		"ticketKey": "BUG-9",
		"title":     "Checkout failed",
	}, doc[string(fpOf('a'))])
}

func TestBlob_ReadsExistingDocument(t *testing.T) {
	ctx := context.Background()
	k := newMapKV()
	k.m[domain.NamespaceKey] = []byte(`{"` + string(fpOf('f')) + `":{"status":"pending","savedAt":12}}`)

	e, ok, err := NewBlob(k).Load(ctx, fpOf('f'))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Entry{Status: domain.StatusPending, SavedAt: 12}, e)
}

func TestBlob_NoWriteWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	k := newMapKV()
	s := NewBlob(k)

	_, err := s.DeletePending(ctx, fpOf('a'))
	require.NoError(t, err)
	_, err = s.Prune(ctx, 100)
	require.NoError(t, err)
	_, err = s.Replace(ctx, fpOf('a'), domain.Entry{})
	require.NoError(t, err)
	assert.Zero(t, k.sets)
}

func TestBlob_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")

	k := newMapKV()
	k.getErr = boom
	s := NewBlob(k)
	_, _, err := s.Load(ctx, fpOf('a'))
	assert.ErrorIs(t, err, boom)
	_, err = s.Claim(ctx, fpOf('a'), domain.Entry{}, 0, 0)
	assert.ErrorIs(t, err, boom)

	k2 := newMapKV()
	k2.setErr = boom
	assert.ErrorIs(t, NewBlob(k2).Save(ctx, fpOf('a'), domain.Entry{}), boom)
}

func TestBlob_CorruptDocument(t *testing.T) {
	k := newMapKV()
	k.m[domain.NamespaceKey] = []byte(`not json`)
	_, _, err := NewBlob(k).Load(context.Background(), fpOf('a'))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestBlob_ConcurrentClaims_OneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewBlob(newMapKV())

	const n = 32
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Claim(ctx, fpOf('z'), domain.Entry{Status: domain.StatusPending, SavedAt: 10}, 0, 0)
			if err == nil && ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func TestNewBlob_NilKVPanics(t *testing.T) {
	testkit.MustPanic(t, func() { NewBlob(nil) })
}
