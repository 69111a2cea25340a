package repo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugprint/internal/services/registry/domain"
)

func fpOf(c byte) domain.Fingerprint { return domain.Fingerprint(strings.Repeat(string(c), 64)) }

// runStoreContract exercises the EntryStore semantics every backend shares
func runStoreContract(t *testing.T, newStore func(t *testing.T) domain.EntryStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.Load(ctx, fpOf('a'))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save then load", func(t *testing.T) {
		s := newStore(t)
		e := domain.Entry{Status: domain.StatusConfirmed, SavedAt: 42, Meta: map[string]any{"ticketKey": "BUG-1"}}
		require.NoError(t, s.Save(ctx, fpOf('a'), e))
		got, ok, err := s.Load(ctx, fpOf('a'))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, e, got)
	})

	t.Run("meta is not shared with callers", func(t *testing.T) {
		s := newStore(t)
		meta := map[string]any{"ticketKey": "BUG-1"}
		require.NoError(t, s.Save(ctx, fpOf('a'), domain.Entry{Status: domain.StatusConfirmed, SavedAt: 42, Meta: meta}))
		meta["ticketKey"] = "changed after save"

		got, _, err := s.Load(ctx, fpOf('a'))
		require.NoError(t, err)
		got.Meta["ticketKey"] = "changed after load"

		err = s.Range(ctx, func(_ domain.Fingerprint, e domain.Entry) bool {
			e.Meta["ticketKey"] = "changed in range"
			return true
		})
		require.NoError(t, err)

		again, _, err := s.Load(ctx, fpOf('a'))
		require.NoError(t, err)
		assert.Equal(t, "BUG-1", again.Meta["ticketKey"])
	})

	t.Run("replace only when present", func(t *testing.T) {
		s := newStore(t)
		e := domain.Entry{Status: domain.StatusConfirmed, SavedAt: 7}
		ok, err := s.Replace(ctx, fpOf('b'), e)
		require.NoError(t, err)
		assert.False(t, ok)
		_, found, err := s.Load(ctx, fpOf('b'))
		require.NoError(t, err)
		assert.False(t, found, "replace must not create entries")

		require.NoError(t, s.Save(ctx, fpOf('b'), domain.Entry{Status: domain.StatusPending, SavedAt: 1}))
		ok, err = s.Replace(ctx, fpOf('b'), e)
		require.NoError(t, err)
		assert.True(t, ok)
		got, _, err := s.Load(ctx, fpOf('b'))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
		assert.Equal(t, int64(7), got.SavedAt)
	})

	t.Run("delete pending leaves confirmed", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, fpOf('c'), domain.Entry{Status: domain.StatusConfirmed, SavedAt: 1}))
		require.NoError(t, s.Save(ctx, fpOf('d'), domain.Entry{Status: domain.StatusPending, SavedAt: 1}))

		ok, err := s.DeletePending(ctx, fpOf('c'))
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.DeletePending(ctx, fpOf('d'))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.DeletePending(ctx, fpOf('e'))
		require.NoError(t, err)
		assert.False(t, ok)

		_, found, _ := s.Load(ctx, fpOf('c'))
		assert.True(t, found)
		_, found, _ = s.Load(ctx, fpOf('d'))
		assert.False(t, found)
	})

	t.Run("delete stale honours cutoff", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, fpOf('a'), domain.Entry{Status: domain.StatusConfirmed, SavedAt: 100}))
		ok, err := s.DeleteStale(ctx, fpOf('a'), 100)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.DeleteStale(ctx, fpOf('a'), 101)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("prune and range", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, fpOf('a'), domain.Entry{Status: domain.StatusConfirmed, SavedAt: 1}))
		require.NoError(t, s.Save(ctx, fpOf('b'), domain.Entry{Status: domain.StatusPending, SavedAt: 2}))
		require.NoError(t, s.Save(ctx, fpOf('c'), domain.Entry{Status: domain.StatusConfirmed, SavedAt: 50}))

		n, err := s.Prune(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		var seen []domain.Fingerprint
		require.NoError(t, s.Range(ctx, func(fp domain.Fingerprint, _ domain.Entry) bool {
			seen = append(seen, fp)
			return true
		}))
		assert.Equal(t, []domain.Fingerprint{fpOf('c')}, seen)

		n, err = s.Prune(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("range stops early", func(t *testing.T) {
		s := newStore(t)
		for _, c := range []byte("abc") {
			require.NoError(t, s.Save(ctx, fpOf(c), domain.Entry{Status: domain.StatusPending, SavedAt: 1}))
		}
		calls := 0
		require.NoError(t, s.Range(ctx, func(domain.Fingerprint, domain.Entry) bool {
			calls++
			return false
		}))
		assert.Equal(t, 1, calls)
	})

	claimer := func(t *testing.T) (domain.EntryStore, domain.Claimer) {
		s := newStore(t)
		c, ok := s.(domain.Claimer)
		if !ok {
			t.Skip("store does not claim atomically")
		}
		return s, c
	}

	t.Run("claim", func(t *testing.T) {
		s, c := claimer(t)
		pending := domain.Entry{Status: domain.StatusPending, SavedAt: 1000}

		ok, err := c.Claim(ctx, fpOf('a'), pending, 500, 10)
		require.NoError(t, err)
		assert.True(t, ok, "absent is claimable")

		ok, err = c.Claim(ctx, fpOf('a'), pending, 500, 10)
		require.NoError(t, err)
		assert.False(t, ok, "fresh pending is held")

		ok, err = c.Claim(ctx, fpOf('a'), domain.Entry{Status: domain.StatusPending, SavedAt: 2000}, 1000, 10)
		require.NoError(t, err)
		assert.True(t, ok, "stale pending is reclaimable")

		require.NoError(t, s.Save(ctx, fpOf('b'), domain.Entry{Status: domain.StatusConfirmed, SavedAt: 100}))
		ok, err = c.Claim(ctx, fpOf('b'), pending, 5000, 50)
		require.NoError(t, err)
		assert.False(t, ok, "confirmed inside ttl is sticky")

		ok, err = c.Claim(ctx, fpOf('b'), pending, 5000, 101)
		require.NoError(t, err)
		assert.True(t, ok, "expired confirmed is claimable")
		got, _, err := s.Load(ctx, fpOf('b'))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
	})
}
