package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bugprint/internal/services/registry/domain"
	"bugprint/internal/services/registry/repo"
)

// mapKV is an in memory domain.KV
type mapKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapKV() *mapKV { return &mapKV{m: map[string][]byte{}} }

func (k *mapKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *mapKV) Set(_ context.Context, key string, val []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = append([]byte(nil), val...)
	return nil
}

// newExpiredStore returns a memory store holding one long expired entry
func newExpiredStore(t *testing.T) *repo.Memory {
	t.Helper()
	s := repo.NewMemory()
	e := domain.Entry{Status: domain.StatusConfirmed, SavedAt: 1}
	require.NoError(t, s.Save(context.Background(), domain.Fingerprint(strings.Repeat("e", 64)), e))
	return s
}
