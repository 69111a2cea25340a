package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugprint/internal/services/registry/domain"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupExpired(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestSweeper_RunsUntilCanceled(t *testing.T) {
	c := &countingCleaner{}
	s := NewSweeper(c, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return c.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_KeepsGoingOnError(t *testing.T) {
	c := &countingCleaner{err: errors.New("kv down")}
	s := NewSweeper(c, 2*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestSweeper_DisabledBlocksUntilDone(t *testing.T) {
	c := &countingCleaner{}
	s := NewSweeper(c, 0, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Run(ctx))
	assert.Zero(t, c.calls.Load())
}

func TestSweeper_DrivesRegistry(t *testing.T) {
	store := newExpiredStore(t)
	r := newTestRegistry(store, newClock())
	s := NewSweeper(r, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()
	defer cancel()

	require.Eventually(t, func() bool {
		n := 0
		_ = store.Range(context.Background(), func(domain.Fingerprint, domain.Entry) bool { n++; return true })
		return n == 0
	}, time.Second, time.Millisecond)
}
