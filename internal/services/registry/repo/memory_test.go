package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"bugprint/internal/services/registry/domain"
)

func TestMemory_Contract(t *testing.T) {
	runStoreContract(t, func(*testing.T) domain.EntryStore { return NewMemory() })
}

func TestMemory_IsNotClaimer(t *testing.T) {
	var s domain.EntryStore = NewMemory()
	_, ok := s.(domain.Claimer)
	assert.False(t, ok)
}

func TestMemory_CanceledContext(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Load(ctx, fpOf('a'))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, fpOf('a'), domain.Entry{}), context.Canceled)
	_, err = s.Prune(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemory_RangeMayWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_ = s.Save(ctx, fpOf('a'), domain.Entry{Status: domain.StatusPending, SavedAt: 1})

	// fn runs outside the lock
	err := s.Range(ctx, func(fp domain.Fingerprint, _ domain.Entry) bool {
		_, _ = s.DeletePending(ctx, fp)
		return true
	})
	assert.NoError(t, err)
	_, found, _ := s.Load(ctx, fpOf('a'))
	assert.False(t, found)
}
