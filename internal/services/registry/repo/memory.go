// Package repo provides registry storage backends
package repo

import (
	"context"
	"sync"

	"bugprint/internal/services/registry/domain"
)

// Memory is a map backed EntryStore for tests and single process use
// entries are copied on the way in and out, meta included
// it does not implement domain.Claimer so the registry drives read then write itself
type Memory struct {
	mu sync.RWMutex
	m  map[domain.Fingerprint]domain.Entry
}

var _ domain.EntryStore = (*Memory)(nil)

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{m: map[domain.Fingerprint]domain.Entry{}}
}

func (s *Memory) Load(ctx context.Context, fp domain.Fingerprint) (domain.Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Entry{}, false, err
	}
	s.mu.RLock()
	e, ok := s.m[fp]
	s.mu.RUnlock()
	return detach(e), ok, nil
}

func (s *Memory) Save(ctx context.Context, fp domain.Fingerprint, e domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.m[fp] = detach(e)
	s.mu.Unlock()
	return nil
}

func (s *Memory) Replace(ctx context.Context, fp domain.Fingerprint, e domain.Entry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[fp]; !ok {
		return false, nil
	}
	s.m[fp] = detach(e)
	return true, nil
}

func (s *Memory) DeletePending(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[fp]
	if !ok || e.Status != domain.StatusPending {
		return false, nil
	}
	delete(s.m, fp)
	return true, nil
}

func (s *Memory) DeleteStale(ctx context.Context, fp domain.Fingerprint, savedBefore int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[fp]
	if !ok || !e.Expired(savedBefore) {
		return false, nil
	}
	delete(s.m, fp)
	return true, nil
}

func (s *Memory) Prune(ctx context.Context, savedBefore int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return pruneMap(s.m, savedBefore), nil
}

func (s *Memory) Range(ctx context.Context, fn func(domain.Fingerprint, domain.Entry) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snap := make(map[domain.Fingerprint]domain.Entry, len(s.m))
	for k, v := range s.m {
		snap[k] = detach(v)
	}
	s.mu.RUnlock()
	rangeSorted(snap, fn)
	return nil
}
