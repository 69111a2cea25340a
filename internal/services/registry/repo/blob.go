package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"bugprint/internal/services/registry/domain"
)

// Blob keeps the whole registry map as one JSON document under domain.NamespaceKey
// every mutation is a read modify write of that document, serialized by mu
type Blob struct {
	kv  domain.KV
	key string
	mu  sync.Mutex
}

var (
	_ domain.EntryStore = (*Blob)(nil)
	_ domain.Claimer    = (*Blob)(nil)
)

// NewBlob binds a Blob store to kv
func NewBlob(kv domain.KV) *Blob {
	if kv == nil {
		panic("repo.NewBlob requires a non nil KV")
	}
	return &Blob{kv: kv, key: domain.NamespaceKey}
}

type entryMap = map[domain.Fingerprint]domain.Entry

func (b *Blob) read(ctx context.Context) (entryMap, error) {
	raw, found, err := b.kv.Get(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", b.key, err)
	}
	m := entryMap{}
	if !found || len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("blob: decode %s: %w", b.key, err)
	}
	return m, nil
}

func (b *Blob) write(ctx context.Context, m entryMap) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("blob: encode %s: %w", b.key, err)
	}
	if err := b.kv.Set(ctx, b.key, raw); err != nil {
		return fmt.Errorf("blob: set %s: %w", b.key, err)
	}
	return nil
}

// mutate runs fn on the current map and writes it back when fn reports a change
func (b *Blob) mutate(ctx context.Context, fn func(entryMap) bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.read(ctx)
	if err != nil {
		return err
	}
	if !fn(m) {
		return nil
	}
	return b.write(ctx, m)
}

func (b *Blob) Load(ctx context.Context, fp domain.Fingerprint) (domain.Entry, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.read(ctx)
	if err != nil {
		return domain.Entry{}, false, err
	}
	e, ok := m[fp]
	return e, ok, nil
}

func (b *Blob) Save(ctx context.Context, fp domain.Fingerprint, e domain.Entry) error {
	return b.mutate(ctx, func(m entryMap) bool {
		m[fp] = e
		return true
	})
}

func (b *Blob) Replace(ctx context.Context, fp domain.Fingerprint, e domain.Entry) (bool, error) {
	var ok bool
	err := b.mutate(ctx, func(m entryMap) bool {
		if _, ok = m[fp]; ok {
			m[fp] = e
		}
		return ok
	})
	return ok, err
}

func (b *Blob) Claim(ctx context.Context, fp domain.Fingerprint, e domain.Entry, staleBefore, expiredBefore int64) (bool, error) {
	var ok bool
	err := b.mutate(ctx, func(m entryMap) bool {
		cur, exists := m[fp]
		ok = !exists || cur.Claimable(staleBefore, expiredBefore)
		if ok {
			m[fp] = e
		}
		return ok
	})
	return ok, err
}

func (b *Blob) DeletePending(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	var ok bool
	err := b.mutate(ctx, func(m entryMap) bool {
		e, exists := m[fp]
		if ok = exists && e.Status == domain.StatusPending; ok {
			delete(m, fp)
		}
		return ok
	})
	return ok, err
}

func (b *Blob) DeleteStale(ctx context.Context, fp domain.Fingerprint, savedBefore int64) (bool, error) {
	var ok bool
	err := b.mutate(ctx, func(m entryMap) bool {
		e, exists := m[fp]
		if ok = exists && e.Expired(savedBefore); ok {
			delete(m, fp)
		}
		return ok
	})
	return ok, err
}

func (b *Blob) Prune(ctx context.Context, savedBefore int64) (int, error) {
	var n int
	err := b.mutate(ctx, func(m entryMap) bool {
		n = pruneMap(m, savedBefore)
		return n > 0
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Blob) Range(ctx context.Context, fn func(domain.Fingerprint, domain.Entry) bool) error {
	b.mu.Lock()
	m, err := b.read(ctx)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	rangeSorted(m, fn)
	return nil
}
