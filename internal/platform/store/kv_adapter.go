package store

import (
	"context"
	"errors"

	"bugprint/internal/platform/store/kv"
)

// newKVAdapter is called by openers.go to wrap an opened *kv.DB
func newKVAdapter(d *kv.DB) KV {
	return &kvAdapter{inner: d}
}

// kvAdapter adapts *kv.DB to the store.KV seam and adds Ping
type kvAdapter struct {
	inner *kv.DB
}

var _ KV = (*kvAdapter)(nil)

func (a *kvAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return a.inner.Get(ctx, key)
}

func (a *kvAdapter) Set(ctx context.Context, key string, val []byte) error {
	return a.inner.Set(ctx, key, val)
}

func (a *kvAdapter) Close() error { return a.inner.Close() }

// Ping reports an error once the underlying db is closed
func (a *kvAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil kv adapter")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.inner.Closed() {
		return errors.New("store: kv closed")
	}
	return nil
}
