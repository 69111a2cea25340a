package modkit

import (
	"context"
	"testing"

	"bugprint/internal/platform/config"
	"bugprint/internal/platform/store"
)

func TestFromStore(t *testing.T) {
	d := FromStore(config.New(), nil)
	if d.PG != nil || d.KV != nil {
		t.Fatalf("nil store should leave seams nil")
	}

	st, err := store.Open(context.Background(), store.Config{KV: store.KVConfig{Enabled: true, InMemory: true}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	d = FromStore(config.New().Prefix("CORE_API_"), st)
	if d.KV == nil {
		t.Fatalf("expected kv seam")
	}
	if d.PG != nil {
		t.Fatalf("pg was not enabled")
	}
}
