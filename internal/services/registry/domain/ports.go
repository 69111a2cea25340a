package domain

import "context"

// EntryStore persists entries keyed by fingerprint
// every method is atomic with respect to other calls on the same store
type EntryStore interface {
	Load(ctx context.Context, fp Fingerprint) (Entry, bool, error)
	// Save inserts or overwrites
	Save(ctx context.Context, fp Fingerprint, e Entry) error
	// Replace overwrites only when an entry exists
	Replace(ctx context.Context, fp Fingerprint, e Entry) (bool, error)
	// DeletePending removes the entry only while it is pending
	DeletePending(ctx context.Context, fp Fingerprint) (bool, error)
	// DeleteStale removes the entry only if it was saved before savedBefore (epoch ms)
	DeleteStale(ctx context.Context, fp Fingerprint, savedBefore int64) (bool, error)
	// Prune removes every entry saved before savedBefore and returns the count
	Prune(ctx context.Context, savedBefore int64) (int, error)
	// Range visits a snapshot; fn returning false stops the walk
	Range(ctx context.Context, fn func(Fingerprint, Entry) bool) error
}

// Claimer is implemented by stores that can reserve in one atomic step
// Claim writes e when the key is absent, pending with savedAt <= staleBefore,
// or any status with savedAt < expiredBefore, and reports whether it wrote
type Claimer interface {
	Claim(ctx context.Context, fp Fingerprint, e Entry, staleBefore, expiredBefore int64) (bool, error)
}

// KV is the durable async key value store the blob backend sits on
type KV interface {
	Get(ctx context.Context, key string) (val []byte, found bool, err error)
	Set(ctx context.Context, key string, val []byte) error
}

// ServicePort is consumed by handlers, the cli and other modules
type ServicePort interface {
	Fingerprint(r BugReport) FingerprintResult
	CheckLocalDuplicate(ctx context.Context, fp Fingerprint) (Entry, bool, error)
	Reserve(ctx context.Context, fp Fingerprint) (bool, error)
	Confirm(ctx context.Context, fp Fingerprint, meta map[string]any) error
	Release(ctx context.Context, fp Fingerprint) error
	CleanupExpired(ctx context.Context) (int, error)
}
