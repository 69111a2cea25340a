// Package service contains the reservation registry workflows
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	perr "bugprint/internal/platform/errors"
	"bugprint/internal/platform/logger"
	"bugprint/internal/services/registry/domain"
)

// Default claim windows
const (
	DefaultPendingTTL = 5 * time.Minute
	DefaultTTL        = 7 * 24 * time.Hour
)

// ErrDuplicate is returned by WithReservation when the claim is not granted
var ErrDuplicate = perr.New(perr.ErrorCodeConflict, "registry: fingerprint already reserved")

// Registry grants at most one caller the right to act on a fingerprint
// held is the in process lock set keyed to the acquire time; it is owned by the Registry, never shared
// a held fingerprint older than pendingTTL is abandoned, the same as a stale pending entry
type Registry struct {
	store domain.EntryStore
	claim domain.Claimer

	pendingTTL time.Duration
	ttl        time.Duration
	now        func() time.Time
	owner      string

	log     logger.Logger
	metrics *Metrics

	mu   sync.Mutex
	held map[domain.Fingerprint]time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithPendingTTL sets how long a pending claim blocks others
func WithPendingTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.pendingTTL = d
		}
	}
}

// WithTTL sets how long any entry lives
func WithTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithClock swaps the time source
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOwner sets the instance id the registry logs under
func WithOwner(id string) Option {
	return func(r *Registry) {
		if id != "" {
			r.owner = id
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithMetrics attaches collectors
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry builds a Registry over store
// stores that implement domain.Claimer reserve in one atomic call
func NewRegistry(store domain.EntryStore, opts ...Option) *Registry {
	if store == nil {
		panic("registry.Registry requires a non nil EntryStore")
	}
	r := &Registry{
		store:      store,
		pendingTTL: DefaultPendingTTL,
		ttl:        DefaultTTL,
		now:        time.Now,
		owner:      uuid.NewString(),
		log:        *logger.Named("registry"),
		held:       map[domain.Fingerprint]time.Time{},
	}
	for _, o := range opts {
		o(r)
	}
	if c, ok := store.(domain.Claimer); ok {
		r.claim = c
	}
	return r
}

// Owner returns the instance id
func (r *Registry) Owner() string { return r.owner }

// PendingTTL returns the pending claim window
func (r *Registry) PendingTTL() time.Duration { return r.pendingTTL }

// TTL returns the entry lifetime
func (r *Registry) TTL() time.Duration { return r.ttl }

// Holds reports whether fp is in the lock set and not yet abandoned
func (r *Registry) Holds(fp domain.Fingerprint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.held[fp]
	return ok && r.live(at, r.now())
}

// Held returns the lock set size
func (r *Registry) Held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.held)
}

// live mirrors the stale pending cutoff: a lock taken pendingTTL ago or earlier is reclaimable
func (r *Registry) live(at, now time.Time) bool {
	return now.Sub(at) < r.pendingTTL
}

func (r *Registry) acquire(fp domain.Fingerprint, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if at, ok := r.held[fp]; ok && r.live(at, now) {
		return false
	}
	r.held[fp] = now
	r.metrics.setHeld(len(r.held))
	return true
}

// reapHeld drops abandoned locks and returns how many went
func (r *Registry) reapHeld(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for fp, at := range r.held {
		if !r.live(at, now) {
			delete(r.held, fp)
			n++
		}
	}
	if n > 0 {
		r.metrics.setHeld(len(r.held))
	}
	return n
}

func (r *Registry) drop(fp domain.Fingerprint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, fp)
	r.metrics.setHeld(len(r.held))
}

// cutoffs returns the epoch ms bounds for now
// pending entries saved at or before staleBefore are abandoned
// entries saved before expiredBefore are gone
func (r *Registry) cutoffs(now time.Time) (staleBefore, expiredBefore int64) {
	return now.Add(-r.pendingTTL).UnixMilli(), now.Add(-r.ttl).UnixMilli()
}

func checkFingerprint(fp domain.Fingerprint) error {
	if !fp.Valid() {
		return perr.WithField(perr.New(perr.ErrorCodeValidation, "registry: fingerprint must be 64 lowercase hex chars"), "fingerprint")
	}
	return nil
}

// storeErr keeps coded errors and marks everything else as a transient store failure
// contention the store reports as retryable is recoded to unavailable so clients retry
func storeErr(err error, op string) error {
	if perr.IsRetryable(err) {
		return perr.WithOp(perr.Wrap(err, perr.ErrorCodeUnavailable, "registry: "+op+" contended"), op)
	}
	if _, ok := perr.As(err); ok {
		return perr.WithOp(err, op)
	}
	return perr.WithOp(perr.Wrap(err, perr.ErrorCodeUnavailable, "registry: "+op), op)
}

// CheckLocalDuplicate returns the live entry for fp
// an expired entry is deleted on the way out and reported as absent
func (r *Registry) CheckLocalDuplicate(ctx context.Context, fp domain.Fingerprint) (domain.Entry, bool, error) {
	if err := checkFingerprint(fp); err != nil {
		return domain.Entry{}, false, err
	}
	done := r.metrics.observe("load")
	e, found, err := r.store.Load(ctx, fp)
	done()
	if err != nil {
		return domain.Entry{}, false, storeErr(err, "check")
	}
	if !found {
		return domain.Entry{}, false, nil
	}
	_, expiredBefore := r.cutoffs(r.now())
	if !e.Expired(expiredBefore) {
		return e, true, nil
	}
	// a concurrent writer may have refreshed the entry, the store rechecks the cutoff
	if _, err := r.store.DeleteStale(ctx, fp, expiredBefore); err != nil {
		r.log.Warn().Err(err).Str("fingerprint", fp.String()).Msg("lazy expiry delete failed")
	}
	return domain.Entry{}, false, nil
}

// Reserve claims fp for this caller
// false with a nil error is the duplicate signal: held locally, confirmed, or pending and fresh
// on true the lock set keeps fp until Confirm, Release or the pending window runs out
func (r *Registry) Reserve(ctx context.Context, fp domain.Fingerprint) (ok bool, err error) {
	if err := checkFingerprint(fp); err != nil {
		return false, err
	}
	now := r.now()
	if !r.acquire(fp, now) {
		r.metrics.reserve(resultHeld)
		return false, nil
	}
	defer func() {
		if !ok {
			r.drop(fp)
		}
	}()

	staleBefore, expiredBefore := r.cutoffs(now)
	// pending entries carry no meta so the stored document stays {status, savedAt}
	pending := domain.Entry{Status: domain.StatusPending, SavedAt: now.UnixMilli()}

	if r.claim != nil {
		done := r.metrics.observe("claim")
		ok, err = r.claim.Claim(ctx, fp, pending, staleBefore, expiredBefore)
		done()
		if err != nil {
			r.metrics.reserve(resultError)
			return false, storeErr(err, "reserve")
		}
	} else {
		ok, err = r.loadThenSave(ctx, fp, pending, staleBefore, expiredBefore)
		if err != nil {
			r.metrics.reserve(resultError)
			return false, storeErr(err, "reserve")
		}
	}

	if !ok {
		r.metrics.reserve(resultDuplicate)
		return false, nil
	}
	r.metrics.reserve(resultGranted)
	r.log.Debug().Str("fingerprint", fp.String()).Msg("reserved")
	return true, nil
}

// loadThenSave is the non atomic reserve path; the lock set orders callers in this process only
func (r *Registry) loadThenSave(ctx context.Context, fp domain.Fingerprint, e domain.Entry, staleBefore, expiredBefore int64) (bool, error) {
	done := r.metrics.observe("load")
	cur, found, err := r.store.Load(ctx, fp)
	done()
	if err != nil {
		return false, err
	}
	if found && !cur.Claimable(staleBefore, expiredBefore) {
		return false, nil
	}
	done = r.metrics.observe("save")
	err = r.store.Save(ctx, fp, e)
	done()
	if err != nil {
		return false, err
	}
	return true, nil
}

// Confirm turns an existing reservation into a durable record carrying meta
// the lock is dropped first; without an entry this is a no op
func (r *Registry) Confirm(ctx context.Context, fp domain.Fingerprint, meta map[string]any) error {
	r.drop(fp)
	if err := checkFingerprint(fp); err != nil {
		return err
	}

	e := domain.Entry{Status: domain.StatusConfirmed, SavedAt: r.now().UnixMilli()}
	if len(meta) > 0 {
		e.Meta = make(map[string]any, len(meta))
		for k, v := range meta {
			if k == "status" || k == "savedAt" {
				continue
			}
			e.Meta[k] = v
		}
	}

	done := r.metrics.observe("replace")
	replaced, err := r.store.Replace(ctx, fp, e)
	done()
	if err != nil {
		r.metrics.confirm(resultError)
		return storeErr(err, "confirm")
	}
	if !replaced {
		r.metrics.confirm(resultNoop)
		r.log.Debug().Str("fingerprint", fp.String()).Msg("confirm without entry ignored")
		return nil
	}
	r.metrics.confirm(resultOK)
	return nil
}

// Release gives up a reservation
// only pending entries are deleted so a late release never erases a confirmed record
func (r *Registry) Release(ctx context.Context, fp domain.Fingerprint) error {
	r.drop(fp)
	if err := checkFingerprint(fp); err != nil {
		return err
	}
	done := r.metrics.observe("delete_pending")
	deleted, err := r.store.DeletePending(ctx, fp)
	done()
	if err != nil {
		r.metrics.release(resultError)
		return storeErr(err, "release")
	}
	if deleted {
		r.metrics.release(resultOK)
	} else {
		r.metrics.release(resultNoop)
	}
	return nil
}

// CleanupExpired removes every entry older than the registry TTL and returns the count
// abandoned locks are dropped from the lock set on the same pass
func (r *Registry) CleanupExpired(ctx context.Context) (int, error) {
	now := r.now()
	if n := r.reapHeld(now); n > 0 {
		r.log.Debug().Int("locks", n).Msg("abandoned locks dropped")
	}
	_, expiredBefore := r.cutoffs(now)
	done := r.metrics.observe("prune")
	n, err := r.store.Prune(ctx, expiredBefore)
	done()
	if err != nil {
		return 0, storeErr(err, "cleanup")
	}
	r.metrics.sweep(n)
	return n, nil
}

// WithReservation reserves fp, runs fn and settles the claim
// fn returning metadata confirms; an error or panic releases
// a refused claim returns ErrDuplicate without calling fn
func (r *Registry) WithReservation(ctx context.Context, fp domain.Fingerprint, fn func(context.Context) (map[string]any, error)) error {
	ok, err := r.Reserve(ctx, fp)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicate
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		// ctx may already be canceled, the release must still reach the store
		if err := r.Release(context.WithoutCancel(ctx), fp); err != nil {
			r.log.Error().Err(err).Str("fingerprint", fp.String()).Msg("release after failed work")
		}
	}()

	meta, err := fn(ctx)
	if err != nil {
		return err
	}
	settled = true
	return r.Confirm(context.WithoutCancel(ctx), fp, meta)
}

// Range walks the stored entries
func (r *Registry) Range(ctx context.Context, fn func(domain.Fingerprint, domain.Entry) bool) error {
	if err := r.store.Range(ctx, fn); err != nil {
		return storeErr(err, "range")
	}
	return nil
}
