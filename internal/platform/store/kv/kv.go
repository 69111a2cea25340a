// Package kv provides an embedded key value store on badger
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Config configures the badger instance
type Config struct {
	// Path is the data directory, ignored when InMemory is set
	Path     string
	InMemory bool

	SyncWrites bool

	// GCInterval of zero disables value log gc
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DB is a string keyed byte store
type DB struct {
	db    *badger.DB
	log   zerolog.Logger
	ratio float64

	stop chan struct{}
	done chan struct{}
}

// seam for tests
var openBadger = badger.Open

// Open opens badger and starts value log gc when configured
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("kv: path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("kv: create dir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})

	bdb, err := openBadger(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: open badger: %w", err)
	}

	d := &DB{db: bdb, log: log, ratio: cfg.GCDiscardRatio}
	if d.ratio <= 0 || d.ratio >= 1 {
		d.ratio = 0.5
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		d.stop = make(chan struct{})
		d.done = make(chan struct{})
		go d.gcLoop(cfg.GCInterval)
	}
	return d, nil
}

// Get returns the value under key; found is false when the key is absent
func (d *DB) Get(ctx context.Context, key string) (val []byte, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	err = d.db.View(func(txn *badger.Txn) error {
		item, gerr := txn.Get([]byte(key))
		if gerr != nil {
			return gerr
		}
		val, gerr = item.ValueCopy(nil)
		return gerr
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set writes val under key
func (d *DB) Set(ctx context.Context, key string, val []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

// Closed reports whether Close was called
func (d *DB) Closed() bool { return d == nil || d.db == nil || d.db.IsClosed() }

// Close stops gc and closes badger
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	if d.stop != nil {
		close(d.stop)
		<-d.done
		d.stop = nil
	}
	return d.db.Close()
}

func (d *DB) gcLoop(every time.Duration) {
	defer close(d.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
			// one call rewrites at most one file, loop until nothing is left
			for {
				err := d.db.RunValueLogGC(d.ratio)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						d.log.Warn().Err(err).Msg("kv: value log gc failed")
					}
					break
				}
			}
		}
	}
}

// badgerLogger routes badger's internal logging through zerolog
type badgerLogger struct{ log zerolog.Logger }

func (l badgerLogger) Errorf(format string, args ...any)   { l.log.Error().Msgf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.log.Warn().Msgf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.log.Debug().Msgf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.log.Trace().Msgf(format, args...) }
