package module

import (
	"net/http"
	"strings"
	"time"

	modkit "bugprint/internal/modkit"
	"bugprint/internal/modkit/httpkit"
	"bugprint/internal/platform/config"
	"bugprint/internal/platform/net/middleware"
	"bugprint/internal/platform/store"
	"bugprint/internal/services/registry/service"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Options controls registry behavior. Values may also be read from env
type Options struct {
	Backend    string
	PendingTTL time.Duration
	TTL        time.Duration

	// SweepEvery is the cleanup cadence, 0 disables the in process sweeper
	SweepEvery time.Duration

	// KVPath is the badger directory; empty runs badger in memory
	KVPath string

	// PGMigrate creates the registry table on start
	PGMigrate bool

	// Auth guards the state changing routes; nil leaves them open
	Auth middleware.AuthPort
}

// FromConfig reads options using the CORE_REGISTRY_ prefix
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_REGISTRY_")
	return Options{
		Backend:    strings.ToLower(rc.MayEnum("BACKEND", BackendMemory, BackendMemory, BackendBadger, BackendPostgres)),
		PendingTTL: rc.MayDuration("PENDING_TTL", service.DefaultPendingTTL),
		TTL:        rc.MayDuration("TTL", service.DefaultTTL),
		SweepEvery: rc.MayDuration("SWEEP_EVERY", time.Hour),
		KVPath:     rc.MayString("KV_PATH", ""),
		PGMigrate:  rc.MayBool("PG_MIGRATE", true),
	}
}

// StoreConfig enables only the platform backend o.Backend needs
// postgres settings come from SERVICE_PGSQL_ under root
func StoreConfig(root config.Conf, o Options) store.Config {
	sc := store.Config{AppName: "bugprint"}
	switch o.Backend {
	case BackendPostgres:
		pg := root.Prefix("SERVICE_PGSQL_")
		sc.PG = store.PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		}
	case BackendBadger:
		sc.KV = store.KVConfig{
			Enabled:    true,
			Path:       o.KVPath,
			InMemory:   o.KVPath == "",
			GCInterval: 10 * time.Minute,
		}
	}
	return sc
}

// Option is a configuration option for the registry module
type Option = modkit.Option

// WithPrefix sets the route prefix for the module
func WithPrefix(prefix string) Option { return modkit.WithPrefix(prefix) }

// WithMiddlewares sets the middlewares for the module
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return modkit.WithMiddlewares(mw...)
}

// WithRegister sets the register function for the module
func WithRegister(fn func(httpkit.Router)) Option { return modkit.WithRegister(fn) }
