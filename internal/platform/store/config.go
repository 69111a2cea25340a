package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	KV KVConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// KVConfig configures the embedded badger store
type KVConfig struct {
	Enabled    bool
	Path       string
	InMemory   bool
	SyncWrites bool
	GCInterval time.Duration
}
