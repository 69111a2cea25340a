package store

import "bugprint/internal/platform/logger"

// Option adjusts the Store before any backend opens
type Option func(*Store) error

// WithLogger routes backend logs, including sql traces, to log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
