package service

import (
	"context"
	"time"

	"bugprint/internal/platform/logger"
)

// Cleaner is the part of the registry a sweeper drives
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// Sweeper runs CleanupExpired on a fixed cadence
type Sweeper struct {
	c     Cleaner
	every time.Duration
	log   logger.Logger
}

// NewSweeper returns a sweeper; every <= 0 disables Run
func NewSweeper(c Cleaner, every time.Duration, log logger.Logger) *Sweeper {
	if c == nil {
		panic("registry.Sweeper requires a non nil Cleaner")
	}
	return &Sweeper{c: c, every: every, log: log}
}

// Run sweeps once at start, then on every tick until ctx is done
// store errors are logged and the loop keeps going
func (s *Sweeper) Run(ctx context.Context) error {
	if s.every <= 0 {
		<-ctx.Done()
		return nil
	}
	s.once(ctx)

	t := time.NewTicker(s.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.once(ctx)
		}
	}
}

func (s *Sweeper) once(ctx context.Context) {
	n, err := s.c.CleanupExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("registry sweep failed")
		}
		return
	}
	if n > 0 {
		s.log.Info().Int("removed", n).Msg("registry sweep")
	}
}
