package pg

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"bugprint/internal/platform/logger"
)

// QueryEvent is one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements through root at info, slow ones at warn
// it sits at debug level so LOG_SQL works when the process logs at warn
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (l logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := l.log.Info()
	if ev.Slow {
		e = l.log.Warn()
	}
	e.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// oneLine folds a multi line statement into single spaced text
func oneLine(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
