// Package logger holds the process wide zerolog logger and its request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"bugprint/internal/platform/config/raw"
	pnet "bugprint/internal/platform/net"
)

// Options configures the root logger
type Options struct {
	Level       string
	Format      string
	Service     string
	Writer      io.Writer
	WithCaller  bool
	SampleEvery int
}

// FromEnv reads LOG_* through the raw config view, which never logs
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       rc.Get("LEVEL", "debug"),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", "bugprint"),
		WithCaller:  rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// Logger is the project wide logging type
type Logger = zerolog.Logger

// Get returns the root logger, building it from the environment on first use
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Init builds the root logger; only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			ctx = ctx.Str("go_version", bi.GoVersion)
		}
		if opt.Service != "" {
			ctx = ctx.Str("service", opt.Service)
		}

		log := ctx.Logger()
		if opt.WithCaller {
			log = log.With().Caller().Logger()
		}
		if opt.SampleEvery > 1 {
			log = log.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}

		root.Store(&log)
		inited.Store(true)
	})
}

// parseLevel falls back to debug for anything zerolog does not know
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

// C returns a child logger carrying the request and user ids found on ctx
// a logger stored with zerolog's WithContext is used in place of the root
func C(ctx context.Context) *Logger {
	base := Get()
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = l
	}
	b := base.With()
	if id := pnet.RequestID(ctx); id != "" {
		b = b.Str("request_id", id)
	}
	if uid := pnet.UserID(ctx); uid != "" {
		b = b.Str("user_id", uid)
	}
	ll := b.Logger()
	return &ll
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}
