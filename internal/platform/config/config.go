// Package config reads application settings from environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bugprint/internal/platform/logger"
)

// Conf is a namespaced view over environment variables (e.g., "CORE_API_", "SERVICE_PGSQL_")
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(key string) string { return strings.TrimSpace(os.Getenv(c.key(key))) }

// MustString panics if key is missing or empty
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// may parses key with parse; a bad value is logged and def returned
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("invalid value; using default")
		return def
	}
	return v
}

// MayInt returns the value or def if missing, empty or not an int
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool returns the value or def if missing, empty or not a bool
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def if missing, empty or not a Go duration such as 168h
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks; def if nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value if it is one of allowed, def if unset, and panics otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	if v == "" {
		return v
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
