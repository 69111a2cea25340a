// Package raw reads environment settings during bootstrap
// it must not import the logger, which is configured through it
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a namespaced view over environment variables
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) string { return strings.TrimSpace(os.Getenv(c.prefix + key)) }

// Get returns the trimmed value or def if empty
func (c Conf) Get(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// GetBool treats 1, true and yes as true; def if empty
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.lookup(key)) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt parses a non-negative integer; def if empty or invalid
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.lookup(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
