package modkit

import (
	"net/http"

	"bugprint/internal/modkit/httpkit"
)

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name     string
	prefix   string
	mw       []func(http.Handler) http.Handler
	register []func(httpkit.Router)
}

// WithName sets a module name used in logs
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPrefix mounts a module under a path prefix; the last one wins
func WithPrefix(prefix string) Option {
	return func(c *buildCfg) { c.prefix = prefix }
}

// WithMiddlewares appends per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithRegister adds extra routes next to the module's own; repeated calls all run, in order
func WithRegister(fn func(httpkit.Router)) Option {
	return func(c *buildCfg) {
		if fn != nil {
			c.register = append(c.register, fn)
		}
	}
}
