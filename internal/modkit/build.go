package modkit

import (
	"net/http"

	"bugprint/internal/modkit/httpkit"
	pstrings "bugprint/internal/platform/strings"
)

// Built is the resolved module configuration
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler

	extra []func(httpkit.Router)
}

// Build applies opts in order
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		extra:  append([](func(httpkit.Router))(nil), c.register...),
	}
}

// Mount routes the module under its prefix with its middleware,
// then calls own followed by any WithRegister functions
// an empty name or prefix panics
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	pstrings.MustString(b.Name, "module name")
	r.Route(pstrings.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		if len(b.Mw) > 0 {
			rr.Use(b.Mw...)
		}
		own(rr)
		for _, fn := range b.extra {
			fn(rr)
		}
	})
}
