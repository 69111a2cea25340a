// Package module mounts the meta endpoints as a modkit module
package module

import (
	"time"

	"bugprint/internal/modkit"
	"bugprint/internal/modkit/httpkit"

	metahttp "bugprint/internal/services/api/meta/http"
)

// ServiceName is reported by the health and service endpoints
const ServiceName = "bugprint-api"

// Module serves /meta
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New builds the meta module; readiness covers the pg and kv seams in deps
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		b: b,
		deps: metahttp.Deps{
			ServiceName: ServiceName,
			StartedAt:   time.Now(),
			Backends: []metahttp.Backend{
				{Name: "pg", Seam: nilIfNone(deps.PG)},
				{Name: "kv", Seam: nilIfNone(deps.KV)},
			},
		},
	}
}

// MountRoutes mounts the meta routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name is the module name
func (m *Module) Name() string { return m.b.Name }

// Ports is nil; nothing consumes meta
func (m *Module) Ports() any { return nil }

// nilIfNone keeps a nil interface nil after it crossed a typed seam
func nilIfNone[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}
