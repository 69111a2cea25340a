// Package module wires the reservation registry into HTTP via modkit
package module

import (
	"context"
	"fmt"

	"bugprint/internal/modkit"
	"bugprint/internal/modkit/httpkit"
	"bugprint/internal/modkit/repokit"
	"bugprint/internal/platform/logger"
	"bugprint/internal/platform/net/middleware"
	"bugprint/internal/services/registry/domain"

	registryhttp "bugprint/internal/services/registry/http"
	"bugprint/internal/services/registry/repo"
	"bugprint/internal/services/registry/service"
)

// Ports exposes the registry to other modules and to the binaries
type Ports struct {
	Service  domain.ServicePort
	Registry *service.Registry
	Sweeper  *service.Sweeper
}

// Module implements the registry module
type Module struct {
	b     modkit.Built
	auth  middleware.AuthPort
	ports Ports
}

// OpenStore picks the EntryStore named by o.Backend from deps
// postgres runs the schema first when o.PGMigrate is set
func OpenStore(ctx context.Context, o Options, deps modkit.Deps) (domain.EntryStore, error) {
	switch o.Backend {
	case BackendMemory, "":
		return repo.NewMemory(), nil
	case BackendBadger:
		if deps.KV == nil {
			return nil, fmt.Errorf("registry: backend %q needs the kv store enabled", o.Backend)
		}
		return repo.NewBlob(repokit.KV(ctx, deps.KV)), nil
	case BackendPostgres:
		if deps.PG == nil {
			return nil, fmt.Errorf("registry: backend %q needs postgres enabled", o.Backend)
		}
		tx := repokit.TX(ctx, deps.PG)
		if o.PGMigrate {
			if err := repo.EnsureSchema(ctx, tx); err != nil {
				return nil, err
			}
		}
		return repo.NewPG().Bind(tx), nil
	default:
		return nil, fmt.Errorf("registry: unknown backend %q", o.Backend)
	}
}

// New constructs the registry module over an opened store
func New(deps modkit.Deps, store domain.EntryStore, o Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("registry"),
		modkit.WithPrefix("/registry"),
		modkit.WithMiddlewares(middleware.AllowContentType("application/json")),
	}, opts...)...)

	log := logger.Named("registry")
	reg := service.NewRegistry(store,
		service.WithPendingTTL(o.PendingTTL),
		service.WithTTL(o.TTL),
		service.WithLogger(*log),
		service.WithMetrics(service.NewMetrics(deps.Reg)),
	)
	svc := service.New(reg)

	m := &Module{
		b:    b,
		auth: o.Auth,
		ports: Ports{
			Service:  svc,
			Registry: reg,
			Sweeper:  service.NewSweeper(reg, o.SweepEvery, *log),
		},
	}

	log.Info().
		Str("backend", o.Backend).
		Dur("pending_ttl", reg.PendingTTL()).
		Dur("ttl", reg.TTL()).
		Str("owner", reg.Owner()).
		Msg("registry ready")

	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		registryhttp.Register(rr, m.ports.Service, m.auth)
	})
}

// Name is the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
