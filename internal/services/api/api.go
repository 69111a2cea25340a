// Package api provides the HTTP API for the application
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bugprint/internal/platform/config"
	"bugprint/internal/platform/logger"
	phttp "bugprint/internal/platform/net/http"
	"bugprint/internal/platform/net/middleware"
	"bugprint/internal/platform/store"

	"bugprint/internal/modkit"
	"bugprint/internal/modkit/httpkit"
	"bugprint/internal/modkit/module"
	"bugprint/internal/modkit/swaggerkit"
	"bugprint/internal/services/registry/domain"

	metamod "bugprint/internal/services/api/meta/module"
	registrymod "bugprint/internal/services/registry/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger

	// Registry holds registry settings, usually registrymod.FromConfig
	Registry registrymod.Options
	// EntryStore is the opened registry backend
	EntryStore domain.EntryStore

	// Metrics collects module metrics and backs /metrics; nil disables both
	Metrics *prometheus.Registry

	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the registry ports
// the caller owns the sweeper lifecycle
func Mount(r phttp.Router, opt Options) registrymod.Ports {
	// shared deps for modules
	deps := modkit.FromStore(opt.Config, opt.Store)
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Metrics != nil {
		deps.Reg = opt.Metrics
		opt.Metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	regOpts := opt.Registry
	if tokens := opt.Config.MayCSV("TOKENS", nil); len(tokens) > 0 && regOpts.Auth == nil {
		regOpts.Auth = httpkit.NewPortFunc(httpkit.StaticTokens(tokens))
	}
	registry := registrymod.New(deps, opt.EntryStore, regOpts)

	mods := []modkit.Module{
		metamod.New(deps),
		registry,
	}

	// load balancers poll /health outside the versioned tree
	r.Use(middleware.Heartbeat("/health"))

	stack := httpkit.CommonStack(middleware.CORSOptions{
		AllowedOrigins: opt.Config.MayCSV("CORS_ORIGINS", nil),
	})

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	if opt.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opt.Metrics, promhttp.HandlerOpts{Registry: opt.Metrics}))
	}

	return module.MustPortsOf[registrymod.Ports](registry)
}
