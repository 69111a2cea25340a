// @title         Bugprint API
// @version       0.1.0
// @description   Bug report fingerprints and duplicate reservations

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"bugprint/internal/modkit"
	"bugprint/internal/modkit/repokit"
	"bugprint/internal/platform/config"
	"bugprint/internal/platform/logger"
	phttp "bugprint/internal/platform/net/http"
	"bugprint/internal/platform/store"

	"bugprint/internal/services/api"
	registrymod "bugprint/internal/services/registry/module"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	regOpts := registrymod.FromConfig(root)

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open only the backend the registry is configured for
	st, err := store.Open(ctx, registrymod.StoreConfig(root, regOpts), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail before serving if a configured backend does not answer
	repokit.MustGuard(ctx, st)

	entries, err := registrymod.OpenStore(ctx, regOpts, modkit.FromStore(root, st))
	if err != nil {
		l.Panic().Err(err).Msg("registry store failed")
	}

	// http server (reads CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	ports := api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			Registry:       regOpts,
			EntryStore:     entries,
			Metrics:        prometheus.NewRegistry(),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	// the sweeper and the server share one lifetime
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return ports.Sweeper.Run(gctx) })

	if err := g.Wait(); err != nil {
		l.Panic().Err(err).Msg("api stopped")
	}
	l.Info().Msg("api stopped")
}
