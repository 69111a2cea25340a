package main

import (
	"context"
	"fmt"

	"bugprint/internal/modkit"
	"bugprint/internal/platform/config"
	"bugprint/internal/platform/logger"
	"bugprint/internal/platform/store"
	registrymod "bugprint/internal/services/registry/module"
	"bugprint/internal/services/registry/service"
)

// openRegistry opens the backend named by CORE_REGISTRY_BACKEND
// the returned func closes the underlying store
func openRegistry(ctx context.Context) (*service.Registry, func(), error) {
	root := config.New()
	o := registrymod.FromConfig(root)
	l := logger.Named("cli")

	st, err := store.Open(ctx, registrymod.StoreConfig(root, o), store.WithLogger(*l))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}

	entries, err := registrymod.OpenStore(ctx, o, modkit.FromStore(root, st))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	reg := service.NewRegistry(entries,
		service.WithPendingTTL(o.PendingTTL),
		service.WithTTL(o.TTL),
		service.WithLogger(*l),
	)
	return reg, closeFn, nil
}
