//go:build !test

package main

import (
	"context"

	"github.com/jbweber/homelab/hil/internal/config"
	"github.com/jbweber/homelab/hil/internal/reconciler"
	"github.com/jbweber/homelab/hil/internal/switches/builtin"
)

// serveNetworks runs the reconcile loop. Only one instance may run per
// deployment.
func serveNetworks(ctx context.Context, cfg *config.Config) error {
	ds, err := cfg.InitializeDatabase()
	if err != nil {
		return err
	}
	defer ds.Close()

	registry, err := builtin.NewRegistry(cfg.SwitchDrivers)
	if err != nil {
		return err
	}

	return reconciler.New(ds, registry).Run(ctx, cfg.ReconcileInterval)
}
