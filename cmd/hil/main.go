//go:build !test

// Code coverage for main is ignored for now.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/hil/internal/allocator"
	"github.com/jbweber/homelab/hil/internal/config"
	"github.com/jbweber/homelab/hil/internal/log"
)

var (
	mainCmd = &cobra.Command{
		Use:           "hil",
		Short:         "Hardware isolation layer: lease bare metal to projects on isolated networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	initDBCmd = &cobra.Command{
		Use:   "init-db",
		Short: "Create or migrate the database and seed the network allocator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return initDB(cmd.Context(), cfg)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the administrative API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	serveNetworksCmd = &cobra.Command{
		Use:   "serve-networks",
		Short: "Apply pending networking actions to the switches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serveNetworks(cmd.Context(), cfg)
		},
	}
)

func init() {
	mainCmd.PersistentFlags().StringP("config", "c", "/etc/hil/hil.yaml", "Configuration file")
	mainCmd.AddCommand(
		initDBCmd,
		serveCmd,
		serveNetworksCmd,
	)
}

// loadConfig reads the --config file and applies its log level
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	log.G(cmd.Context()).WithField("config", path).Debug("configuration loaded")
	return cfg, nil
}

// initDB migrates the database and populates the allocator's pool
func initDB(ctx context.Context, cfg *config.Config) error {
	ds, err := cfg.InitializeDatabase()
	if err != nil {
		return err
	}
	defer ds.Close()

	alloc, err := allocator.New(cfg.AllocatorOptions())
	if err != nil {
		return err
	}
	if err := alloc.Populate(ctx, ds.DB); err != nil {
		return fmt.Errorf("failed to populate %s allocator: %w", alloc.Name(), err)
	}

	log.G(ctx).WithField("allocator", alloc.Name()).Info("database initialized")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mainCmd.ExecuteContext(ctx); err != nil {
		log.G(ctx).WithError(err).Error("hil failed")
		stop()
		os.Exit(1)
	}
}
