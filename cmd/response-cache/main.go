package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

type options struct {
	configPath string
	rulesPath  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "response-cache",
		Short:         "Caching gateway with request deduplication and latency monitoring",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML config (overrides "+configFileEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "path to the YAML cache rules (overrides "+rulesFileEnv+")")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the gateway and admin servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the config and cache rules, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckConfig(cmd, opts)
		},
	})

	return rootCmd
}

func runServe(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	root, err := NewCompositionRoot(GetConfigPath(opts.configPath), GetRulesPath(opts.rulesPath))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if err := root.Cleanup(); err != nil {
			root.Logger.Error("Failed to cleanup resources", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root.Reaper.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(root.Gateway.Start)
	g.Go(root.AdminServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		root.Logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		root.Reaper.Stop()

		var errs []error
		if err := root.Gateway.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("gateway forced to shutdown: %w", err))
		}
		if err := root.AdminServer.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("admin server forced to shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		root.Logger.Error("Server exited with error", zap.Error(err))
		return err
	}

	root.Logger.Info("Server exited")
	return nil
}

func runCheckConfig(cmd *cobra.Command, opts *options) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, classifier, err := loadSettings(GetConfigPath(opts.configPath), GetRulesPath(opts.rulesPath), logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "gateway: %s -> %s\n", cfg.Server.ListenAddr, cfg.Upstream.URL)
	fmt.Fprintf(out, "admin: %s\n", cfg.Admin.ListenAddr)
	for _, m := range classifier.Mounts() {
		if m.Bypass {
			fmt.Fprintf(out, "mount %s: bypass\n", m.Prefix)
			continue
		}
		fmt.Fprintf(out, "mount %s: freshness window %s\n", m.Prefix, m.FreshnessWindow)
	}
	return nil
}
