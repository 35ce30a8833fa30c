package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/threadpool"
	"github.com/ygrebnov/threadpool/internal/config"
	"github.com/ygrebnov/threadpool/internal/runner"
	"github.com/ygrebnov/threadpool/internal/telemetry"
	"github.com/ygrebnov/threadpool/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "threadpool",
		Short:         "Run shell commands on a fixed-size worker pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		path    string
		workers uint
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every job in the config file and wait for all of them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Pool.Workers = workers
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "jobs.yaml", "path to the YAML config")
	cmd.Flags().UintVarP(&workers, "workers", "w", 0, "override pool.workers")
	return cmd
}

func newLogger(cfg *config.Config) *slog.Logger {
	lvl, _ := cfg.LogLevel() // validated by config.Load
	opts := &slog.HandlerOptions{Level: lvl}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger(cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	policy := threadpool.FaultStopsWorker
	if cfg.Pool.RecoverPanics {
		policy = threadpool.FaultRecover
	}
	pool, err := threadpool.New(cfg.Pool.Workers,
		threadpool.WithName(cfg.Pool.Name),
		threadpool.WithLogger(log),
		threadpool.WithFaultPolicy(policy),
		threadpool.WithMetrics(metrics.NewPrometheusProvider(reg)),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(gctx)
	defer stopServing()

	if cfg.MetricsAddr != "" {
		srv := telemetry.New(cfg.MetricsAddr, reg, func() telemetry.Status {
			return telemetry.Status{Workers: pool.Size(), Live: pool.Live(), Pending: pool.Pending()}
		}, log)
		g.Go(func() error { return srv.Run(serveCtx) })
	}

	g.Go(func() error {
		defer stopServing()
		_, err := runner.New(pool, log).Run(ctx, cfg.Jobs)
		return err
	})

	return g.Wait()
}
