package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soon-network/soonscan/pkg/api"
	"github.com/soon-network/soonscan/pkg/explorer"
	"github.com/soon-network/soonscan/pkg/metrics"
	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/poller"
	"github.com/soon-network/soonscan/pkg/rpc"
	"github.com/soon-network/soonscan/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func serve(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"network", cfg.Network,
		"maxAttempts", cfg.MaxAttempts,
		"requestTimeout", cfg.RequestTimeout,
		"apiAddr", cfg.APIAddr,
		"blocksCount", cfg.Surfaces.BlocksCount,
		"blocksInterval", cfg.Surfaces.BlocksInterval,
		"transactionsBlocks", cfg.Surfaces.TransactionsBlocks,
		"transactionsInterval", cfg.Surfaces.TransactionsInterval,
		"dashboardBlocks", cfg.Surfaces.DashboardBlocks,
		"dashboardInterval", cfg.Surfaces.DashboardInterval,
		"metricsHost", cfg.MetricsHost,
		"metricsPort", cfg.MetricsPort,
		"environment", cfg.Environment,
		"region", cfg.Region,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewWithLabels(registry, metrics.Labels{
		Environment: cfg.Environment,
		Region:      cfg.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	nc := network.NewContext(cfg.Network)
	client := rpc.New(nc,
		rpc.WithLogger(sugar.Named("rpc")),
		rpc.WithMetrics(m),
		rpc.WithMaxAttempts(cfg.MaxAttempts),
		rpc.WithRequestTimeout(cfg.RequestTimeout),
	)
	svc := explorer.NewService(client, nc,
		explorer.WithLogger(sugar.Named("explorer")),
		explorer.WithMetrics(m),
	)
	surfaces, err := explorer.NewSurfaces(svc, cfg.Surfaces,
		poller.WithLogger(sugar.Named("poller")),
		poller.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("failed to create surfaces: %w", err)
	}
	unsubscribe := nc.Subscribe(network.ObserverFunc(func(active network.Config) {
		sugar.Infow("active network changed",
			"network", active.ID,
			"rpcURL", active.RPCURL,
		)
		surfaces.NetworkChanged(active)
	}))
	defer unsubscribe()

	apiServer := api.NewServer(cfg.APIAddr, nc, svc, surfaces,
		api.WithLogger(sugar.Named("api")),
		api.WithMetrics(m),
	)
	metricsServer := metrics.NewServer(cfg.MetricsAddr(), registry, surfaces.Healthy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := surfaces.Start(ctx); err != nil {
		return fmt.Errorf("failed to start surfaces: %w", err)
	}
	defer surfaces.Stop()

	apiErrCh := apiServer.Start()
	sugar.Infof("api server listening on %s", cfg.APIAddr)
	metricsErrCh := metricsServer.Start()
	sugar.Infof("metrics server listening on http://%s/metrics", cfg.MetricsAddr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return waitServer(gctx, "api", apiErrCh)
	})
	g.Go(func() error {
		return waitServer(gctx, "metrics", metricsErrCh)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(sugar, apiServer, metricsServer)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		sugar.Info("exiting due to context cancellation")
		return nil
	}
	return err
}

// waitServer blocks until ctx is done or the server reports a failure. A
// server that stops on its own cancels the group.
func waitServer(ctx context.Context, name string, errCh <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-errCh:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if ok && err != nil {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return fmt.Errorf("%s server stopped", name)
	}
}

func shutdown(sugar *zap.SugaredLogger, apiServer *api.Server, metricsServer *metrics.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := apiServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
	}
	sugar.Info("servers stopped")
	return errors.Join(errs...)
}
