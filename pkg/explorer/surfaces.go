package explorer

import (
	"context"
	"fmt"
	"time"

	"github.com/soon-network/soonscan/internal/types"
	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/poller"
)

const (
	SurfaceBlocks       = "blocks"
	SurfaceTransactions = "transactions"
	SurfaceDashboard    = "dashboard"

	DashboardErrorMessage = "Failed to fetch blockchain data. Please check your network connection."
)

// SurfaceConfig sizes and paces the three polled views.
type SurfaceConfig struct {
	BlocksCount          int
	BlocksInterval       time.Duration
	TransactionsBlocks   int
	TransactionsInterval time.Duration
	DashboardBlocks      int
	DashboardInterval    time.Duration
}

func DefaultSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		BlocksCount:          25,
		BlocksInterval:       10 * time.Second,
		TransactionsBlocks:   5,
		TransactionsInterval: 15 * time.Second,
		DashboardBlocks:      20,
		DashboardInterval:    15 * time.Second,
	}
}

// Surfaces owns the Blocks, Transactions and Dashboard pollers. Each polls
// independently; none coordinates with the others.
type Surfaces struct {
	Blocks       *poller.Poller[[]types.Block]
	Transactions *poller.Poller[[]types.Transaction]
	Dashboard    *poller.Poller[Dashboard]
}

// NewSurfaces builds idle pollers backed by svc. opts apply to all three.
func NewSurfaces(svc *Service, cfg SurfaceConfig, opts ...poller.Option) (*Surfaces, error) {
	blocks, err := poller.New(SurfaceBlocks, cfg.BlocksInterval,
		func(ctx context.Context) ([]types.Block, error) {
			return svc.LatestBlocks(ctx, cfg.BlocksCount)
		},
		append(opts, poller.WithFallbackMessage("Failed to fetch blocks"))...,
	)
	if err != nil {
		return nil, fmt.Errorf("blocks surface: %w", err)
	}

	txs, err := poller.New(SurfaceTransactions, cfg.TransactionsInterval,
		func(ctx context.Context) ([]types.Transaction, error) {
			return svc.LatestTransactions(ctx, cfg.TransactionsBlocks)
		},
		append(opts, poller.WithFallbackMessage("Failed to fetch transactions"))...,
	)
	if err != nil {
		return nil, fmt.Errorf("transactions surface: %w", err)
	}

	dashboard, err := poller.New(SurfaceDashboard, cfg.DashboardInterval,
		func(ctx context.Context) (Dashboard, error) {
			blocks, err := svc.LatestBlocks(ctx, cfg.DashboardBlocks)
			if err != nil {
				return Dashboard{}, err
			}
			return BuildDashboard(blocks), nil
		},
		append(opts, poller.WithErrorMessage(DashboardErrorMessage))...,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard surface: %w", err)
	}

	return &Surfaces{Blocks: blocks, Transactions: txs, Dashboard: dashboard}, nil
}

// Start starts all pollers.
func (s *Surfaces) Start(ctx context.Context) error {
	if err := s.Blocks.Start(ctx); err != nil {
		return err
	}
	if err := s.Transactions.Start(ctx); err != nil {
		return err
	}
	return s.Dashboard.Start(ctx)
}

// Stop stops all pollers and waits for their goroutines to exit.
func (s *Surfaces) Stop() {
	s.Blocks.Stop()
	s.Transactions.Stop()
	s.Dashboard.Stop()
	s.Blocks.Wait()
	s.Transactions.Wait()
	s.Dashboard.Wait()
}

// Healthy returns an error when every surface is in the Failed state. It
// matches metrics.HealthFunc.
func (s *Surfaces) Healthy() error {
	blocks := s.Blocks.Snapshot()
	txs := s.Transactions.Snapshot()
	dash := s.Dashboard.Snapshot()
	if blocks.State == poller.Failed && txs.State == poller.Failed && dash.State == poller.Failed {
		return fmt.Errorf("all surfaces failed: %s", blocks.Error)
	}
	return nil
}

// NetworkChanged implements network.Observer by refreshing every surface.
func (s *Surfaces) NetworkChanged(cfg network.Config) {
	s.Blocks.NetworkChanged(cfg)
	s.Transactions.NetworkChanged(cfg)
	s.Dashboard.NetworkChanged(cfg)
}
