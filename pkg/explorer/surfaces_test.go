package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/poller"
	"github.com/soon-network/soonscan/pkg/rpc"
)

func fastSurfaceConfig() SurfaceConfig {
	cfg := DefaultSurfaceConfig()
	cfg.BlocksInterval = time.Hour
	cfg.TransactionsInterval = time.Hour
	cfg.DashboardInterval = time.Hour
	return cfg
}

func TestDefaultSurfaceConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultSurfaceConfig()
	assert.Equal(t, 25, cfg.BlocksCount)
	assert.Equal(t, 10*time.Second, cfg.BlocksInterval)
	assert.Equal(t, 5, cfg.TransactionsBlocks)
	assert.Equal(t, 15*time.Second, cfg.TransactionsInterval)
	assert.Equal(t, 20, cfg.DashboardBlocks)
	assert.Equal(t, 15*time.Second, cfg.DashboardInterval)
}

func TestSurfaces_Ready(t *testing.T) {
	t.Parallel()

	node := devnetNode(100)
	svc := NewService(node, node.networks)
	s, err := NewSurfaces(svc, fastSurfaceConfig())
	require.NoError(t, err)

	require.NoError(t, s.Start(t.Context()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return s.Blocks.Snapshot().State == poller.Ready &&
			s.Transactions.Snapshot().State == poller.Ready &&
			s.Dashboard.Snapshot().State == poller.Ready
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Healthy())
	assert.Len(t, s.Blocks.Snapshot().Data, 25)
	assert.Len(t, s.Transactions.Snapshot().Data, 5)
	dash := s.Dashboard.Snapshot().Data
	assert.Len(t, dash.Chart, 20)
	assert.Equal(t, 20, dash.TotalTransactions)
}

func TestSurfaces_FailureMessages(t *testing.T) {
	t.Parallel()

	node := newFakeNode(network.NewContext(network.Devnet)).
		on("getSlot", func([]any) (any, error) {
			return nil, &rpc.RequestFailedError{Method: "getSlot", Attempts: 3, Err: assert.AnError}
		})
	svc := NewService(node, node.networks)
	s, err := NewSurfaces(svc, fastSurfaceConfig())
	require.NoError(t, err)

	require.NoError(t, s.Healthy(), "idle surfaces are healthy")
	require.NoError(t, s.Start(t.Context()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return s.Blocks.Snapshot().State == poller.Failed &&
			s.Transactions.Snapshot().State == poller.Failed &&
			s.Dashboard.Snapshot().State == poller.Failed
	}, 2*time.Second, 10*time.Millisecond)

	assert.Contains(t, s.Blocks.Snapshot().Error, "failed after 3 attempts")
	assert.Contains(t, s.Transactions.Snapshot().Error, "failed after 3 attempts")
	assert.Equal(t, DashboardErrorMessage, s.Dashboard.Snapshot().Error)
	require.ErrorContains(t, s.Healthy(), "all surfaces failed")
}

func TestSurfaces_NetworkChangeRefreshesAll(t *testing.T) {
	t.Parallel()

	node := devnetNode(10)
	svc := NewService(node, node.networks)
	s, err := NewSurfaces(svc, fastSurfaceConfig())
	require.NoError(t, err)
	unsubscribe := node.networks.Subscribe(s)
	defer unsubscribe()

	require.NoError(t, s.Start(t.Context()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return s.Blocks.Snapshot().State == poller.Ready
	}, 2*time.Second, 10*time.Millisecond)
	first := s.Blocks.Snapshot().UpdatedAt

	node.networks.SetNetworkByID(network.Testnet)
	require.Eventually(t, func() bool {
		snap := s.Blocks.Snapshot()
		return snap.State == poller.Ready && snap.UpdatedAt.After(first)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewSurfaces_InvalidInterval(t *testing.T) {
	t.Parallel()

	node := devnetNode(10)
	cfg := DefaultSurfaceConfig()
	cfg.DashboardInterval = 0
	_, err := NewSurfaces(NewService(node, node.networks), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard surface")
}
