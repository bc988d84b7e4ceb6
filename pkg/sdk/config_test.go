package sdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soon-network/soonscan/pkg/network"
)

func TestConfigForNetwork(t *testing.T) {
	t.Parallel()

	for _, n := range network.All() {
		cfg, ok := ConfigForNetwork(n.ID)
		require.True(t, ok, n.ID)
		assert.Equal(t, n.RPCURL, cfg.RPCURL)
		assert.Equal(t, DefaultArchiveURL, cfg.ArchiveURL)
		assert.Equal(t, uint64(DefaultFirstBlock), cfg.FirstBlock)
	}

	_, ok := ConfigForNetwork("mainnet")
	assert.False(t, ok)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(network.Devnet)
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.devnet.soo.network/rpc", cfg.RPCURL)
	assert.Equal(t, DefaultArchiveURL, cfg.ArchiveURL)
	assert.Equal(t, uint64(2471639), cfg.FirstBlock)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "finalized", cfg.Commitment)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SOON_RPC_URL", "http://localhost:8899")
	t.Setenv("SOON_ARCHIVE_URL", "http://localhost:4350/graphql")
	t.Setenv("SOON_FIRST_BLOCK", "10")
	t.Setenv("SOON_REQUEST_TIMEOUT", "5s")
	t.Setenv("SOON_MAX_ATTEMPTS", "1")

	cfg, err := LoadConfig(network.Testnet)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", cfg.RPCURL)
	assert.Equal(t, "http://localhost:4350/graphql", cfg.ArchiveURL)
	assert.Equal(t, uint64(10), cfg.FirstBlock)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.MaxAttempts)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("mainnet")
	require.Error(t, err)

	t.Setenv("SOON_FIRST_BLOCK", "not-a-number")
	_, err = LoadConfig(network.Devnet)
	require.Error(t, err)
}
