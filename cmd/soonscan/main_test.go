package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/sdk"
)

func captureConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var (
		cfg      *Config
		buildErr error
	)
	app := &cli.App{
		Name:  "soonscan",
		Flags: serveFlags(),
		Action: func(c *cli.Context) error {
			cfg, buildErr = buildConfig(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"soonscan"}, args...)))
	return cfg, buildErr
}

func TestBuildConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := captureConfig(t)
	require.NoError(t, err)
	assert.Equal(t, network.Testnet, cfg.Network)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 25, cfg.Surfaces.BlocksCount)
	assert.Equal(t, 10*time.Second, cfg.Surfaces.BlocksInterval)
	assert.Equal(t, 5, cfg.Surfaces.TransactionsBlocks)
	assert.Equal(t, 20, cfg.Surfaces.DashboardBlocks)
	assert.Equal(t, ":9090", cfg.MetricsAddr())
}

func TestBuildConfig_Flags(t *testing.T) {
	t.Parallel()

	cfg, err := captureConfig(t,
		"--network", "devnet",
		"--api-addr", "127.0.0.1:7000",
		"--blocks-count", "50",
		"--dashboard-interval", "1m",
		"--metrics-host", "localhost",
		"--metrics-port", "9191",
		"--environment", "staging",
	)
	require.NoError(t, err)
	assert.Equal(t, network.Devnet, cfg.Network)
	assert.Equal(t, "127.0.0.1:7000", cfg.APIAddr)
	assert.Equal(t, 50, cfg.Surfaces.BlocksCount)
	assert.Equal(t, time.Minute, cfg.Surfaces.DashboardInterval)
	assert.Equal(t, "localhost:9191", cfg.MetricsAddr())
	assert.Equal(t, "staging", cfg.Environment)
}

func TestBuildConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := captureConfig(t, "--network", "mainnet")
	require.ErrorContains(t, err, `unknown network "mainnet"`)

	_, err = captureConfig(t, "--max-attempts", "0")
	require.ErrorContains(t, err, "max-attempts must be at least 1")
}

func TestBlockQueryOptions(t *testing.T) {
	t.Parallel()

	var opts sdk.QueryOptions
	app := &cli.App{
		Name:  "soonscan",
		Flags: sdkCommand().Subcommands[1].Flags,
		Action: func(c *cli.Context) error {
			opts = blockQueryOptions(c)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"soonscan", "--from", "100", "--end-time", "1700000000"}))

	assert.Equal(t, sdk.DefaultBlocksLimit, opts.Limit)
	require.NotNil(t, opts.FromBlock)
	assert.Equal(t, uint64(100), *opts.FromBlock)
	assert.Nil(t, opts.ToBlock)
	assert.Nil(t, opts.StartTime)
	require.NotNil(t, opts.EndTime)
	assert.Equal(t, int64(1700000000), *opts.EndTime)
}

func TestNetworksCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run([]string{"soonscan", "networks"}))

	var got []network.Config
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, network.All(), got)
}

func TestSDKLatestBlockCommand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		var result string
		switch req.Method {
		case "getSlot":
			result = `7`
		case "getBlock":
			result = `{"blockhash":"bh-7","previousBlockhash":"bh-6","parentSlot":6,"blockTime":1700000007,"transactions":[]}`
		default:
			t.Errorf("unexpected method %s", req.Method)
			result = `null`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + jsonNumber(req.ID) + `,"result":` + result + `}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run([]string{"soonscan", "sdk", "latest-block", "--rpc-url", srv.URL}))

	var block sdk.BlockData
	require.NoError(t, json.Unmarshal(out.Bytes(), &block))
	assert.Equal(t, uint64(7), block.Slot)
	assert.Equal(t, "bh-7", block.Blockhash)
	assert.Equal(t, uint64(6), block.ParentSlot)
}

func TestSDKArchiveCommand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "{ blocks(limit: $n) { height } }", req.Query)
		assert.Equal(t, map[string]any{"n": float64(2)}, req.Variables)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"blocks":[{"height":1},{"height":2}]}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run([]string{
		"soonscan", "sdk", "archive",
		"--archive-url", srv.URL,
		"--query", "{ blocks(limit: $n) { height } }",
		"--variables", `{"n":2}`,
	}))
	assert.JSONEq(t, `{"blocks":[{"height":1},{"height":2}]}`, out.String())
}

func jsonNumber(v uint64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
