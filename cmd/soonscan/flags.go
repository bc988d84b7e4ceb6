package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/soon-network/soonscan/pkg/explorer"
	"github.com/soon-network/soonscan/pkg/network"
)

// serveFlags returns all CLI flags for the serve command
func serveFlags() []cli.Flag {
	defaults := explorer.DefaultSurfaceConfig()
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "network",
			Aliases: []string{"n"},
			Usage:   "The network that is active at startup (testnet or devnet)",
			EnvVars: []string{"SOON_NETWORK"},
			Value:   network.DefaultID,
		},
		&cli.StringFlag{
			Name:    "api-addr",
			Aliases: []string{"a"},
			Usage:   "The address the explorer API listens on",
			EnvVars: []string{"API_ADDR"},
			Value:   ":8080",
		},
		&cli.IntFlag{
			Name:    "max-attempts",
			Usage:   "Attempts per RPC request before giving up",
			EnvVars: []string{"RPC_MAX_ATTEMPTS"},
			Value:   3,
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "Timeout of a single RPC attempt",
			EnvVars: []string{"RPC_REQUEST_TIMEOUT"},
			Value:   30 * time.Second,
		},
		&cli.IntFlag{
			Name:    "blocks-count",
			Usage:   "Number of blocks shown by the blocks view",
			EnvVars: []string{"BLOCKS_COUNT"},
			Value:   defaults.BlocksCount,
		},
		&cli.DurationFlag{
			Name:    "blocks-interval",
			Usage:   "Refresh interval of the blocks view",
			EnvVars: []string{"BLOCKS_INTERVAL"},
			Value:   defaults.BlocksInterval,
		},
		&cli.IntFlag{
			Name:    "transactions-blocks",
			Usage:   "Number of recent blocks the transactions view reads",
			EnvVars: []string{"TRANSACTIONS_BLOCKS"},
			Value:   defaults.TransactionsBlocks,
		},
		&cli.DurationFlag{
			Name:    "transactions-interval",
			Usage:   "Refresh interval of the transactions view",
			EnvVars: []string{"TRANSACTIONS_INTERVAL"},
			Value:   defaults.TransactionsInterval,
		},
		&cli.IntFlag{
			Name:    "dashboard-blocks",
			Usage:   "Number of recent blocks the dashboard aggregates",
			EnvVars: []string{"DASHBOARD_BLOCKS"},
			Value:   defaults.DashboardBlocks,
		},
		&cli.DurationFlag{
			Name:    "dashboard-interval",
			Usage:   "Refresh interval of the dashboard",
			EnvVars: []string{"DASHBOARD_INTERVAL"},
			Value:   defaults.DashboardInterval,
		},
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "Host for Prometheus metrics server (empty for all interfaces)",
			EnvVars: []string{"METRICS_HOST"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Aliases: []string{"m"},
			Usage:   "Port for Prometheus metrics server",
			EnvVars: []string{"METRICS_PORT"},
			Value:   9090,
		},
		&cli.StringFlag{
			Name:    "environment",
			Usage:   "Deployment environment for metrics labels (e.g., 'production', 'staging')",
			EnvVars: []string{"ENVIRONMENT"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Cloud region for metrics labels (e.g., 'us-east-1')",
			EnvVars: []string{"REGION"},
			Value:   "",
		},
	}
}

// lookupFlags returns the flags shared by the one-shot explorer commands
func lookupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
		},
		&cli.StringFlag{
			Name:    "network",
			Aliases: []string{"n"},
			Usage:   "The network to query (testnet or devnet)",
			EnvVars: []string{"SOON_NETWORK"},
			Value:   network.DefaultID,
		},
	}
}

func countFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "count",
		Aliases: []string{"c"},
		Usage:   "Number of blocks to fetch, newest first",
		Value:   10,
	}
}

// sdkFlags returns the flags shared by the sdk subcommands. Unset flags fall
// back to the SOON_* environment read by sdk.LoadConfig.
func sdkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
		},
		&cli.StringFlag{
			Name:    "network",
			Aliases: []string{"n"},
			Usage:   "Network preset for the RPC endpoint",
			Value:   network.DefaultID,
		},
		&cli.StringFlag{
			Name:    "rpc-url",
			Aliases: []string{"r"},
			Usage:   "Override the RPC endpoint",
		},
		&cli.StringFlag{
			Name:  "archive-url",
			Usage: "Override the GraphQL archive endpoint",
		},
	}
}
