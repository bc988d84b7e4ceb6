package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/soon-network/soonscan/pkg/explorer"
	"github.com/soon-network/soonscan/pkg/network"
)

// Config holds all configuration for the serve command
type Config struct {
	// Application settings
	Verbose bool

	// Network settings
	Network        string
	MaxAttempts    int
	RequestTimeout time.Duration

	// API settings
	APIAddr string

	// Surface settings
	Surfaces explorer.SurfaceConfig

	// Metrics settings
	MetricsHost string
	MetricsPort int
	Environment string
	Region      string
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// buildConfig builds a Config from CLI context flags
func buildConfig(c *cli.Context) (*Config, error) {
	id := c.String("network")
	if _, ok := network.Lookup(id); !ok {
		return nil, fmt.Errorf("unknown network %q", id)
	}
	if c.Int("max-attempts") < 1 {
		return nil, fmt.Errorf("max-attempts must be at least 1, got %d", c.Int("max-attempts"))
	}

	return &Config{
		Verbose:        c.Bool("verbose"),
		Network:        id,
		MaxAttempts:    c.Int("max-attempts"),
		RequestTimeout: c.Duration("request-timeout"),
		APIAddr:        c.String("api-addr"),
		Surfaces: explorer.SurfaceConfig{
			BlocksCount:          c.Int("blocks-count"),
			BlocksInterval:       c.Duration("blocks-interval"),
			TransactionsBlocks:   c.Int("transactions-blocks"),
			TransactionsInterval: c.Duration("transactions-interval"),
			DashboardBlocks:      c.Int("dashboard-blocks"),
			DashboardInterval:    c.Duration("dashboard-interval"),
		},
		MetricsHost: c.String("metrics-host"),
		MetricsPort: c.Int("metrics-port"),
		Environment: c.String("environment"),
		Region:      c.String("region"),
	}, nil
}
