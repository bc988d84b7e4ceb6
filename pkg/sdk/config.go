package sdk

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/soon-network/soonscan/pkg/network"
)

const (
	DefaultArchiveURL = "https://v2.archive.subsquid.io/network/soon-devnet"
	DefaultFirstBlock = 2471639

	DefaultRequestTimeout = 30 * time.Second
)

// Config holds the endpoints an SDK client talks to.
type Config struct {
	RPCURL         string        `env:"SOON_RPC_URL"`                                // JSON-RPC endpoint
	ArchiveURL     string        `env:"SOON_ARCHIVE_URL"`                            // GraphQL archive endpoint
	FirstBlock     uint64        `env:"SOON_FIRST_BLOCK"`                            // first block indexed by the archive
	RequestTimeout time.Duration `env:"SOON_REQUEST_TIMEOUT" envDefault:"30s"`       // per-attempt timeout
	MaxAttempts    int           `env:"SOON_MAX_ATTEMPTS"    envDefault:"3"`         // attempts per RPC call
	Commitment     string        `env:"SOON_COMMITMENT"      envDefault:"finalized"` // commitment used for getSlot
}

// ConfigForNetwork returns the compiled-in SDK environment of a registered network.
func ConfigForNetwork(id string) (Config, bool) {
	n, ok := network.Lookup(id)
	if !ok {
		return Config{}, false
	}
	return Config{
		RPCURL:         n.RPCURL,
		ArchiveURL:     DefaultArchiveURL,
		FirstBlock:     DefaultFirstBlock,
		RequestTimeout: DefaultRequestTimeout,
		MaxAttempts:    3,
		Commitment:     "finalized",
	}, true
}

// LoadConfig starts from the environment of networkID and applies SOON_*
// environment variable overrides.
func LoadConfig(networkID string) (Config, error) {
	cfg, ok := ConfigForNetwork(networkID)
	if !ok {
		return Config{}, fmt.Errorf("unknown network %q", networkID)
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse sdk config: %w", err)
	}
	return cfg, nil
}
