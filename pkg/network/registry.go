package network

// Network identifiers known to the registry.
const (
	Testnet = "testnet"
	Devnet  = "devnet"

	// DefaultID is the network that is active when nothing else was selected.
	DefaultID = Testnet
)

// Config describes a SOON network deployment and its public endpoints.
type Config struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	BridgeURL   string `json:"bridgeUrl"`
	ExplorerURL string `json:"explorerUrl"`
	FaucetURL   string `json:"faucetUrl"`
	ChainID     string `json:"chainId"`
}

// order fixes the enumeration order of All.
var order = []string{Testnet, Devnet}

var networks = map[string]Config{
	Testnet: {
		ID:          Testnet,
		Name:        "Testnet",
		RPCURL:      "https://rpc.testnet.soo.network/rpc",
		BridgeURL:   "https://bridge.testnet.soo.network/",
		ExplorerURL: "https://explorer.testnet.soo.network/",
		FaucetURL:   "https://faucet.soo.network/",
		ChainID:     "0x1",
	},
	Devnet: {
		ID:          Devnet,
		Name:        "Devnet",
		RPCURL:      "https://rpc.devnet.soo.network/rpc",
		BridgeURL:   "https://bridge.devnet.soo.network/",
		ExplorerURL: "https://explorer.devnet.soo.network/",
		FaucetURL:   "https://faucet.soo.network/",
		ChainID:     "0x2",
	},
}

// Lookup returns the network registered under id.
func Lookup(id string) (Config, bool) {
	cfg, ok := networks[id]
	return cfg, ok
}

// All returns every registered network in a stable order.
func All() []Config {
	out := make([]Config, 0, len(order))
	for _, id := range order {
		out = append(out, networks[id])
	}
	return out
}

// Fixed is a network source that always reports the same network.
type Fixed Config

// Active returns the fixed network.
func (f Fixed) Active() Config {
	return Config(f)
}
