package config

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/zecsend/pkg/params"
)

// Send pipeline defaults.
const (
	DefaultMaxAttempts  = 30
	DefaultPollInterval = time.Second
	DefaultExpiryDelta  = 40
	DefaultNodeTimeout  = 30 * time.Second
	DefaultNodeRetries  = 3
	DefaultWalletName   = "default"
)

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Node: NodeConfig{
			URL:     defaultNodeURL(params.MainNet),
			Timeout: DefaultNodeTimeout,
			Retries: DefaultNodeRetries,
		},
		Wallet: WalletConfig{
			Name: DefaultWalletName,
		},
		Send: SendConfig{
			MaxAttempts:  DefaultMaxAttempts,
			PollInterval: DefaultPollInterval,
			ExpiryDelta:  DefaultExpiryDelta,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Node.URL = defaultNodeURL(params.TestNet)
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}

func defaultNodeURL(net *params.Network) string {
	return fmt.Sprintf("http://127.0.0.1:%d/", net.DefaultRPCPort)
}
