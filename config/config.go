// Package config handles application configuration.
//
// Settings are resolved in order of increasing precedence: built-in
// defaults, the config file, then command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Klingon-tech/zecsend/pkg/params"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds the client configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Node RPC endpoint
	Node NodeConfig

	// Wallet
	Wallet WalletConfig

	// Send pipeline
	Send SendConfig

	// Consensus override
	Consensus ConsensusConfig

	// Logging
	Log LogConfig
}

// NodeConfig holds the zcashd JSON-RPC connection settings.
type NodeConfig struct {
	URL      string        `conf:"node.url"`
	User     string        `conf:"node.user"`
	Password string        `conf:"node.password"`
	Timeout  time.Duration `conf:"node.timeout"`
	Retries  int           `conf:"node.retries"`
}

// WalletConfig selects the default wallet.
type WalletConfig struct {
	Name    string `conf:"wallet.name"`
	Account uint32 `conf:"wallet.account"`
}

// SendConfig holds send pipeline settings.
type SendConfig struct {
	// MaxAttempts is the number of polls made while waiting for the
	// first confirmation. The file key send.confirmations is an alias.
	MaxAttempts  int           `conf:"send.maxattempts"`
	PollInterval time.Duration `conf:"send.pollinterval"`
	Wait         bool          `conf:"send.wait"`
	ExpiryDelta  uint32        `conf:"send.expirydelta"`
}

// ConsensusConfig overrides the consensus branch id.
type ConsensusConfig struct {
	BranchID string `conf:"consensus.branchid"` // hex, empty = built-in
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// Params returns the network parameters for the configured network.
func (c *Config) Params() *params.Network {
	if c.Network == Testnet {
		return params.TestNet
	}
	return params.MainNet
}

// ConsensusParams returns the consensus parameters, applying the branch id
// override when one is set.
func (c *Config) ConsensusParams() (params.Consensus, error) {
	cp := params.Current()
	if c.Consensus.BranchID == "" {
		return cp, nil
	}
	id, err := params.ParseBranchID(c.Consensus.BranchID)
	if err != nil {
		return params.Consensus{}, fmt.Errorf("consensus.branchid: %w", err)
	}
	if id == cp.BranchID {
		return cp, nil
	}
	return cp.WithBranchID(id), nil
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.zecsend
//	macOS:   ~/Library/Application Support/Zecsend
//	Windows: %APPDATA%\Zecsend
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zecsend"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Zecsend")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Zecsend")
		}
		return filepath.Join(home, "AppData", "Roaming", "Zecsend")
	default:
		return filepath.Join(home, ".zecsend")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.ChainDataDir(), "keystore")
}

// PendingDir returns the pending-spend ledger database directory.
func (c *Config) PendingDir() string {
	return filepath.Join(c.ChainDataDir(), "pending")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "zecsend.conf")
}
