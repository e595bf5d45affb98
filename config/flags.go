package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Flags holds parsed global command-line flags. Parsing stops at the first
// positional argument, which starts the subcommand.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Node
	Node        string
	RPCUser     string
	RPCPassword string
	Timeout     time.Duration

	// Wallet
	Wallet  string
	Account int

	// Consensus
	BranchID string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args (subcommand and its flags)
	Args []string

	// Explicitly-set flags (for zero-value overrides).
	SetAccount bool
	SetLogJSON bool
}

// ParseFlags parses the global flags in args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("zecsend-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var testnet bool

	// Commands (-h and --help are handled by the flag package)
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Node
	fs.StringVar(&f.Node, "node", "", "Node JSON-RPC URL")
	fs.StringVar(&f.RPCUser, "rpcuser", "", "Node RPC user")
	fs.StringVar(&f.RPCPassword, "rpcpassword", "", "Node RPC password")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Node RPC request timeout")

	// Wallet
	fs.StringVar(&f.Wallet, "wallet", "", "Default wallet name")
	fs.IntVar(&f.Account, "account", 0, "BIP-44 account of new wallets")

	// Consensus
	fs.StringVar(&f.BranchID, "branch-id", "", "Consensus branch id override (hex)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &Flags{Help: true}, nil
		}
		return nil, err
	}

	// Handle --testnet shorthand
	if testnet {
		f.Network = string(Testnet)
	}
	f.SetAccount = isFlagSet(fs, "account")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Node
	if f.Node != "" {
		cfg.Node.URL = f.Node
	}
	if f.RPCUser != "" {
		cfg.Node.User = f.RPCUser
	}
	if f.RPCPassword != "" {
		cfg.Node.Password = f.RPCPassword
	}
	if f.Timeout != 0 {
		cfg.Node.Timeout = f.Timeout
	}

	// Wallet
	if f.Wallet != "" {
		cfg.Wallet.Name = f.Wallet
	}
	if f.SetAccount && f.Account >= 0 {
		cfg.Wallet.Account = uint32(f.Account)
	}

	// Consensus
	if f.BranchID != "" {
		cfg.Consensus.BranchID = f.BranchID
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Load resolves the configuration for args with the following precedence:
// 1. Default values
// 2. Data dirs + default config file (created when missing)
// 3. Config file
// 4. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return nil, flags, nil
	}

	// Determine network first (needed for defaults)
	network := Mainnet
	if strings.EqualFold(flags.Network, string(Testnet)) {
		network = Testnet
	}

	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	// A network switch in the file re-bases the node URL default.
	if n, ok := fileValues["network"]; ok && flags.Network == "" && NetworkType(strings.ToLower(n)) != cfg.Network {
		dataDir := cfg.DataDir
		cfg = Default(NetworkType(strings.ToLower(n)))
		cfg.DataDir = dataDir
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory and a default config file if
// they don't already exist. It is idempotent.
func EnsureDataDirs(cfg *Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("creating directory %s: %w", cfg.DataDir, err)
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
