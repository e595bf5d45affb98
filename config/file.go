package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(strings.ToLower(value))
	case "datadir":
		cfg.DataDir = value

	// Node
	case "node.url", "rpcurl":
		cfg.Node.URL = value
	case "node.user", "rpcuser":
		cfg.Node.User = value
	case "node.password", "rpcpassword":
		cfg.Node.Password = value
	case "node.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Node.Timeout = d
	case "node.retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Node.Retries = n

	// Wallet
	case "wallet.name", "wallet":
		cfg.Wallet.Name = value
	case "wallet.account":
		n, err := strconv.ParseUint(value, 10, 31)
		if err != nil {
			return err
		}
		cfg.Wallet.Account = uint32(n)

	// Send
	case "send.maxattempts", "send.confirmations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Send.MaxAttempts = n
	case "send.pollinterval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Send.PollInterval = d
	case "send.wait":
		cfg.Send.Wait = parseBool(value)
	case "send.expirydelta":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Send.ExpiryDelta = uint32(n)

	// Consensus
	case "consensus.branchid":
		cfg.Consensus.BranchID = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	cfg := Default(network)
	content := `# Zecsend Configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.zecsend)
# datadir = ~/.zecsend

# ============================================================================
# Node (zcashd JSON-RPC)
# ============================================================================

# Defaults to the local node for the selected network
# node.url = ` + cfg.Node.URL + `
# node.user =
# node.password =
node.timeout = ` + cfg.Node.Timeout.String() + `
node.retries = ` + strconv.Itoa(cfg.Node.Retries) + `

# ============================================================================
# Wallet
# ============================================================================

wallet.name = ` + cfg.Wallet.Name + `
wallet.account = 0

# ============================================================================
# Send
# ============================================================================

# Wait for the first confirmation after submitting
send.wait = false
# Confirmation polls and the interval between them
send.maxattempts = ` + strconv.Itoa(cfg.Send.MaxAttempts) + `
send.pollinterval = ` + cfg.Send.PollInterval.String() + `
# Blocks past the tip before an unmined transaction expires
send.expirydelta = ` + strconv.Itoa(int(cfg.Send.ExpiryDelta)) + `

# ============================================================================
# Consensus
# ============================================================================

# Consensus branch id override (hex), for a network upgrade not yet built in
# consensus.branchid = 4dec4df0

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
