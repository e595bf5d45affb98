package config

import (
	"fmt"
	"net/url"

	"github.com/Klingon-tech/zecsend/internal/log"
	"github.com/Klingon-tech/zecsend/pkg/params"
)

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}

	if cfg.Node.URL == "" {
		return fmt.Errorf("node.url must not be empty")
	}
	u, err := url.Parse(cfg.Node.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("node.url must be an http(s) URL, got %q", cfg.Node.URL)
	}
	if cfg.Node.Timeout <= 0 {
		return fmt.Errorf("node.timeout must be positive")
	}
	if cfg.Node.Retries < 1 {
		return fmt.Errorf("node.retries must be at least 1")
	}

	if cfg.Send.MaxAttempts < 1 {
		return fmt.Errorf("send.maxattempts must be at least 1")
	}
	if cfg.Send.PollInterval <= 0 {
		return fmt.Errorf("send.pollinterval must be positive")
	}
	if cfg.Send.ExpiryDelta < 4 {
		// zcashd rejects transactions expiring within 3 blocks of the tip.
		return fmt.Errorf("send.expirydelta must be at least 4")
	}
	if cfg.Wallet.Account >= 1<<31 {
		return fmt.Errorf("wallet.account must be below 2^31")
	}

	if cfg.Consensus.BranchID != "" {
		if _, err := params.ParseBranchID(cfg.Consensus.BranchID); err != nil {
			return fmt.Errorf("consensus.branchid: %w", err)
		}
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a valid level", cfg.Log.Level)
	}

	return nil
}
