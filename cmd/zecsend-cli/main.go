// zecsend-cli builds, signs and submits transparent Zcash transactions.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/Klingon-tech/zecsend/config"
	"github.com/Klingon-tech/zecsend/internal/gateway"
	"github.com/Klingon-tech/zecsend/internal/log"
	"github.com/Klingon-tech/zecsend/internal/rpcclient"
	"github.com/Klingon-tech/zecsend/internal/send"
	"github.com/Klingon-tech/zecsend/internal/storage"
	"github.com/Klingon-tech/zecsend/internal/wallet"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"golang.org/x/term"
)

const version = "0.1.0"

// app carries the resolved configuration shared by all commands.
type app struct {
	cfg *config.Config
	net *params.Network
	cp  params.Consensus
}

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if flags.Help {
		usage()
		return
	}
	if flags.Version {
		fmt.Printf("zecsend-cli version %s\n", version)
		return
	}
	if len(flags.Args) == 0 {
		usage()
		os.Exit(1)
	}

	if err := log.Init(log.Options{
		Level:   cfg.Log.Level,
		JSON:    cfg.Log.JSON,
		File:    cfg.Log.File,
		Network: string(cfg.Network),
	}); err != nil {
		fatal("init logging: %v", err)
	}

	cp, err := cfg.ConsensusParams()
	if err != nil {
		fatal("%v", err)
	}
	a := &app{cfg: cfg, net: cfg.Params(), cp: cp}
	log.CLI.Debug().
		Str("network", a.net.Name).
		Str("consensus", cp.String()).
		Str("node", cfg.Node.URL).
		Msg("Configuration loaded")

	cmd := flags.Args[0]
	cmdArgs := flags.Args[1:]

	switch cmd {
	case "validate":
		a.cmdValidate(cmdArgs)
	case "address":
		a.cmdAddress(cmdArgs)
	case "wallet":
		a.cmdWallet(cmdArgs)
	case "build":
		a.cmdBuild(cmdArgs)
	case "send":
		a.cmdSend(cmdArgs)
	case "balance":
		a.cmdBalance(cmdArgs)
	case "decode":
		a.cmdDecode(cmdArgs)
	case "status":
		a.cmdStatus(cmdArgs)
	case "pending":
		a.cmdPending(cmdArgs)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: zecsend-cli [global flags] <command> [flags]

Global flags:
  --network <net>       mainnet (default) or testnet
  --testnet             Shorthand for --network=testnet
  --datadir <path>      Data directory (default: ~/.zecsend)
  --config, -c <path>   Config file (default: <datadir>/zecsend.conf)
  --node <url>          Node JSON-RPC URL (mainnet: :8232, testnet: :18232)
  --rpcuser <user>      Node RPC user
  --rpcpassword <pw>    Node RPC password
  --timeout <dur>       Node RPC request timeout (default: 30s)
  --wallet <name>       Default wallet (default: "default")
  --account <n>         BIP-44 account for new wallets (default: 0)
  --branch-id <hex>     Consensus branch id override
  --log-level <lvl>     trace, debug, info (default), warn, error
  --log-file <path>     Also write logs to a file
  --log-json            Output logs as JSON

Commands:
  validate <address>              Check an address for the network
  address --key <hex>             Show the address of a private key
  address --new                   Generate a standalone key and its address
  address [--wallet <w>] [--index <n>] [--change]
                                  Show a wallet address and its path

  wallet create [--name <n>] [--words <12|24>]
                                  Create a new wallet
  wallet import [--name <n>] --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets
  wallet address [--wallet <w>]   List wallet addresses
  wallet new-address [--wallet <w>] [--label <l>]
                                  Derive the next receiving address

  build --from <a> --to <a> --amount <ZEC> --utxos <file.json> --height <h>
        [--memo <m>] [--key <hex>]
                                  Build (and optionally sign) offline
  send --to <addr> --amount <ZEC> [--wallet <w>] [--index <n>] [--memo <m>] [--wait]
                                  Build, sign and submit via the node
  balance [--wallet <w>] [--index <n>] | balance --address <a>
                                  Show spendable and pending balance
  decode <rawhex>                 Decode a raw transaction
  status <txid>                   Show confirmation count
  pending [--wallet <w>]          List pending spends
  pending clear <txid> | --all [--wallet <w>]
                                  Forget a pending spend
`)
}

// ── Shared plumbing ─────────────────────────────────────────────────────

func (a *app) keystore() *wallet.Keystore {
	ks, err := wallet.NewKeystore(a.cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	return ks
}

func (a *app) gateway() *gateway.Gateway {
	client := rpcclient.New(a.cfg.Node.URL,
		rpcclient.WithBasicAuth(a.cfg.Node.User, a.cfg.Node.Password),
		rpcclient.WithTimeout(a.cfg.Node.Timeout),
		rpcclient.WithRetries(a.cfg.Node.Retries),
	)
	return gateway.New(client, a.cfg.Send.PollInterval)
}

// ledger opens the pending-spend ledger of a wallet. The caller must call
// the returned close function.
func (a *app) ledger(walletName string) (*wallet.Ledger, func()) {
	db, err := storage.NewBadger(a.cfg.PendingDir())
	if err != nil {
		fatal("open pending ledger: %v", err)
	}
	ns := storage.NewNamespace(db, "w", walletName)
	return wallet.NewLedger(ns), func() {
		if err := db.Close(); err != nil {
			log.Storage.Warn().Err(err).Msg("Close pending ledger")
		}
	}
}

func (a *app) service(ledger *wallet.Ledger) *send.Service {
	return send.New(a.gateway(), ledger, send.Config{
		Network:     a.net,
		Consensus:   a.cp,
		ExpiryDelta: a.cfg.Send.ExpiryDelta,
		MaxAttempts: a.cfg.Send.MaxAttempts,
	})
}

func (a *app) openWallet(name string) *wallet.Wallet {
	password, err := readPassword(fmt.Sprintf("Password for wallet %q: ", name))
	if err != nil {
		fatal("read password: %v", err)
	}
	defer clear(password)

	w, err := wallet.Open(a.keystore(), name, password)
	if err != nil {
		fatal("open wallet: %v", err)
	}
	if w.Network != a.net {
		fatal("wallet %q is a %s wallet, running on %s", name, w.Network, a.net)
	}
	return w
}

func (a *app) walletName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.Wallet.Name
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	clear(confirm)
	if len(password) == 0 {
		fatal("password must not be empty")
	}
	return password
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
