package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/zecsend/internal/wallet"
	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
)

// ── validate ────────────────────────────────────────────────────────────

func (a *app) cmdValidate(args []string) {
	if len(args) != 1 {
		fatal("Usage: zecsend-cli validate <address>")
	}
	addr := args[0]
	if address.IsValid(addr, a.net.PubKeyHashAddrID) {
		fmt.Printf("valid (%s)\n", a.net)
		return
	}
	fmt.Printf("invalid: %s\n", invalidReason(addr, a.net))
	os.Exit(1)
}

// invalidReason explains why addr is not a valid P2PKH address on net.
func invalidReason(addr string, net *params.Network) string {
	decoded, err := address.Decode(addr)
	if err != nil {
		return err.Error()
	}
	if other, ok := decoded.Network(); ok {
		return fmt.Sprintf("address is for %s, not %s", other, net)
	}
	if decoded.Prefix == net.ScriptHashAddrID {
		return "pay-to-script-hash addresses are not supported"
	}
	return fmt.Sprintf("unknown address prefix %x", decoded.Prefix)
}

// ── address ─────────────────────────────────────────────────────────────

func (a *app) cmdAddress(args []string) {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	keyHex := fs.String("key", "", "Private key (hex)")
	walletName := fs.String("wallet", "", "Wallet name")
	index := fs.Uint("index", 0, "Address index")
	change := fs.Bool("change", false, "Use the internal (change) chain")
	generate := fs.Bool("new", false, "Generate a fresh standalone key")
	fs.Parse(args)

	if *generate {
		key, err := crypto.GenerateKey()
		if err != nil {
			fatal("generate key: %v", err)
		}
		defer key.Zero()
		secret := key.Serialize()
		defer clear(secret)
		fmt.Printf("Address: %s\n", address.FromPublicKey(key.PublicKey(), a.net.PubKeyHashAddrID).String())
		fmt.Printf("Key:     %x\n", secret)
		return
	}

	if *keyHex != "" {
		priv, err := hex.DecodeString(strings.TrimSpace(*keyHex))
		if err != nil {
			fatal("invalid key hex: %v", err)
		}
		defer clear(priv)
		addr, err := address.FromPrivateKey(priv, a.net.PubKeyHashAddrID)
		if err != nil {
			fatal("derive address: %v", err)
		}
		fmt.Println(addr)
		return
	}

	name := a.walletName(*walletName)
	w := a.openWallet(name)
	chain := uint32(wallet.ChangeExternal)
	if *change {
		chain = wallet.ChangeInternal
	}
	addr, err := w.Address(chain, uint32(*index))
	if err != nil {
		fatal("derive address: %v", err)
	}
	fmt.Printf("Address: %s\n", addr)
	fmt.Printf("Path:    %s\n", w.Path(chain, uint32(*index)))
}

// ── wallet ──────────────────────────────────────────────────────────────

func (a *app) cmdWallet(args []string) {
	if len(args) < 1 {
		fatal("Usage: zecsend-cli wallet <create|import|list|address|new-address> [flags]")
	}

	switch args[0] {
	case "create":
		a.cmdWalletCreate(args[1:])
	case "import":
		a.cmdWalletImport(args[1:])
	case "list":
		a.cmdWalletList()
	case "address":
		a.cmdWalletAddress(args[1:])
	case "new-address":
		a.cmdWalletNewAddress(args[1:])
	default:
		fatal("Unknown wallet command: %s\nUsage: zecsend-cli wallet <create|import|list|address|new-address> [flags]", args[0])
	}
}

func (a *app) cmdWalletCreate(args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", a.cfg.Wallet.Name, "Wallet name")
	words := fs.Int("words", 24, "Mnemonic length (12, 15, 18, 21 or 24 words)")
	fs.Parse(args)

	mnemonic, err := wallet.GenerateMnemonic(*words)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	password := readNewPassword()
	defer clear(password)

	w, err := wallet.Create(a.keystore(), *name, a.net, a.cfg.Wallet.Account, mnemonic, "", password, wallet.DefaultParams())
	if err != nil {
		fatal("create wallet: %v", err)
	}
	a.printFirstAddress(w, "created")
}

func (a *app) cmdWalletImport(args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", a.cfg.Wallet.Name, "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	passphrase := fs.String("passphrase", "", "Optional BIP-39 passphrase")
	fs.Parse(args)

	if *mnemonic == "" {
		fatal("Usage: zecsend-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	password := readNewPassword()
	defer clear(password)

	w, err := wallet.Create(a.keystore(), *name, a.net, a.cfg.Wallet.Account, *mnemonic, *passphrase, password, wallet.DefaultParams())
	if err != nil {
		fatal("import wallet: %v", err)
	}
	a.printFirstAddress(w, "imported")
}

func (a *app) printFirstAddress(w *wallet.Wallet, verb string) {
	addr, err := w.Address(wallet.ChangeExternal, 0)
	if err != nil {
		fatal("derive address: %v", err)
	}
	fmt.Printf("\nWallet %s: %s (%s, account %d)\n", verb, w.Name, w.Network, w.Account)
	fmt.Printf("Address: %s\n", addr)
	fmt.Printf("Path:    %s\n", w.Path(wallet.ChangeExternal, 0))
}

func (a *app) cmdWalletList() {
	ks := a.keystore()
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	for _, name := range names {
		info, err := ks.Info(name)
		if err != nil {
			fmt.Printf("%-20s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%-20s %-8s account %d, %d addresses, created %s\n",
			name, info.Network, info.Account, len(info.Addresses), info.CreatedAt.Format("2006-01-02"))
	}
}

func (a *app) cmdWalletAddress(args []string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	name := a.walletName(*walletName)
	info, err := a.keystore().Info(name)
	if err != nil {
		fatal("wallet info: %v", err)
	}

	if len(info.Addresses) == 0 {
		fmt.Println("No addresses found.")
		return
	}

	net, err := params.NetworkByName(info.Network)
	if err != nil {
		fatal("wallet %q: %v", name, err)
	}
	for _, e := range info.Addresses {
		path := wallet.DerivationPath(net, info.Account, e.Change, e.Index)
		fmt.Printf("  %-22s %s  %s\n", path, e.Address, e.Label)
	}
}

func (a *app) cmdWalletNewAddress(args []string) {
	fs := flag.NewFlagSet("wallet new-address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	label := fs.String("label", "", "Address label")
	fs.Parse(args)

	w := a.openWallet(a.walletName(*walletName))
	entry, err := w.NewAddress(*label)
	if err != nil {
		fatal("new address: %v", err)
	}
	fmt.Printf("Address: %s\n", entry.Address)
	fmt.Printf("Path:    %s\n", w.Path(entry.Change, entry.Index))
}
