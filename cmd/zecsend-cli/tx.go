package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/Klingon-tech/zecsend/internal/send"
	"github.com/Klingon-tech/zecsend/internal/wallet"
	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/script"
	"github.com/Klingon-tech/zecsend/pkg/tx"
	"github.com/Klingon-tech/zecsend/pkg/types"
)

// commandContext returns a context cancelled on Ctrl-C.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// ── build ───────────────────────────────────────────────────────────────

func (a *app) cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	from := fs.String("from", "", "Sender (change) address")
	to := fs.String("to", "", "Recipient address")
	amountStr := fs.String("amount", "", "Amount in ZEC (e.g. 0.5)")
	memo := fs.String("memo", "", "Optional memo (max 80 bytes)")
	utxoFile := fs.String("utxos", "", "JSON file with the sender's UTXOs (- for stdin)")
	height := fs.Uint("height", 0, "Block height, used as expiry height")
	keyHex := fs.String("key", "", "Private key (hex) to sign with")
	fs.Parse(args)

	if *from == "" || *to == "" || *amountStr == "" || *utxoFile == "" || *height == 0 {
		fatal("Usage: zecsend-cli build --from <addr> --to <addr> --amount <ZEC> --utxos <file.json> --height <h> [--memo <m>] [--key <hex>]")
	}
	expiry, err := blockHeight(*height)
	if err != nil {
		fatal("%v", err)
	}
	amount, err := types.ParseAmount(*amountStr)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	utxos, err := loadUTXOs(*utxoFile)
	if err != nil {
		fatal("load utxos: %v", err)
	}

	unsigned, err := tx.Build(tx.BuildParams{
		Height:  expiry,
		From:    *from,
		To:      *to,
		Amount:  amount,
		UTXOs:   utxos,
		Network: a.net,
		Memo:    *memo,
	})
	if err != nil {
		fatal("build: %v", err)
	}
	if err := unsigned.ValidateForNetwork(a.net); err != nil {
		fatal("build: %v", err)
	}

	if *keyHex == "" {
		printJSON(unsigned)
		return
	}

	raw, err := tx.SignAndFinalize(strings.TrimSpace(*keyHex), unsigned.Inputs, unsigned.Outputs, unsigned.Height, a.cp)
	if err != nil {
		fatal("sign: %v", err)
	}
	decoded, err := tx.Decode(raw)
	if err != nil {
		fatal("decode signed transaction: %v", err)
	}
	printJSON(struct {
		*tx.Unsigned
		TxID string `json:"txid"`
		Raw  string `json:"raw"`
	}{unsigned, decoded.TxID().String(), hex.EncodeToString(raw)})
}

// blockHeight narrows a --height flag value to a block height.
func blockHeight(h uint) (uint32, error) {
	if uint64(h) > math.MaxUint32 {
		return 0, fmt.Errorf("height %d out of range (max %d)", h, uint32(math.MaxUint32))
	}
	return uint32(h), nil
}

// loadUTXOs reads a JSON array of UTXOs from path, or stdin for "-".
func loadUTXOs(path string) ([]tx.UTXO, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var utxos []tx.UTXO
	if err := json.NewDecoder(r).Decode(&utxos); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return utxos, nil
}

// ── send ────────────────────────────────────────────────────────────────

func (a *app) cmdSend(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	index := fs.Uint("index", 0, "Sending address index")
	to := fs.String("to", "", "Recipient address")
	amountStr := fs.String("amount", "", "Amount in ZEC (e.g. 0.5)")
	memo := fs.String("memo", "", "Optional memo (max 80 bytes)")
	wait := fs.Bool("wait", a.cfg.Send.Wait, "Wait for the first confirmation")
	fs.Parse(args)

	if *to == "" || *amountStr == "" {
		fatal("Usage: zecsend-cli send --to <addr> --amount <ZEC> [--wallet <w>] [--index <n>] [--memo <m>] [--wait]")
	}
	amount, err := types.ParseAmount(*amountStr)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	if !address.IsValid(*to, a.net.PubKeyHashAddrID) {
		fatal("invalid recipient address: %s", invalidReason(*to, a.net))
	}

	name := a.walletName(*walletName)
	w := a.openWallet(name)
	key, err := w.Key(wallet.ChangeExternal, uint32(*index))
	if err != nil {
		fatal("derive key: %v", err)
	}
	defer key.Zero()
	from, err := w.Address(wallet.ChangeExternal, uint32(*index))
	if err != nil {
		fatal("derive address: %v", err)
	}

	ledger, closeLedger := a.ledger(name)
	defer closeLedger()

	ctx, cancel := commandContext()
	defer cancel()

	res, err := a.service(ledger).Send(ctx, send.Request{
		Key:    key,
		From:   from,
		To:     *to,
		Amount: amount,
		Memo:   *memo,
		Wait:   *wait,
	})
	if res != nil {
		fmt.Printf("Submitted: %s\n", res.TxID)
		fmt.Printf("Fee:       %s ZEC\n", types.FormatAmount(res.Fee))
		fmt.Printf("Change:    %s ZEC\n", types.FormatAmount(res.Change))
		fmt.Printf("Expiry:    %d (tip %d)\n", res.ExpiryHeight, res.TipHeight)
		if res.Confirmations > 0 {
			fmt.Printf("Confirmed: %d confirmation(s)\n", res.Confirmations)
		}
	}
	if err != nil {
		var short *tx.InsufficientFundsError
		if errors.As(err, &short) {
			fatal("insufficient funds: have %s ZEC, need %s ZEC",
				types.FormatAmount(short.Have), types.FormatAmount(short.Need))
		}
		fatal("send: %v", err)
	}
}

// ── balance ─────────────────────────────────────────────────────────────

func (a *app) cmdBalance(args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	index := fs.Uint("index", 0, "Address index")
	addrFlag := fs.String("address", "", "Address to inspect instead of a wallet address")
	fs.Parse(args)

	name := a.walletName(*walletName)
	addr := *addrFlag
	if addr == "" {
		info, err := a.keystore().Info(name)
		if err != nil {
			fatal("wallet info: %v", err)
		}
		addr = findAddress(info.Addresses, uint32(*index))
		if addr == "" {
			fatal("address index %d of wallet %q is not recorded; use 'wallet new-address' or --address", *index, name)
		}
	}

	ledger, closeLedger := a.ledger(name)
	defer closeLedger()

	ctx, cancel := commandContext()
	defer cancel()

	bal, err := a.service(ledger).Balance(ctx, addr)
	if err != nil {
		fatal("balance: %v", err)
	}
	fmt.Printf("Address:   %s\n", addr)
	fmt.Printf("Spendable: %s ZEC\n", types.FormatAmount(bal.Spendable))
	fmt.Printf("Pending:   %s ZEC\n", types.FormatAmount(bal.Reserved))
	fmt.Printf("Total:     %s ZEC (%d outputs)\n", types.FormatAmount(bal.Total()), bal.UTXOs)
}

func findAddress(entries []wallet.AddressEntry, index uint32) string {
	for _, e := range entries {
		if e.Change == wallet.ChangeExternal && e.Index == index {
			return e.Address
		}
	}
	return ""
}

// ── decode ──────────────────────────────────────────────────────────────

func (a *app) cmdDecode(args []string) {
	if len(args) != 1 {
		fatal("Usage: zecsend-cli decode <rawhex>")
	}
	d, err := tx.DecodeHex(strings.TrimSpace(args[0]))
	if err != nil {
		fatal("decode: %v", err)
	}
	fmt.Print(formatDecoded(d, a.net))
}

// formatDecoded renders a decoded transaction for display.
func formatDecoded(d *tx.Decoded, net *params.Network) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TxID:      %s\n", d.TxID())
	fmt.Fprintf(&b, "Version:   %d (group %08x)\n", d.Version, d.VersionGroupID)
	fmt.Fprintf(&b, "Consensus: %s\n", d.Consensus())
	fmt.Fprintf(&b, "LockTime:  %d\n", d.LockTime)
	fmt.Fprintf(&b, "Expiry:    %d\n", d.ExpiryHeight)

	fmt.Fprintf(&b, "Inputs:    %d\n", len(d.Inputs))
	for i, in := range d.Inputs {
		fmt.Fprintf(&b, "  [%d] %s seq=%08x\n", i, in.PrevOut, in.Sequence)
		if _, _, pub, ok := script.ExtractSigAndPubKey(in.SigScript); ok {
			fmt.Fprintf(&b, "      signer %s\n", address.FromPublicKey(pub, net.PubKeyHashAddrID))
		}
		fmt.Fprintf(&b, "      %s\n", script.Disasm(in.SigScript))
	}

	fmt.Fprintf(&b, "Outputs:   %d\n", len(d.Outputs))
	for i, out := range d.Outputs {
		fmt.Fprintf(&b, "  [%d] %s ZEC", i, types.FormatAmount(out.Value))
		if hash, ok := script.ExtractPubKeyHash(out.PkScript); ok {
			fmt.Fprintf(&b, " -> %s", address.Encode(hash, net.PubKeyHashAddrID))
		} else if memo, ok := script.ExtractMemo(out.PkScript); ok {
			fmt.Fprintf(&b, " memo %q", memo)
		}
		fmt.Fprintf(&b, "\n      %s\n", script.Disasm(out.PkScript))
	}
	if total, err := d.TotalOutputValue(); err == nil {
		fmt.Fprintf(&b, "Total out: %s ZEC\n", types.FormatAmount(total))
	}
	return b.String()
}

// ── status ──────────────────────────────────────────────────────────────

func (a *app) cmdStatus(args []string) {
	if len(args) != 1 {
		fatal("Usage: zecsend-cli status <txid>")
	}
	if _, err := types.ParseTxID(args[0]); err != nil {
		fatal("%v", err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	gw := a.gateway()
	conf, err := gw.Confirmations(ctx, args[0])
	if err != nil {
		fatal("status: %v", err)
	}
	height, err := gw.BlockHeight(ctx)
	if err != nil {
		fatal("status: %v", err)
	}
	fmt.Printf("TxID:          %s\n", args[0])
	fmt.Printf("Confirmations: %d\n", conf)
	fmt.Printf("Tip:           %d\n", height)
}

// ── pending ─────────────────────────────────────────────────────────────

func (a *app) cmdPending(args []string) {
	if len(args) > 0 && args[0] == "clear" {
		a.cmdPendingClear(args[1:])
		return
	}

	fs := flag.NewFlagSet("pending", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	ledger, closeLedger := a.ledger(a.walletName(*walletName))
	defer closeLedger()

	list, err := ledger.List()
	if err != nil {
		fatal("list pending: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("No pending transactions.")
		return
	}
	for _, p := range list {
		fmt.Printf("%s  %s ZEC -> %s  fee %s  expiry %d  inputs %d  (%s)\n",
			p.TxID, types.FormatAmount(p.Amount), p.To, types.FormatAmount(p.Fee),
			p.ExpiryHeight, len(p.Outpoints), p.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (a *app) cmdPendingClear(args []string) {
	fs := flag.NewFlagSet("pending clear", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	all := fs.Bool("all", false, "Release every pending transaction of the wallet")
	fs.Parse(args)

	if *all == (fs.NArg() == 1) {
		fatal("Usage: zecsend-cli pending clear <txid> | --all [--wallet <w>]")
	}

	ledger, closeLedger := a.ledger(a.walletName(*walletName))
	defer closeLedger()

	if *all {
		n, err := ledger.ReleaseAll()
		if err != nil {
			fatal("clear: %v", err)
		}
		fmt.Printf("Released %d pending transaction(s)\n", n)
		return
	}

	txid := fs.Arg(0)
	if err := ledger.Release(txid); err != nil {
		fatal("clear: %v", err)
	}
	fmt.Printf("Released %s\n", txid)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode output: %v", err)
	}
}
