// Package gateway talks to a zcashd-compatible node: it submits raw
// transactions, polls for confirmations and fetches the chain tip and
// address UTXOs.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/zecsend/internal/log"
	"github.com/Klingon-tech/zecsend/internal/rpcclient"
	"github.com/Klingon-tech/zecsend/pkg/tx"
)

// Polling defaults for WaitForConfirmation.
const (
	DefaultPollInterval = time.Second
	DefaultMaxAttempts  = 30
)

// rpcNoTxInfo is the code zcashd returns while a transaction is unknown to it.
const rpcNoTxInfo = -5

// ErrNotConfirmed is returned when the attempt budget runs out before the
// transaction gains a confirmation.
var ErrNotConfirmed = errors.New("transaction not confirmed")

// Caller is the JSON-RPC transport used by Gateway.
type Caller interface {
	Call(ctx context.Context, method string, params []any, result any) error
}

// Gateway is a Node Gateway backed by JSON-RPC.
type Gateway struct {
	rpc          Caller
	pollInterval time.Duration
}

// New creates a gateway over rpc. A non-positive pollInterval selects
// DefaultPollInterval.
func New(rpc Caller, pollInterval time.Duration) *Gateway {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Gateway{rpc: rpc, pollInterval: pollInterval}
}

// Submit broadcasts a raw transaction and returns the txid reported by the node.
func (g *Gateway) Submit(ctx context.Context, rawHex string) (string, error) {
	var txid string
	if err := g.rpc.Call(ctx, "sendrawtransaction", []any{rawHex}, &txid); err != nil {
		return "", fmt.Errorf("sendrawtransaction: %w", err)
	}
	log.Gateway.Info().Str("txid", txid).Msg("Transaction submitted")
	return txid, nil
}

// Confirmations returns the confirmation count of txid. A transaction the
// node has not seen reports zero.
func (g *Gateway) Confirmations(ctx context.Context, txid string) (int64, error) {
	var res struct {
		Confirmations int64 `json:"confirmations"`
	}
	err := g.rpc.Call(ctx, "getrawtransaction", []any{txid, 1}, &res)
	var rpcErr *rpcclient.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == rpcNoTxInfo {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getrawtransaction %s: %w", txid, err)
	}
	return res.Confirmations, nil
}

// WaitForConfirmation polls Confirmations until it is positive, checking at
// most maxAttempts times (DefaultMaxAttempts when maxAttempts <= 0).
func (g *Gateway) WaitForConfirmation(ctx context.Context, txid string, maxAttempts int) (int64, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		n, err := g.Confirmations(ctx, txid)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			log.Gateway.Info().Str("txid", txid).Int64("confirmations", n).Msg("Transaction confirmed")
			return n, nil
		}
		if attempt >= maxAttempts {
			return 0, fmt.Errorf("%w: %s after %d attempts", ErrNotConfirmed, txid, maxAttempts)
		}
		log.Gateway.Debug().Str("txid", txid).Int("attempt", attempt).Msg("Waiting for confirmation")

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// BlockHeight returns the height of the node's best chain.
func (g *Gateway) BlockHeight(ctx context.Context) (uint32, error) {
	var height uint32
	if err := g.rpc.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, fmt.Errorf("getblockcount: %w", err)
	}
	return height, nil
}

// AddressUTXOs returns the unspent transparent outputs of addr. The node
// must run with -addressindex.
func (g *Gateway) AddressUTXOs(ctx context.Context, addr string) ([]tx.UTXO, error) {
	var utxos []tx.UTXO
	arg := map[string][]string{"addresses": {addr}}
	if err := g.rpc.Call(ctx, "getaddressutxos", []any{arg}, &utxos); err != nil {
		return nil, fmt.Errorf("getaddressutxos %s: %w", addr, err)
	}
	log.Gateway.Debug().Str("address", addr).Int("utxos", len(utxos)).Msg("Fetched UTXOs")
	return utxos, nil
}
