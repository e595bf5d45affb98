// Package send runs the full payment pipeline: it fetches the chain tip and
// the sender's UTXOs from a node, drops outpoints held by pending
// transactions, builds and signs the transaction, submits it and records the
// spend in the pending ledger.
package send

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/internal/log"
	"github.com/Klingon-tech/zecsend/internal/rpcclient"
	"github.com/Klingon-tech/zecsend/internal/wallet"
	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/tx"
)

// DefaultExpiryDelta is the number of blocks past the tip a transaction
// stays minable. It matches zcashd's default expiry delta.
const DefaultExpiryDelta = 40

var (
	// ErrTxIDMismatch is returned when the node reports a different txid
	// than the one computed locally.
	ErrTxIDMismatch = errors.New("node txid does not match local txid")
	// ErrNoUTXOs is returned when the sender has nothing spendable.
	ErrNoUTXOs = errors.New("no spendable outputs")
)

// Node is the subset of the node gateway used by the pipeline.
type Node interface {
	BlockHeight(ctx context.Context) (uint32, error)
	AddressUTXOs(ctx context.Context, addr string) ([]tx.UTXO, error)
	Submit(ctx context.Context, rawHex string) (string, error)
	WaitForConfirmation(ctx context.Context, txid string, maxAttempts int) (int64, error)
}

// Config holds the pipeline settings.
type Config struct {
	Network     *params.Network
	Consensus   params.Consensus
	ExpiryDelta uint32
	// MaxAttempts bounds confirmation polling when a send waits.
	MaxAttempts int
}

// Service sends payments through a node.
type Service struct {
	node   Node
	ledger *wallet.Ledger
	cfg    Config
}

// New creates a Service. Zero config fields take their defaults.
func New(node Node, ledger *wallet.Ledger, cfg Config) *Service {
	if cfg.Network == nil {
		cfg.Network = params.MainNet
	}
	if cfg.Consensus == (params.Consensus{}) {
		cfg.Consensus = params.Current()
	}
	if cfg.ExpiryDelta == 0 {
		cfg.ExpiryDelta = DefaultExpiryDelta
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 30
	}
	return &Service{node: node, ledger: ledger, cfg: cfg}
}

// Request describes one payment. Key must control From.
type Request struct {
	Key    crypto.Signer
	From   string
	To     string
	Amount uint64
	Memo   string
	// Wait blocks until the transaction has a confirmation.
	Wait bool
}

// Result reports a submitted payment.
type Result struct {
	TxID          string `json:"txid"`
	Raw           string `json:"raw"`
	Fee           uint64 `json:"fee"`
	Change        uint64 `json:"change"`
	Inputs        int    `json:"inputs"`
	TipHeight     uint32 `json:"tip_height"`
	ExpiryHeight  uint32 `json:"expiry_height"`
	Confirmations int64  `json:"confirmations"`
}

// Spendable returns the UTXOs of addr that no pending transaction holds,
// settling finished pending transactions first. It also returns the tip.
func (s *Service) Spendable(ctx context.Context, addr string) ([]tx.UTXO, uint32, error) {
	utxos, tip, err := s.refresh(ctx, addr)
	if err != nil {
		return nil, 0, err
	}
	free, err := s.ledger.Filter(utxos)
	if err != nil {
		return nil, 0, fmt.Errorf("filter pending: %w", err)
	}
	return free, tip, nil
}

// Balance returns the spendable and reserved balance of addr.
func (s *Service) Balance(ctx context.Context, addr string) (wallet.Balance, error) {
	utxos, _, err := s.refresh(ctx, addr)
	if err != nil {
		return wallet.Balance{}, err
	}
	return wallet.ComputeBalance(utxos, s.ledger)
}

func (s *Service) refresh(ctx context.Context, addr string) ([]tx.UTXO, uint32, error) {
	if !address.IsValid(addr, s.cfg.Network.PubKeyHashAddrID) {
		return nil, 0, fmt.Errorf("%w: %q on %s", tx.ErrInvalidFrom, addr, s.cfg.Network)
	}
	tip, err := s.node.BlockHeight(ctx)
	if err != nil {
		return nil, 0, err
	}
	utxos, err := s.node.AddressUTXOs(ctx, addr)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.ledger.Reconcile(utxos, tip); err != nil {
		return nil, 0, fmt.Errorf("reconcile pending: %w", err)
	}
	return utxos, tip, nil
}

// Send builds, signs and submits a payment.
func (s *Service) Send(ctx context.Context, req Request) (*Result, error) {
	if req.Key == nil {
		return nil, errors.New("send: signing key required")
	}
	utxos, tip, err := s.Spendable(ctx, req.From)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoUTXOs, req.From)
	}

	expiry := tip + s.cfg.ExpiryDelta
	unsigned, err := tx.Build(tx.BuildParams{
		Height:  expiry,
		From:    req.From,
		To:      req.To,
		Amount:  req.Amount,
		UTXOs:   utxos,
		Network: s.cfg.Network,
		Memo:    req.Memo,
	})
	if err != nil {
		return nil, err
	}
	// The node's UTXO index is not trusted to stay on our network.
	if err := unsigned.ValidateForNetwork(s.cfg.Network); err != nil {
		return nil, err
	}
	signed, err := tx.Sign(unsigned, req.Key, s.cfg.Consensus)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	localID := signed.TxID.String()

	// Reserve before broadcasting so a concurrent send cannot pick the
	// same outpoints.
	pending := wallet.NewPendingTx(unsigned, signed, req.From, req.To, req.Amount)
	if err := s.ledger.Reserve(pending); err != nil {
		return nil, err
	}

	rawHex := hex.EncodeToString(signed.Raw)
	nodeID, err := s.node.Submit(ctx, rawHex)
	if err != nil {
		// A node rejection is final. Anything else may have reached the
		// node, so the reservation stays until it expires.
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) {
			if relErr := s.ledger.Release(localID); relErr != nil {
				log.Send.Warn().Err(relErr).Str("txid", localID).Msg("Release after rejection failed")
			}
		}
		return nil, err
	}
	if nodeID != localID {
		log.Send.Error().Str("local", localID).Str("node", nodeID).Msg("Txid mismatch")
		return nil, fmt.Errorf("%w: local %s, node %s", ErrTxIDMismatch, localID, nodeID)
	}

	res := &Result{
		TxID:         localID,
		Raw:          rawHex,
		Fee:          unsigned.Fee,
		Change:       unsigned.Outputs[0].Value,
		Inputs:       len(unsigned.Inputs),
		TipHeight:    tip,
		ExpiryHeight: expiry,
	}
	log.Send.Info().
		Str("txid", localID).
		Str("to", req.To).
		Uint64("amount", req.Amount).
		Uint64("fee", res.Fee).
		Uint32("expiry", expiry).
		Msg("Payment submitted")

	if !req.Wait {
		return res, nil
	}
	conf, err := s.node.WaitForConfirmation(ctx, localID, s.cfg.MaxAttempts)
	if err != nil {
		return res, err
	}
	res.Confirmations = conf
	return res, nil
}
