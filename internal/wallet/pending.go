package wallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Klingon-tech/zecsend/internal/log"
	"github.com/Klingon-tech/zecsend/internal/storage"
	"github.com/Klingon-tech/zecsend/pkg/tx"
	"github.com/Klingon-tech/zecsend/pkg/types"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Key prefixes of the pending ledger.
var (
	prefixOutpoint = []byte("o/") // o/<outpoint> -> txid
	prefixPending  = []byte("t/") // t/<txid> -> PendingTx JSON
)

// Ledger errors.
var (
	ErrAlreadyReserved = errors.New("outpoint already reserved by another transaction")
	ErrPendingNotFound = errors.New("pending transaction not found")
)

// PendingTx records a submitted transaction whose inputs must not be
// selected again until it confirms or can no longer be mined.
type PendingTx struct {
	TxID         string    `json:"txid"`
	Outpoints    []string  `json:"outpoints"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Amount       uint64    `json:"amount"`
	Fee          uint64    `json:"fee"`
	ExpiryHeight uint32    `json:"expiry_height"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPendingTx describes a signed transaction for the ledger.
func NewPendingTx(u *tx.Unsigned, signed *tx.Signed, from, to string, amount uint64) PendingTx {
	ops := make([]string, len(u.Inputs))
	for i, in := range u.Inputs {
		ops[i] = in.Outpoint().String()
	}
	return PendingTx{
		TxID:         signed.TxID.String(),
		Outpoints:    ops,
		From:         from,
		To:           to,
		Amount:       amount,
		Fee:          u.Fee,
		ExpiryHeight: u.Height,
		CreatedAt:    time.Now().UTC(),
	}
}

// Ledger tracks outpoints spent by unconfirmed transactions.
type Ledger struct {
	db storage.DB
}

// NewLedger creates a ledger over db. Callers namespace db per wallet.
func NewLedger(db storage.DB) *Ledger {
	return &Ledger{db: db}
}

func outpointKey(op types.Outpoint) []byte {
	return append(append([]byte{}, prefixOutpoint...), op.Bytes()...)
}

func pendingKey(txid chainhash.Hash) []byte {
	return append(append([]byte{}, prefixPending...), txid[:]...)
}

// Reserve records p and marks its outpoints as spent. Reserving the same
// transaction twice is a no-op.
func (l *Ledger) Reserve(p PendingTx) error {
	txid, err := types.ParseTxID(p.TxID)
	if err != nil {
		return err
	}
	ops := make([]types.Outpoint, len(p.Outpoints))
	for i, s := range p.Outpoints {
		if ops[i], err = types.ParseOutpoint(s); err != nil {
			return err
		}
		owner, err := l.db.Get(outpointKey(ops[i]))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("check outpoint %s: %w", s, err)
		}
		if !bytes.Equal(owner, txid[:]) {
			return fmt.Errorf("%w: %s", ErrAlreadyReserved, s)
		}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending tx: %w", err)
	}
	b := l.db.NewBatch()
	if err := b.Put(pendingKey(txid), data); err != nil {
		return err
	}
	for _, op := range ops {
		if err := b.Put(outpointKey(op), txid[:]); err != nil {
			return err
		}
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("reserve %s: %w", p.TxID, err)
	}
	log.Wallet.Debug().Str("txid", p.TxID).Int("outpoints", len(ops)).Msg("Reserved outpoints")
	return nil
}

// IsReserved reports whether op is spent by a pending transaction.
func (l *Ledger) IsReserved(op types.Outpoint) (bool, error) {
	return l.db.Has(outpointKey(op))
}

// Filter returns the UTXOs not reserved by a pending transaction.
func (l *Ledger) Filter(utxos []tx.UTXO) ([]tx.UTXO, error) {
	out := make([]tx.UTXO, 0, len(utxos))
	for _, u := range utxos {
		reserved, err := l.IsReserved(u.Outpoint())
		if err != nil {
			return nil, err
		}
		if !reserved {
			out = append(out, u)
		}
	}
	return out, nil
}

// Get returns the pending transaction with the given display-order txid.
func (l *Ledger) Get(txidStr string) (PendingTx, error) {
	txid, err := types.ParseTxID(txidStr)
	if err != nil {
		return PendingTx{}, err
	}
	data, err := l.db.Get(pendingKey(txid))
	if errors.Is(err, storage.ErrNotFound) {
		return PendingTx{}, fmt.Errorf("%w: %s", ErrPendingNotFound, txidStr)
	}
	if err != nil {
		return PendingTx{}, err
	}
	var p PendingTx
	if err := json.Unmarshal(data, &p); err != nil {
		return PendingTx{}, fmt.Errorf("parse pending tx %s: %w", txidStr, err)
	}
	return p, nil
}

// Release forgets a pending transaction and frees its outpoints.
func (l *Ledger) Release(txidStr string) error {
	p, err := l.Get(txidStr)
	if err != nil {
		return err
	}
	txid, _ := types.ParseTxID(p.TxID)

	b := l.db.NewBatch()
	if err := b.Delete(pendingKey(txid)); err != nil {
		return err
	}
	for _, s := range p.Outpoints {
		op, err := types.ParseOutpoint(s)
		if err != nil {
			return err
		}
		if err := b.Delete(outpointKey(op)); err != nil {
			return err
		}
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("release %s: %w", txidStr, err)
	}
	log.Wallet.Debug().Str("txid", txidStr).Msg("Released pending transaction")
	return nil
}

// ReleaseAll drops every reservation of the wallet in one batch and returns
// the number of pending transactions removed.
func (l *Ledger) ReleaseAll() (int, error) {
	var keys [][]byte
	n := 0
	for _, prefix := range [][]byte{prefixPending, prefixOutpoint} {
		err := l.db.ForEach(prefix, func(key, _ []byte) error {
			keys = append(keys, key)
			if bytes.Equal(prefix, prefixPending) {
				n++
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	b := l.db.NewBatch()
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := b.Commit(); err != nil {
		return 0, fmt.Errorf("release all: %w", err)
	}
	log.Wallet.Info().Int("count", n).Msg("Cleared pending ledger")
	return n, nil
}

// List returns all pending transactions, oldest first.
func (l *Ledger) List() ([]PendingTx, error) {
	var out []PendingTx
	err := l.db.ForEach(prefixPending, func(_, value []byte) error {
		var p PendingTx
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("parse pending tx: %w", err)
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Reconcile releases pending transactions that no longer need their
// reservation: those whose outpoints have all left the confirmed UTXO set
// (the transaction was mined) and those whose expiry height is below tip
// (the transaction can no longer be mined). It returns the released txids.
func (l *Ledger) Reconcile(utxos []tx.UTXO, tip uint32) ([]string, error) {
	unspent := make(map[string]bool, len(utxos))
	for _, u := range utxos {
		unspent[u.Outpoint().String()] = true
	}

	pending, err := l.List()
	if err != nil {
		return nil, err
	}
	var released []string
	for _, p := range pending {
		mined := true
		for _, op := range p.Outpoints {
			if unspent[op] {
				mined = false
				break
			}
		}
		expired := p.ExpiryHeight != 0 && tip > p.ExpiryHeight
		if !mined && !expired {
			continue
		}
		if err := l.Release(p.TxID); err != nil {
			return released, err
		}
		log.Wallet.Info().Str("txid", p.TxID).Bool("mined", mined).Bool("expired", expired).Msg("Pending transaction settled")
		released = append(released, p.TxID)
	}
	return released, nil
}
