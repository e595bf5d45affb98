// Package tx builds, prices, signs and serializes transparent Zcash v5
// transactions.
package tx

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Klingon-tech/zecsend/pkg/script"
	"github.com/Klingon-tech/zecsend/pkg/types"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// UTXO is a spendable transparent output controlled by Address.
// TxID is held in wire byte order.
type UTXO struct {
	Address string
	TxID    chainhash.Hash
	Index   uint32
	Value   uint64
}

// utxoJSON matches the UTXO shape returned by node and indexer APIs.
type utxoJSON struct {
	Address     string `json:"address"`
	TxID        string `json:"txid"`
	OutputIndex uint32 `json:"outputIndex"`
	Satoshis    uint64 `json:"satoshis"`
}

// MarshalJSON encodes the UTXO with its txid in display order.
func (u UTXO) MarshalJSON() ([]byte, error) {
	return json.Marshal(utxoJSON{
		Address:     u.Address,
		TxID:        u.TxID.String(),
		OutputIndex: u.Index,
		Satoshis:    u.Value,
	})
}

// UnmarshalJSON decodes a UTXO with a display-order txid.
func (u *UTXO) UnmarshalJSON(data []byte) error {
	var j utxoJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	txid, err := types.ParseTxID(j.TxID)
	if err != nil {
		return err
	}
	*u = UTXO{Address: j.Address, TxID: txid, Index: j.OutputIndex, Value: j.Satoshis}
	return nil
}

// Outpoint returns the previous output this UTXO refers to.
func (u UTXO) Outpoint() types.Outpoint {
	return types.Outpoint{TxID: u.TxID, Index: u.Index}
}

// OutputKind distinguishes value outputs from memo outputs.
type OutputKind uint8

const (
	// OutputPKH pays Value to a P2PKH address.
	OutputPKH OutputKind = iota
	// OutputMemo is a zero-value OP_RETURN output carrying Memo.
	OutputMemo
)

// String returns the kind name used in JSON.
func (k OutputKind) String() string {
	switch k {
	case OutputPKH:
		return "pkh"
	case OutputMemo:
		return "op_return"
	default:
		return fmt.Sprintf("OutputKind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutputKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutputKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pkh":
		*k = OutputPKH
	case "op_return":
		*k = OutputMemo
	default:
		return fmt.Errorf("unknown output kind %q", b)
	}
	return nil
}

// Output is a transaction output.
type Output struct {
	Kind    OutputKind `json:"type"`
	Address string     `json:"address,omitempty"`
	Value   uint64     `json:"amount"`
	Memo    string     `json:"memo,omitempty"`
}

// PayTo returns a P2PKH output.
func PayTo(addr string, value uint64) Output {
	return Output{Kind: OutputPKH, Address: addr, Value: value}
}

// MemoOutput returns an OP_RETURN output carrying memo.
func MemoOutput(memo string) Output {
	return Output{Kind: OutputMemo, Memo: memo}
}

// Script returns the locking script of the output. The address of a PKH
// output must already have been validated.
func (o Output) Script() []byte {
	if o.Kind == OutputMemo {
		return script.MemoScript([]byte(o.Memo))
	}
	return script.MustLockingScript(o.Address)
}

// Unsigned is a fee-balanced transaction ready for signing.
// Height is used as the expiry height.
type Unsigned struct {
	Height  uint32   `json:"height"`
	Inputs  []UTXO   `json:"inputs"`
	Outputs []Output `json:"outputs"`
	Fee     uint64   `json:"fee"`
}

// TotalInputValue returns the sum of the input values.
func (u *Unsigned) TotalInputValue() (uint64, error) {
	return sumValues(len(u.Inputs), func(i int) uint64 { return u.Inputs[i].Value })
}

// TotalOutputValue returns the sum of the output values.
func (u *Unsigned) TotalOutputValue() (uint64, error) {
	return sumValues(len(u.Outputs), func(i int) uint64 { return u.Outputs[i].Value })
}

func sumValues(n int, value func(int) uint64) (uint64, error) {
	var total uint64
	for i := 0; i < n; i++ {
		v := value(i)
		if total > math.MaxUint64-v {
			return 0, ErrValueOverflow
		}
		total += v
	}
	return total, nil
}
