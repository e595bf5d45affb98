package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/script"
	"github.com/Klingon-tech/zecsend/pkg/types"
)

// Verification errors.
var (
	ErrInputNotFound       = errors.New("input UTXO not found")
	ErrMalformedSigScript  = errors.New("malformed signature script")
	ErrUnsupportedSigHash  = errors.New("unsupported sighash type")
	ErrUnsupportedSequence = errors.New("unsupported input sequence")
	ErrScriptMismatch      = errors.New("pubkey does not match UTXO address")
	ErrInvalidSig          = errors.New("invalid signature")
	ErrInsufficientFee     = errors.New("outputs exceed inputs")
)

// UTXOProvider looks up the outputs a transaction spends.
type UTXOProvider interface {
	GetUTXO(op types.Outpoint) (UTXO, bool)
}

// UTXOSet is an in-memory UTXOProvider.
type UTXOSet map[types.Outpoint]UTXO

// NewUTXOSet indexes utxos by outpoint.
func NewUTXOSet(utxos []UTXO) UTXOSet {
	s := make(UTXOSet, len(utxos))
	for _, u := range utxos {
		s[u.Outpoint()] = u
	}
	return s
}

// GetUTXO implements UTXOProvider.
func (s UTXOSet) GetUTXO(op types.Outpoint) (UTXO, bool) {
	u, ok := s[op]
	return u, ok
}

// Verify checks every input signature of d against the outputs it spends
// and returns the fee (inputs - outputs).
func (d *Decoded) Verify(provider UTXOProvider) (uint64, error) {
	return d.VerifyWith(provider, sigVerifier)
}

// VerifyWith is Verify with a caller-supplied signature verifier.
func (d *Decoded) VerifyWith(provider UTXOProvider, v crypto.Verifier) (uint64, error) {
	if len(d.Inputs) == 0 {
		return 0, ErrNoInputs
	}

	spent := make([]UTXO, len(d.Inputs))
	for i, in := range d.Inputs {
		u, ok := provider.GetUTXO(in.PrevOut)
		if !ok {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrInputNotFound)
		}
		if in.Sequence != params.DefaultTxSequence {
			return 0, fmt.Errorf("input %d: %w: %#x", i, ErrUnsupportedSequence, in.Sequence)
		}
		if _, err := script.LockingScript(u.Address); err != nil {
			return 0, fmt.Errorf("input %d: %w: %v", i, ErrInputAddress, err)
		}
		spent[i] = u
	}
	totalIn, err := sumValues(len(spent), func(i int) uint64 { return spent[i].Value })
	if err != nil {
		return 0, err
	}

	outs := make([]txOut, len(d.Outputs))
	for i, out := range d.Outputs {
		outs[i] = txOut{value: out.Value, pkScript: out.PkScript}
	}
	if d.LockTime != params.DefaultTxLockTime {
		return 0, fmt.Errorf("%w: lock time %d", ErrMalformed, d.LockTime)
	}
	ctx := newSighashContext(d.Consensus(), d.ExpiryHeight, spent, outs)

	for i, in := range d.Inputs {
		sig, hashType, pub, ok := script.ExtractSigAndPubKey(in.SigScript)
		if !ok {
			return 0, fmt.Errorf("input %d: %w", i, ErrMalformedSigScript)
		}
		if hashType != script.SigHashType {
			return 0, fmt.Errorf("input %d: %w: %#x", i, ErrUnsupportedSigHash, hashType)
		}
		a, err := address.Decode(spent[i].Address)
		if err != nil {
			return 0, fmt.Errorf("input %d: %w", i, err)
		}
		if crypto.Hash160(pub) != a.Hash {
			return 0, fmt.Errorf("input %d (%s): %w", i, spent[i].Address, ErrScriptMismatch)
		}
		hash := ctx.SignatureHash(i)
		if !v.Verify(hash[:], sig, pub) {
			return 0, fmt.Errorf("input %d: %w", i, ErrInvalidSig)
		}
	}

	totalOut, err := d.TotalOutputValue()
	if err != nil {
		return 0, err
	}
	if totalOut > totalIn {
		return 0, fmt.Errorf("%w: inputs %d, outputs %d", ErrInsufficientFee, totalIn, totalOut)
	}
	return totalIn - totalOut, nil
}
