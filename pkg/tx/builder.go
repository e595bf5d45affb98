package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/params"
)

// Limits enforced by Build.
const (
	// MaxAmount is the sanity ceiling on a single payment (1,000,000 ZEC).
	MaxAmount uint64 = 1e14
	// MaxMemoSize is the largest memo accepted, in bytes.
	MaxMemoSize = 80
)

// Build errors.
var (
	ErrInvalidFrom       = errors.New(`invalid "from" address`)
	ErrInvalidTo         = errors.New(`invalid "to" address`)
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrAmountTooLarge    = errors.New("amount too large")
	ErrMemoTooLong       = errors.New("memo too long")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError reports how far the selected inputs fall short.
type InsufficientFundsError struct {
	Have uint64
	Need uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%v: have %d, need %d", ErrInsufficientFunds, e.Have, e.Need)
}

// Is makes errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall returns Need - Have.
func (e *InsufficientFundsError) Shortfall() uint64 {
	return e.Need - e.Have
}

// BuildParams are the inputs to Build.
type BuildParams struct {
	Height  uint32
	From    string
	To      string
	Amount  uint64
	UTXOs   []UTXO
	Network *params.Network
	Memo    string
}

// Build selects inputs and lays out a fee-balanced transaction paying Amount
// to To, returning change to From.
//
// Outputs are always ordered change, payment, memo. Change is emitted even
// when it is zero.
func Build(p BuildParams) (*Unsigned, error) {
	net := p.Network
	if net == nil {
		net = params.MainNet
	}
	if !address.IsValid(p.From, net.PubKeyHashAddrID) {
		return nil, fmt.Errorf("%w: %q on %s", ErrInvalidFrom, p.From, net)
	}
	if !address.IsValid(p.To, net.PubKeyHashAddrID) {
		return nil, fmt.Errorf("%w: %q on %s", ErrInvalidTo, p.To, net)
	}
	if p.Amount == 0 {
		return nil, ErrZeroAmount
	}
	if p.Amount > MaxAmount {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrAmountTooLarge, p.Amount, MaxAmount)
	}
	if len(p.Memo) > MaxMemoSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrMemoTooLong, len(p.Memo), MaxMemoSize)
	}

	inputs := SelectUTXOs(p.UTXOs, p.Amount, len(p.Memo))

	// The memo output is priced through its slots only.
	fee := FeeWithMemo(len(inputs), selectionOutputs, len(p.Memo))

	total, err := sumValues(len(inputs), func(i int) uint64 { return inputs[i].Value })
	if err != nil {
		return nil, err
	}
	need := p.Amount + fee
	if total < need {
		return nil, &InsufficientFundsError{Have: total, Need: need}
	}
	change := total - need

	outputs := make([]Output, 0, 3)
	outputs = append(outputs, PayTo(p.From, change), PayTo(p.To, p.Amount))
	if p.Memo != "" {
		outputs = append(outputs, MemoOutput(p.Memo))
	}

	logger.Debug().
		Uint32("height", p.Height).
		Int("inputs", len(inputs)).
		Int("outputs", len(outputs)).
		Uint64("amount", p.Amount).
		Uint64("fee", fee).
		Uint64("change", change).
		Msg("Built unsigned transaction")

	return &Unsigned{
		Height:  p.Height,
		Inputs:  inputs,
		Outputs: outputs,
		Fee:     fee,
	}, nil
}
