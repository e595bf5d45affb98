package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/script"
	"github.com/Klingon-tech/zecsend/pkg/types"
)

// Validation errors.
var (
	ErrNoInputs       = errors.New("transaction has no inputs")
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrDuplicateInput = errors.New("duplicate input")
	ErrZeroValueInput = errors.New("input value is zero")
	ErrValueOverflow  = errors.New("values overflow")
	ErrInputAddress   = errors.New("input address is not pay-to-pubkey-hash")
	ErrOutputAddress  = errors.New("output address is not pay-to-pubkey-hash")
	ErrMemoValue      = errors.New("memo output carries value")
	ErrTooManyMemos   = errors.New("more than one memo output")
	ErrUnbalanced     = errors.New("inputs do not equal outputs plus fee")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrUnknownOutput  = errors.New("unknown output kind")
)

// Structural limits. A v5 transaction is capped at 2 MB; these counts keep a
// single transparent transaction well below it.
const (
	MaxTxInputs  = 2000
	MaxTxOutputs = 2000
)

// ValidateShape checks the inputs and outputs of a transaction before
// signing. It does not check the fee.
func ValidateShape(inputs []UTXO, outputs []Output) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	if len(outputs) == 0 {
		return ErrNoOutputs
	}
	if len(inputs) > MaxTxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(inputs), MaxTxInputs)
	}
	if len(outputs) > MaxTxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(outputs), MaxTxOutputs)
	}

	seen := make(map[types.Outpoint]bool, len(inputs))
	for i, in := range inputs {
		op := in.Outpoint()
		if seen[op] {
			return fmt.Errorf("input %d (%s): %w", i, op, ErrDuplicateInput)
		}
		seen[op] = true
		if in.Value == 0 {
			return fmt.Errorf("input %d (%s): %w", i, op, ErrZeroValueInput)
		}
		if _, err := script.LockingScript(in.Address); err != nil {
			return fmt.Errorf("input %d: %w: %v", i, ErrInputAddress, err)
		}
	}

	memos := 0
	for i, out := range outputs {
		switch out.Kind {
		case OutputPKH:
			if _, err := script.LockingScript(out.Address); err != nil {
				return fmt.Errorf("output %d: %w: %v", i, ErrOutputAddress, err)
			}
		case OutputMemo:
			memos++
			if memos > 1 {
				return fmt.Errorf("output %d: %w", i, ErrTooManyMemos)
			}
			if out.Value != 0 {
				return fmt.Errorf("output %d: %w: %d", i, ErrMemoValue, out.Value)
			}
			if len(out.Memo) > MaxMemoSize {
				return fmt.Errorf("output %d: %w: %d bytes, max %d", i, ErrMemoTooLong, len(out.Memo), MaxMemoSize)
			}
		default:
			return fmt.Errorf("output %d: %w: %d", i, ErrUnknownOutput, out.Kind)
		}
	}

	if _, err := sumValues(len(inputs), func(i int) uint64 { return inputs[i].Value }); err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	if _, err := sumValues(len(outputs), func(i int) uint64 { return outputs[i].Value }); err != nil {
		return fmt.Errorf("outputs: %w", err)
	}
	return nil
}

// Validate checks the shape of u and that its values balance exactly:
// sum(inputs) == sum(outputs) + Fee.
func (u *Unsigned) Validate() error {
	if err := ValidateShape(u.Inputs, u.Outputs); err != nil {
		return err
	}
	in, _ := u.TotalInputValue()
	out, _ := u.TotalOutputValue()
	if out > in || in-out != u.Fee {
		return fmt.Errorf("%w: inputs %d, outputs %d, fee %d", ErrUnbalanced, in, out, u.Fee)
	}
	return nil
}

// ValidateForNetwork additionally requires every address to belong to net.
func (u *Unsigned) ValidateForNetwork(net *params.Network) error {
	if err := u.Validate(); err != nil {
		return err
	}
	for i, in := range u.Inputs {
		if !addressOnNetwork(in.Address, net) {
			return fmt.Errorf("input %d: %w: %q not on %s", i, ErrInputAddress, in.Address, net)
		}
	}
	for i, out := range u.Outputs {
		if out.Kind == OutputPKH && !addressOnNetwork(out.Address, net) {
			return fmt.Errorf("output %d: %w: %q not on %s", i, ErrOutputAddress, out.Address, net)
		}
	}
	return nil
}

func addressOnNetwork(addr string, net *params.Network) bool {
	return address.IsValid(addr, net.PubKeyHashAddrID)
}
