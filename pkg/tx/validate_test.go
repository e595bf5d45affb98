package tx

import (
	"errors"
	"math"
	"testing"
)

func validUnsigned(t *testing.T) *Unsigned {
	t.Helper()
	return &Unsigned{
		Height:  sampleHeight,
		Inputs:  []UTXO{sampleUTXO(t)},
		Outputs: []Output{PayTo(fromAddr, 40_000), PayTo(toAddr, 50_000)},
		Fee:     10_000,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validUnsigned(t).Validate(); err != nil {
		t.Errorf("valid transaction should pass: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(u *Unsigned)
		want   error
	}{
		{"no inputs", func(u *Unsigned) { u.Inputs = nil }, ErrNoInputs},
		{"no outputs", func(u *Unsigned) { u.Outputs = nil }, ErrNoOutputs},
		{"duplicate input", func(u *Unsigned) { u.Inputs = append(u.Inputs, u.Inputs[0]) }, ErrDuplicateInput},
		{"zero value input", func(u *Unsigned) { u.Inputs[0].Value = 0 }, ErrZeroValueInput},
		{"bad input address", func(u *Unsigned) { u.Inputs[0].Address = "x" }, ErrInputAddress},
		{"bad output address", func(u *Unsigned) { u.Outputs[1].Address = "x" }, ErrOutputAddress},
		{"memo with value", func(u *Unsigned) {
			u.Outputs = append(u.Outputs, Output{Kind: OutputMemo, Memo: "m", Value: 1})
		}, ErrMemoValue},
		{"two memos", func(u *Unsigned) {
			u.Outputs = append(u.Outputs, MemoOutput("a"), MemoOutput("b"))
		}, ErrTooManyMemos},
		{"long memo", func(u *Unsigned) {
			u.Outputs = append(u.Outputs, MemoOutput(string(make([]byte, 81))))
		}, ErrMemoTooLong},
		{"unknown kind", func(u *Unsigned) { u.Outputs[0].Kind = 7 }, ErrUnknownOutput},
		{"fee too low", func(u *Unsigned) { u.Fee = 1 }, ErrUnbalanced},
		{"outputs exceed inputs", func(u *Unsigned) { u.Outputs[0].Value = 200_000 }, ErrUnbalanced},
		{"output overflow", func(u *Unsigned) {
			u.Outputs[0].Value = math.MaxUint64
			u.Outputs[1].Value = 1
		}, ErrValueOverflow},
		{"too many inputs", func(u *Unsigned) {
			u.Inputs = make([]UTXO, MaxTxInputs+1)
		}, ErrTooManyInputs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUnsigned(t)
			tt.modify(u)
			if err := u.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
