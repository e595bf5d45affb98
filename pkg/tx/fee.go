package tx

// Fee model constants (ZIP 317 conventional fee, transparent only).
const (
	// MarginalFee is the fee per logical action in zatoshis.
	MarginalFee = 5000
	// GraceActions is the number of actions charged even for smaller
	// transactions.
	GraceActions = 2
	// PKHOutputSize is the serialized size of a P2PKH output:
	// value(8) | script length(1) | script(25).
	PKHOutputSize = 34
)

// LogicalActions returns the ZIP 317 logical action count of a transparent
// transaction made of standard P2PKH inputs and outputs. Inputs and outputs
// are paired, so the larger side determines the count.
func LogicalActions(inputs, outputs int) int {
	return max(inputs, outputs)
}

// Fee returns MarginalFee * max(GraceActions, LogicalActions(inputs, outputs)).
func Fee(inputs, outputs int) uint64 {
	return MarginalFee * uint64(max(GraceActions, LogicalActions(inputs, outputs)))
}

// MemoOutputSlots returns the number of P2PKH-sized outputs a memo of memoLen
// bytes is charged as. The two extra bytes cover the OP_RETURN and push
// opcodes. An empty memo costs nothing.
func MemoOutputSlots(memoLen int) int {
	if memoLen <= 0 {
		return 0
	}
	return (memoLen + 2 + PKHOutputSize - 1) / PKHOutputSize
}

// FeeWithMemo returns Fee with the memo slots added to the output count.
func FeeWithMemo(inputs, outputs, memoLen int) uint64 {
	return Fee(inputs, outputs+MemoOutputSlots(memoLen))
}
