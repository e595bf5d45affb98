package tx

import (
	"bytes"

	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/btcsuite/btcd/wire"
)

// emptyShieldedBundles is nSpendsSapling | nOutputsSapling | nActionsOrchard,
// each a zero compact size.
var emptyShieldedBundles = []byte{0x00, 0x00, 0x00}

// Serialize encodes a transparent-only v5 transaction:
//
//	header(20) | varint(nIn) | inputs | varint(nOut) | outputs | 00 00 00
//
// sigScripts[i] is the unlocking script of inputs[i].
func Serialize(cp params.Consensus, height uint32, inputs []UTXO, sigScripts [][]byte, outputs []Output) []byte {
	if len(sigScripts) != len(inputs) {
		panic("serialize: signature script count does not match input count")
	}

	var buf bytes.Buffer
	buf.Write(headerBytes(cp, height))

	writeVarInt(&buf, uint64(len(inputs)))
	for i, in := range inputs {
		writeOutpoint(&buf, in)
		writeVarBytes(&buf, sigScripts[i])
		writeUint32(&buf, params.DefaultTxSequence)
	}

	writeVarInt(&buf, uint64(len(outputs)))
	for _, out := range outputs {
		writeOutput(&buf, out.Value, out.Script())
	}

	buf.Write(emptyShieldedBundles)
	return buf.Bytes()
}

func writeVarInt(buf *bytes.Buffer, n uint64) {
	_ = wire.WriteVarInt(buf, 0, n)
}
