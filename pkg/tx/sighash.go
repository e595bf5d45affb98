package tx

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/script"
	"github.com/Klingon-tech/zecsend/pkg/types"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ZIP 244 personalization strings. All are exactly 16 bytes except the
// final one, which is completed with the little-endian branch id.
var (
	personHeaders     = []byte("ZTxIdHeadersHash")
	personPrevouts    = []byte("ZTxIdPrevoutHash")
	personSequences   = []byte("ZTxIdSequencHash")
	personOutputs     = []byte("ZTxIdOutputsHash")
	personAmounts     = []byte("ZTxTrAmountsHash")
	personScripts     = []byte("ZTxTrScriptsHash")
	personTxIn        = []byte("Zcash___TxInHash")
	personTransparent = []byte("ZTxIdTranspaHash")
	personTxHashStem  = []byte("ZcashTxHash_")
)

// Digests of the absent shielded bundles: BLAKE2b-256 of the empty string
// under "ZTxIdSaplingHash" and "ZTxIdOrchardHash".
var (
	EmptySaplingDigest = types.MustParseHash("6f2fc8f98feafd94e74a0df4bed74391ee0b5a69945e4ced8ca8a095206f00ae")
	EmptyOrchardDigest = types.MustParseHash("9fbe4ed13b0c08e671c11a3407d84e1117cd45028a2eee1b9feae78b48a6e2c1")
)

// headerSize is version(4) | group id(4) | branch id(4) | lock time(4) | expiry(4).
const headerSize = 20

// SighashContext holds the transaction-wide ZIP 244 digests of a transparent
// v5 transaction. It is computed once by NewSighashContext and never
// modified; per-input digests are derived from it.
type SighashContext struct {
	Consensus params.Consensus
	Height    uint32

	Header    types.Hash
	Prevouts  types.Hash
	Sequences types.Hash
	Amounts   types.Hash
	Scripts   types.Hash
	Outputs   types.Hash

	inputs        []UTXO
	spentScripts  [][]byte
	personalFinal []byte
	noBundle      bool // no transparent inputs and no outputs
}

// txOut is an output reduced to what the digests commit to.
type txOut struct {
	value    uint64
	pkScript []byte
}

// NewSighashContext computes the shared digests for inputs and outputs.
// Every input address and PKH output address must be a valid P2PKH address.
func NewSighashContext(cp params.Consensus, height uint32, inputs []UTXO, outputs []Output) *SighashContext {
	outs := make([]txOut, len(outputs))
	for i, out := range outputs {
		outs[i] = txOut{value: out.Value, pkScript: out.Script()}
	}
	return newSighashContext(cp, height, inputs, outs)
}

func newSighashContext(cp params.Consensus, height uint32, inputs []UTXO, outputs []txOut) *SighashContext {
	c := &SighashContext{
		Consensus: cp,
		Height:    height,
		inputs:    append([]UTXO(nil), inputs...),
		noBundle:  len(inputs) == 0 && len(outputs) == 0,
	}
	c.spentScripts = make([][]byte, len(inputs))
	for i, in := range inputs {
		c.spentScripts[i] = script.MustLockingScript(in.Address)
	}

	c.personalFinal = make([]byte, 0, crypto.PersonalizationSize)
	c.personalFinal = append(c.personalFinal, personTxHashStem...)
	c.personalFinal = binary.LittleEndian.AppendUint32(c.personalFinal, cp.BranchID)

	c.Header = crypto.PersonalHash(personHeaders, headerBytes(cp, height))
	c.Prevouts = digest(personPrevouts, func(w io.Writer) {
		for _, in := range inputs {
			writeOutpoint(w, in)
		}
	})
	c.Sequences = digest(personSequences, func(w io.Writer) {
		for range inputs {
			writeUint32(w, params.DefaultTxSequence)
		}
	})
	c.Amounts = digest(personAmounts, func(w io.Writer) {
		for _, in := range inputs {
			writeUint64(w, in.Value)
		}
	})
	c.Scripts = digest(personScripts, func(w io.Writer) {
		for _, s := range c.spentScripts {
			writeVarBytes(w, s)
		}
	})
	c.Outputs = digest(personOutputs, func(w io.Writer) {
		for _, out := range outputs {
			writeOutput(w, out.value, out.pkScript)
		}
	})
	return c
}

// TxInDigest returns the per-input digest of input i: prevout | value |
// spent script | sequence.
func (c *SighashContext) TxInDigest(i int) types.Hash {
	in := c.input(i)
	return digest(personTxIn, func(w io.Writer) {
		writeOutpoint(w, in)
		writeUint64(w, in.Value)
		writeVarBytes(w, c.spentScripts[i])
		writeUint32(w, params.DefaultTxSequence)
	})
}

// TransparentSigDigest returns the transparent bundle digest used when
// signing input i with SIGHASH_ALL.
func (c *SighashContext) TransparentSigDigest(i int) types.Hash {
	txin := c.TxInDigest(i)
	return crypto.PersonalHash(personTransparent,
		[]byte{script.SigHashType},
		c.Prevouts[:], c.Amounts[:], c.Scripts[:], c.Sequences[:], c.Outputs[:],
		txin[:])
}

// SignatureHash returns the 32-byte digest signed for input i.
func (c *SighashContext) SignatureHash(i int) types.Hash {
	return c.root(c.TransparentSigDigest(i))
}

// TransparentTxIDDigest returns the transparent bundle digest committed to by
// the transaction id.
func (c *SighashContext) TransparentTxIDDigest() types.Hash {
	return transparentTxIDDigest(c.noBundle, c.Prevouts, c.Sequences, c.Outputs)
}

// transparentTxIDDigest combines the transparent sub-digests. Without a
// transparent bundle the digest is the personalized hash of empty input.
func transparentTxIDDigest(noBundle bool, prevouts, sequences, outputs types.Hash) types.Hash {
	if noBundle {
		return crypto.PersonalHash(personTransparent)
	}
	return crypto.PersonalHash(personTransparent, prevouts[:], sequences[:], outputs[:])
}

// TxID returns the ZIP 244 transaction id. chainhash.Hash.String() renders
// it in the usual reversed display order.
func (c *SighashContext) TxID() chainhash.Hash {
	return chainhash.Hash(c.root(c.TransparentTxIDDigest()))
}

func (c *SighashContext) root(transparent types.Hash) types.Hash {
	return crypto.PersonalHash(c.personalFinal,
		c.Header[:], transparent[:], EmptySaplingDigest[:], EmptyOrchardDigest[:])
}

func (c *SighashContext) input(i int) UTXO {
	if i < 0 || i >= len(c.inputs) {
		panic(fmt.Sprintf("sighash: input index %d out of range [0,%d)", i, len(c.inputs)))
	}
	return c.inputs[i]
}

func headerBytes(cp params.Consensus, height uint32) []byte {
	return encodeHeader(cp.HeaderVersion(), cp.VersionGroupID, cp.BranchID, params.DefaultTxLockTime, height)
}

func encodeHeader(version, groupID, branchID, lockTime, expiry uint32) []byte {
	b := make([]byte, 0, headerSize)
	b = binary.LittleEndian.AppendUint32(b, version)
	b = binary.LittleEndian.AppendUint32(b, groupID)
	b = binary.LittleEndian.AppendUint32(b, branchID)
	b = binary.LittleEndian.AppendUint32(b, lockTime)
	return binary.LittleEndian.AppendUint32(b, expiry)
}

// digest streams the bytes produced by write into a fresh personalized hasher.
func digest(person []byte, write func(w io.Writer)) types.Hash {
	h := crypto.NewPersonalHasher(person)
	write(h)
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func writeOutpoint(w io.Writer, in UTXO) {
	w.Write(in.TxID[:])
	writeUint32(w, in.Index)
}

func writeOutput(w io.Writer, value uint64, pkScript []byte) {
	writeUint64(w, value)
	writeVarBytes(w, pkScript)
}

func writeUint32(w io.Writer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeUint64(w io.Writer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

// writeVarBytes writes a compact-size length followed by b. Writes to a hash
// or bytes.Buffer cannot fail.
func writeVarBytes(w io.Writer, b []byte) {
	_ = wire.WriteVarBytes(w, 0, b)
}
