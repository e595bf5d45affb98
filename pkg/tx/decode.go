package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/types"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Decode errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported transaction version")
	ErrShieldedBundle     = errors.New("shielded bundles are not supported")
	ErrTrailingBytes      = errors.New("trailing bytes after transaction")
	ErrMalformed          = errors.New("malformed transaction")
)

// maxScriptSize bounds scripts read from the wire (MAX_SCRIPT_SIZE).
const maxScriptSize = 10_000

// DecodedInput is a transparent input as found on the wire.
type DecodedInput struct {
	PrevOut   types.Outpoint
	SigScript []byte
	Sequence  uint32
}

// DecodedOutput is a transparent output as found on the wire.
type DecodedOutput struct {
	Value    uint64
	PkScript []byte
}

// Decoded is a parsed transparent-only v5 transaction.
type Decoded struct {
	Version        uint32
	VersionGroupID uint32
	BranchID       uint32
	LockTime       uint32
	ExpiryHeight   uint32
	Inputs         []DecodedInput
	Outputs        []DecodedOutput
}

// DecodeHex decodes a hex-encoded raw transaction.
func DecodeHex(s string) (*Decoded, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Decode(raw)
}

// Decode parses the output of Serialize. Anything other than a v5
// transaction with empty shielded bundles is rejected.
func Decode(raw []byte) (*Decoded, error) {
	r := bytes.NewReader(raw)
	d := &Decoded{}

	var header [5]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	d.Version, d.VersionGroupID, d.BranchID, d.LockTime, d.ExpiryHeight =
		header[0], header[1], header[2], header[3], header[4]
	if d.Version != params.TxVersionV5|params.OverwinteredFlag || d.VersionGroupID != params.VersionGroupIDV5 {
		return nil, fmt.Errorf("%w: version %#x, group %#x", ErrUnsupportedVersion, d.Version, d.VersionGroupID)
	}

	nIn, err := readCount(r, MaxTxInputs, "input")
	if err != nil {
		return nil, err
	}
	d.Inputs = make([]DecodedInput, nIn)
	for i := range d.Inputs {
		in := &d.Inputs[i]
		if _, err := io.ReadFull(r, in.PrevOut.TxID[:]); err != nil {
			return nil, fmt.Errorf("%w: input %d txid: %v", ErrMalformed, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &in.PrevOut.Index); err != nil {
			return nil, fmt.Errorf("%w: input %d index: %v", ErrMalformed, i, err)
		}
		if in.SigScript, err = wire.ReadVarBytes(r, 0, maxScriptSize, "sigScript"); err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", ErrMalformed, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &in.Sequence); err != nil {
			return nil, fmt.Errorf("%w: input %d sequence: %v", ErrMalformed, i, err)
		}
	}

	nOut, err := readCount(r, MaxTxOutputs, "output")
	if err != nil {
		return nil, err
	}
	d.Outputs = make([]DecodedOutput, nOut)
	for i := range d.Outputs {
		out := &d.Outputs[i]
		if err := binary.Read(r, binary.LittleEndian, &out.Value); err != nil {
			return nil, fmt.Errorf("%w: output %d value: %v", ErrMalformed, i, err)
		}
		if out.PkScript, err = wire.ReadVarBytes(r, 0, maxScriptSize, "pkScript"); err != nil {
			return nil, fmt.Errorf("%w: output %d: %v", ErrMalformed, i, err)
		}
	}

	for _, name := range []string{"sapling spends", "sapling outputs", "orchard actions"} {
		n, err := wire.ReadVarInt(r, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		if n != 0 {
			return nil, fmt.Errorf("%w: %d %s", ErrShieldedBundle, n, name)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, r.Len())
	}
	return d, nil
}

func readCount(r io.Reader, limit int, what string) (int, error) {
	n, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %s count: %v", ErrMalformed, what, err)
	}
	if n > uint64(limit) {
		return 0, fmt.Errorf("%w: %d %ss, max %d", ErrMalformed, n, what, limit)
	}
	return int(n), nil
}

// Consensus returns the consensus parameters the transaction commits to.
func (d *Decoded) Consensus() params.Consensus {
	c := params.Current()
	if d.BranchID != c.BranchID {
		c = c.WithBranchID(d.BranchID)
	}
	return c
}

// TotalOutputValue returns the sum of the output values.
func (d *Decoded) TotalOutputValue() (uint64, error) {
	return sumValues(len(d.Outputs), func(i int) uint64 { return d.Outputs[i].Value })
}

// TxID computes the ZIP 244 transaction id. It does not depend on the
// signature scripts or the values of the spent outputs.
func (d *Decoded) TxID() chainhash.Hash {
	header := crypto.PersonalHash(personHeaders,
		encodeHeader(d.Version, d.VersionGroupID, d.BranchID, d.LockTime, d.ExpiryHeight))
	prevouts := digest(personPrevouts, func(w io.Writer) {
		for _, in := range d.Inputs {
			w.Write(in.PrevOut.TxID[:])
			writeUint32(w, in.PrevOut.Index)
		}
	})
	sequences := digest(personSequences, func(w io.Writer) {
		for _, in := range d.Inputs {
			writeUint32(w, in.Sequence)
		}
	})
	outputs := digest(personOutputs, func(w io.Writer) {
		for _, out := range d.Outputs {
			writeOutput(w, out.Value, out.PkScript)
		}
	})
	transparent := transparentTxIDDigest(len(d.Inputs) == 0 && len(d.Outputs) == 0, prevouts, sequences, outputs)

	person := binary.LittleEndian.AppendUint32(append([]byte(nil), personTxHashStem...), d.BranchID)
	return chainhash.Hash(crypto.PersonalHash(person,
		header[:], transparent[:], EmptySaplingDigest[:], EmptyOrchardDigest[:]))
}
