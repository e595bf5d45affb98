package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutpointSize is the serialized size of an outpoint: txid(32) | index(4).
const OutpointSize = chainhash.HashSize + 4

// Outpoint references a specific output in a transaction.
// TxID is kept in wire byte order; String() shows it in display order.
type Outpoint struct {
	TxID  chainhash.Hash `json:"txid"`
	Index uint32         `json:"index"`
}

// IsZero returns true if the outpoint has a zero TxID and zero index.
func (o Outpoint) IsZero() bool {
	return o.TxID == chainhash.Hash{} && o.Index == 0
}

// String returns "txid:index" with the txid in display order.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Index)
}

// Bytes returns the wire encoding txid | index (little-endian).
func (o Outpoint) Bytes() []byte {
	b := make([]byte, 0, OutpointSize)
	b = append(b, o.TxID[:]...)
	return binary.LittleEndian.AppendUint32(b, o.Index)
}

// OutpointFromBytes decodes the wire encoding produced by Bytes.
func OutpointFromBytes(b []byte) (Outpoint, error) {
	if len(b) != OutpointSize {
		return Outpoint{}, fmt.Errorf("outpoint must be %d bytes, got %d", OutpointSize, len(b))
	}
	var o Outpoint
	copy(o.TxID[:], b[:chainhash.HashSize])
	o.Index = binary.LittleEndian.Uint32(b[chainhash.HashSize:])
	return o, nil
}

// ParseTxID parses a display-order (big-endian hex) transaction id.
// chainhash.NewHashFromStr accepts short strings, so length is checked here.
func ParseTxID(s string) (chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, fmt.Errorf("txid must be %d hex chars, got %d", chainhash.MaxHashStringSize, len(s))
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("invalid txid: %w", err)
	}
	return *h, nil
}

// ParseOutpoint parses "txid:index".
func ParseOutpoint(s string) (Outpoint, error) {
	txid, idx, ok := strings.Cut(s, ":")
	if !ok {
		return Outpoint{}, fmt.Errorf("outpoint %q: expected txid:index", s)
	}
	h, err := ParseTxID(txid)
	if err != nil {
		return Outpoint{}, err
	}
	n, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return Outpoint{}, fmt.Errorf("outpoint %q: invalid index: %w", s, err)
	}
	return Outpoint{TxID: h, Index: uint32(n)}, nil
}
