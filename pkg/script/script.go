// Package script builds and inspects the transparent scripts used by
// zecsend: P2PKH locking scripts, OP_RETURN memo scripts and P2PKH
// unlocking scripts.
package script

import (
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/btcsuite/btcd/txscript"
)

// Script sizes.
const (
	// P2PKHSize is the length of a P2PKH locking script without its
	// compact-size length prefix.
	P2PKHSize = 25

	// SigHashType is the only signature hash mode produced: SIGHASH_ALL.
	SigHashType = byte(txscript.SigHashAll)
)

// PayToPubKeyHash returns
// OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG.
func PayToPubKeyHash(hash [address.HashSize]byte) []byte {
	s := make([]byte, 0, P2PKHSize)
	s = append(s, txscript.OP_DUP, txscript.OP_HASH160, txscript.OP_DATA_20)
	s = append(s, hash[:]...)
	return append(s, txscript.OP_EQUALVERIFY, txscript.OP_CHECKSIG)
}

// LockingScript decodes a P2PKH t-address and returns its locking script.
// Addresses whose prefix is not a known P2PKH prefix are rejected.
func LockingScript(addr string) ([]byte, error) {
	a, err := address.Decode(addr)
	if err != nil {
		return nil, err
	}
	if _, ok := a.Network(); !ok {
		return nil, fmt.Errorf("%w: %q is not a pay-to-pubkey-hash address", address.ErrWrongNetwork, addr)
	}
	return PayToPubKeyHash(a.Hash), nil
}

// MustLockingScript is LockingScript for addresses that were already
// validated. An undecodable address at this point is a programming error.
func MustLockingScript(addr string) []byte {
	s, err := LockingScript(addr)
	if err != nil {
		panic(fmt.Sprintf("locking script for validated address: %v", err))
	}
	return s
}

// MemoScript returns OP_RETURN <push(memo)>.
func MemoScript(memo []byte) []byte {
	return append([]byte{txscript.OP_RETURN}, PushData(memo)...)
}

// UnlockingScript returns <push(sig | SIGHASH_ALL)> <push(pubKey)>.
func UnlockingScript(sigDER, pubKey []byte) []byte {
	sig := make([]byte, 0, len(sigDER)+1)
	sig = append(sig, sigDER...)
	sig = append(sig, SigHashType)

	s := PushData(sig)
	return append(s, PushData(pubKey)...)
}

// PushData returns data prefixed with its push opcode. Lengths below
// OP_PUSHDATA1 use a single length byte; longer data uses OP_PUSHDATA1 or
// OP_PUSHDATA2. Data is never folded into OP_1..OP_16.
func PushData(data []byte) []byte {
	n := len(data)
	var s []byte
	switch {
	case n < txscript.OP_PUSHDATA1:
		s = make([]byte, 0, 1+n)
		s = append(s, byte(n))
	case n <= 0xff:
		s = make([]byte, 0, 2+n)
		s = append(s, txscript.OP_PUSHDATA1, byte(n))
	case n <= 0xffff:
		s = make([]byte, 0, 3+n)
		s = append(s, txscript.OP_PUSHDATA2)
		s = binary.LittleEndian.AppendUint16(s, uint16(n))
	default:
		panic(fmt.Sprintf("push data too large: %d bytes", n))
	}
	return append(s, data...)
}

// ExtractPubKeyHash returns the hash committed to by a P2PKH script.
func ExtractPubKeyHash(s []byte) ([address.HashSize]byte, bool) {
	var h [address.HashSize]byte
	if len(s) != P2PKHSize ||
		s[0] != txscript.OP_DUP || s[1] != txscript.OP_HASH160 || s[2] != txscript.OP_DATA_20 ||
		s[23] != txscript.OP_EQUALVERIFY || s[24] != txscript.OP_CHECKSIG {
		return h, false
	}
	copy(h[:], s[3:23])
	return h, true
}

// ExtractMemo returns the payload of an OP_RETURN script holding a single push.
func ExtractMemo(s []byte) ([]byte, bool) {
	if len(s) < 2 || s[0] != txscript.OP_RETURN {
		return nil, false
	}
	data, rest, ok := readPush(s[1:])
	if !ok || len(rest) != 0 {
		return nil, false
	}
	return data, true
}

// ExtractSigAndPubKey splits a P2PKH unlocking script into its DER signature
// (without the sighash byte), the sighash byte and the public key.
func ExtractSigAndPubKey(s []byte) (sig []byte, hashType byte, pubKey []byte, ok bool) {
	sigWithType, rest, ok := readPush(s)
	if !ok || len(sigWithType) < 2 {
		return nil, 0, nil, false
	}
	pubKey, rest, ok = readPush(rest)
	if !ok || len(rest) != 0 {
		return nil, 0, nil, false
	}
	n := len(sigWithType)
	return sigWithType[:n-1], sigWithType[n-1], pubKey, true
}

// Disasm returns a human-readable disassembly. Unparseable scripts are
// reported with the error appended.
func Disasm(s []byte) string {
	str, err := txscript.DisasmString(s)
	if err != nil {
		return fmt.Sprintf("%s [error: %v]", str, err)
	}
	return str
}

func readPush(s []byte) (data, rest []byte, ok bool) {
	if len(s) == 0 {
		return nil, nil, false
	}
	op := s[0]
	var n, hdr int
	switch {
	case op < txscript.OP_PUSHDATA1:
		n, hdr = int(op), 1
	case op == txscript.OP_PUSHDATA1:
		if len(s) < 2 {
			return nil, nil, false
		}
		n, hdr = int(s[1]), 2
	case op == txscript.OP_PUSHDATA2:
		if len(s) < 3 {
			return nil, nil, false
		}
		n, hdr = int(binary.LittleEndian.Uint16(s[1:3])), 3
	default:
		return nil, nil, false
	}
	if len(s) < hdr+n {
		return nil, nil, false
	}
	return s[hdr : hdr+n], s[hdr+n:], true
}
