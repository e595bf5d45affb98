// Package address encodes and validates transparent Zcash addresses.
//
// A t-address is Base58Check over prefix(2) | hash160(20) | checksum(4),
// where the checksum is the first four bytes of SHA256(SHA256(prefix|hash)).
package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/decred/base58"
)

const (
	// HashSize is the length of the public key hash.
	HashSize = 20
	// PrefixSize is the length of the network prefix.
	PrefixSize = 2

	checksumSize = 4
	decodedSize  = PrefixSize + HashSize + checksumSize
)

// Errors returned by Decode and DecodeForNetwork.
var (
	ErrInvalidFormat = errors.New("invalid address format")
	ErrChecksum      = errors.New("address checksum mismatch")
	ErrWrongNetwork  = errors.New("address prefix does not match network")
)

// Address is a decoded transparent address.
type Address struct {
	Prefix [PrefixSize]byte
	Hash   [HashSize]byte
}

// String returns the Base58Check encoding.
func (a Address) String() string {
	return Encode(a.Hash, a.Prefix)
}

// Network returns the network whose P2PKH prefix matches a, if any.
func (a Address) Network() (*params.Network, bool) {
	return params.NetworkByPubKeyHashAddrID(a.Prefix)
}

// Encode Base58Check-encodes a public key hash under prefix.
func Encode(hash [HashSize]byte, prefix [PrefixSize]byte) string {
	b := make([]byte, 0, decodedSize)
	b = append(b, prefix[:]...)
	b = append(b, hash[:]...)
	cksum := checksum(b)
	b = append(b, cksum[:]...)
	return base58.Encode(b)
}

// Decode parses a Base58Check address without checking its prefix.
func Decode(addr string) (Address, error) {
	b := base58.Decode(addr)
	if len(b) != decodedSize {
		return Address{}, fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidFormat, addr, len(b), decodedSize)
	}
	body := b[:decodedSize-checksumSize]
	cksum := checksum(body)
	if !bytes.Equal(cksum[:], b[decodedSize-checksumSize:]) {
		return Address{}, fmt.Errorf("%w: %q", ErrChecksum, addr)
	}

	var a Address
	copy(a.Prefix[:], body[:PrefixSize])
	copy(a.Hash[:], body[PrefixSize:])
	return a, nil
}

// DecodeForNetwork parses addr and requires the P2PKH prefix of net.
func DecodeForNetwork(addr string, net *params.Network) (Address, error) {
	a, err := Decode(addr)
	if err != nil {
		return Address{}, err
	}
	if a.Prefix != net.PubKeyHashAddrID {
		return Address{}, fmt.Errorf("%w: %q has prefix %x, %s expects %x",
			ErrWrongNetwork, addr, a.Prefix, net.Name, net.PubKeyHashAddrID)
	}
	return a, nil
}

// IsValid reports whether addr decodes cleanly and carries exactly prefix.
// It never panics.
func IsValid(addr string, prefix [PrefixSize]byte) bool {
	a, err := Decode(addr)
	if err != nil {
		return false
	}
	return a.Prefix == prefix
}

// FromPublicKey derives the address of a serialized public key.
func FromPublicKey(pub []byte, prefix [PrefixSize]byte) Address {
	return Address{Prefix: prefix, Hash: crypto.Hash160(pub)}
}

// FromPrivateKey derives the address of a 32-byte secret via its compressed
// public key.
func FromPrivateKey(priv []byte, prefix [PrefixSize]byte) (Address, error) {
	key, err := crypto.PrivateKeyFromBytes(priv)
	if err != nil {
		return Address{}, err
	}
	defer key.Zero()
	return FromPublicKey(key.PublicKey(), prefix), nil
}

func checksum(input []byte) (cksum [checksumSize]byte) {
	h := crypto.DoubleSHA256(input)
	copy(cksum[:], h[:checksumSize])
	return
}
