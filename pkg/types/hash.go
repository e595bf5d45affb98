// Package types defines the value types shared by the transaction packages.
package types

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the length of a digest in bytes.
const HashSize = 32

// Hash is a 256-bit digest kept and printed in the order it was produced.
// Transaction ids use chainhash.Hash instead, which prints reversed.
type Hash [HashSize]byte

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// MarshalText makes Hash a hex string in JSON and config files.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText accepts 64 hex characters. Empty input yields the zero hash.
func (h *Hash) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*h = Hash{}
		return nil
	}
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash decodes 64 hex characters without reversing them.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if hex.DecodedLen(len(s)) != HashSize {
		return h, fmt.Errorf("hash must be %d hex characters, got %d", 2*HashSize, len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	return h, nil
}

// MustParseHash is ParseHash for package-level values. It panics on error.
func MustParseHash(s string) Hash {
	h, err := ParseHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
