// Package crypto provides the hash functions and secp256k1 ECDSA signing
// used to build transparent Zcash transactions.
package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/Klingon-tech/zecsend/pkg/types"
	"github.com/dchest/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required by the address format
)

// PersonalizationSize is the BLAKE2b personalization length.
const PersonalizationSize = 16

// DoubleSHA256 computes SHA256(SHA256(data)).
func DoubleSHA256(data []byte) types.Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Hash160 computes RIPEMD160(SHA256(data)), the public key hash committed
// to by P2PKH scripts and addresses.
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

// NewPersonalHasher returns a BLAKE2b-256 hasher keyed with a personalization
// string. Shorter strings are zero-padded to 16 bytes.
func NewPersonalHasher(person []byte) hash.Hash {
	if len(person) > PersonalizationSize {
		panic(fmt.Sprintf("blake2b personalization must be at most %d bytes, got %d", PersonalizationSize, len(person)))
	}
	var p [PersonalizationSize]byte
	copy(p[:], person)
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: p[:]})
	if err != nil {
		// Only reachable with an invalid config, which is fixed above.
		panic(err)
	}
	return h
}

// PersonalHash computes BLAKE2b-256 with the given personalization over the
// concatenation of parts.
func PersonalHash(person []byte, parts ...[]byte) types.Hash {
	h := NewPersonalHasher(person)
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}
