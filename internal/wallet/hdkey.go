package wallet

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/tyler-smith/go-bip32"
)

// Addresses live at m/44'/coin'/account'/change/index, with the coin type
// taken from the network (133 mainnet, 1 testnet).
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	ChangeExternal = 0 // receive chain
	ChangeInternal = 1 // change chain
)

var errWatchOnly = errors.New("watch-only key has no private part")

func harden(i uint32) uint32 { return bip32.FirstHardenedChild + i }

// HDKey is a BIP-32 extended key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey derives the master key of a 64-byte BIP-39 seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	return &HDKey{master}, nil
}

// DeriveChild derives one level. Indices from bip32.FirstHardenedChild up
// are hardened.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	return k.DerivePath(index)
}

// DerivePath derives along indices, left to right.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	cur := k.key
	for _, i := range indices {
		next, err := cur.NewChildKey(i)
		if err != nil {
			return nil, fmt.Errorf("derive child %d at depth %d: %w", i, cur.Depth, err)
		}
		cur = next
	}
	return &HDKey{cur}, nil
}

// DeriveAccount returns m/44'/coin'/account'.
func (k *HDKey) DeriveAccount(net *params.Network, account uint32) (*HDKey, error) {
	return k.DerivePath(PurposeBIP44, harden(net.CoinType), harden(account))
}

// DeriveAddress returns the key of one address, starting from the master.
func (k *HDKey) DeriveAddress(net *params.Network, account, change, index uint32) (*HDKey, error) {
	return k.DerivePath(PurposeBIP44, harden(net.CoinType), harden(account), change, index)
}

// DerivationPath formats the BIP-44 path of an address key.
func DerivationPath(net *params.Network, account, change, index uint32) string {
	return fmt.Sprintf("m/44'/%d'/%d'/%d/%d", net.CoinType, account, change, index)
}

// PrivateKeyBytes returns a copy of the 32-byte secret, or nil for a
// watch-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 may hold the secret as 33 bytes with a zero prefix, or
	// shorter than 32 when it has leading zeros.
	raw := k.key.Key
	if len(raw) > 32 {
		raw = raw[len(raw)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(raw):], raw)
	return out
}

// PublicKeyBytes returns the 33-byte compressed public key.
func (k *HDKey) PublicKeyBytes() []byte {
	if k.key.IsPrivate {
		return k.key.PublicKey().Key
	}
	return k.key.Key
}

// Signer returns the secp256k1 key used to sign inputs of this address.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	if !k.key.IsPrivate {
		return nil, errWatchOnly
	}
	return crypto.PrivateKeyFromBytes(k.PrivateKeyBytes())
}

// Address returns the P2PKH t-address of the key on net.
func (k *HDKey) Address(net *params.Network) string {
	return address.FromPublicKey(k.PublicKeyBytes(), net.PubKeyHashAddrID).String()
}

func (k *HDKey) IsPrivate() bool { return k.key.IsPrivate }

// Depth is 0 for the master and 5 for an address key.
func (k *HDKey) Depth() uint8 { return k.key.Depth }

// Neuter drops the private part, leaving a key that can still derive
// non-hardened children.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{k.key.PublicKey()}
}
