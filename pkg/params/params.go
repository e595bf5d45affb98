// Package params defines Zcash network and consensus parameters.
package params

import (
	"fmt"
	"strings"
)

// Network holds the per-network constants needed for address handling and
// node connectivity.
type Network struct {
	Name string

	// PubKeyHashAddrID is the two-byte Base58Check prefix of t-addresses
	// that pay to a public key hash ("t1" on mainnet, "tm" on testnet).
	PubKeyHashAddrID [2]byte

	// ScriptHashAddrID is the two-byte prefix of pay-to-script-hash addresses.
	ScriptHashAddrID [2]byte

	DefaultRPCPort int

	// CoinType is the SLIP-44 coin type used for HD derivation.
	CoinType uint32
}

var (
	// MainNet is the Zcash production network.
	MainNet = &Network{
		Name:             "mainnet",
		PubKeyHashAddrID: [2]byte{0x1C, 0xB8},
		ScriptHashAddrID: [2]byte{0x1C, 0xBD},
		DefaultRPCPort:   8232,
		CoinType:         133,
	}

	// TestNet is the public Zcash test network.
	TestNet = &Network{
		Name:             "testnet",
		PubKeyHashAddrID: [2]byte{0x1D, 0x25},
		ScriptHashAddrID: [2]byte{0x1C, 0xBA},
		DefaultRPCPort:   18232,
		CoinType:         1,
	}
)

// NetworkByName returns the network with the given name (case-insensitive).
func NetworkByName(name string) (*Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet", "main":
		return MainNet, nil
	case "testnet", "test":
		return TestNet, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}

// String returns the network name.
func (n *Network) String() string {
	return n.Name
}

// NetworkByPubKeyHashAddrID returns the network whose P2PKH address prefix
// equals id.
func NetworkByPubKeyHashAddrID(id [2]byte) (*Network, bool) {
	for _, n := range []*Network{MainNet, TestNet} {
		if n.PubKeyHashAddrID == id {
			return n, true
		}
	}
	return nil, false
}
