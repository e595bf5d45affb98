package wallet

import (
	"fmt"

	"github.com/Klingon-tech/zecsend/internal/log"
	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
)

// Wallet is an unlocked keystore wallet bound to one BIP-44 account.
type Wallet struct {
	Name    string
	Network *params.Network
	Account uint32

	ks      *Keystore
	account *HDKey
}

// Open decrypts the named wallet and derives its account key.
func Open(ks *Keystore, name string, password []byte) (*Wallet, error) {
	info, err := ks.Info(name)
	if err != nil {
		return nil, err
	}
	net, err := params.NetworkByName(info.Network)
	if err != nil {
		return nil, fmt.Errorf("wallet %q: %w", name, err)
	}
	seed, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	acct, err := master.DeriveAccount(net, info.Account)
	if err != nil {
		return nil, err
	}

	log.Wallet.Debug().Str("wallet", name).Str("network", net.Name).Uint32("account", info.Account).Msg("Wallet unlocked")
	return &Wallet{Name: name, Network: net, Account: info.Account, ks: ks, account: acct}, nil
}

// Key returns the private key at change/index of the wallet account.
func (w *Wallet) Key(change, index uint32) (*crypto.PrivateKey, error) {
	k, err := w.account.DerivePath(change, index)
	if err != nil {
		return nil, err
	}
	return k.Signer()
}

// Address returns the t-address at change/index of the wallet account.
func (w *Wallet) Address(change, index uint32) (string, error) {
	k, err := w.account.DerivePath(change, index)
	if err != nil {
		return "", err
	}
	return k.Address(w.Network), nil
}

// Path returns the derivation path of change/index.
func (w *Wallet) Path(change, index uint32) string {
	return DerivationPath(w.Network, w.Account, change, index)
}

// NewAddress derives the next unused external address, records it in the
// keystore and returns it.
func (w *Wallet) NewAddress(label string) (AddressEntry, error) {
	idx, err := w.ks.NextIndex(w.Name, ChangeExternal)
	if err != nil {
		return AddressEntry{}, err
	}
	addr, err := w.Address(ChangeExternal, idx)
	if err != nil {
		return AddressEntry{}, err
	}
	entry := AddressEntry{Change: ChangeExternal, Index: idx, Label: label, Address: addr}
	if err := w.ks.AddAddress(w.Name, entry); err != nil {
		return AddressEntry{}, err
	}
	log.Wallet.Info().Str("wallet", w.Name).Str("address", addr).Str("path", w.Path(ChangeExternal, idx)).Msg("New address")
	return entry, nil
}

// Create generates or imports a wallet: it derives the seed from mnemonic,
// stores it encrypted and records the first receiving address.
func Create(ks *Keystore, name string, net *params.Network, account uint32, mnemonic, passphrase string, password []byte, encParams EncryptionParams) (*Wallet, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	if err := ks.Create(name, net, account, seed, password, encParams); err != nil {
		return nil, err
	}
	w, err := Open(ks, name, password)
	if err != nil {
		return nil, err
	}
	if _, err := w.NewAddress("default"); err != nil {
		return nil, err
	}
	return w, nil
}
