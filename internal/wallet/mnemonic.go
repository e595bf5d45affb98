// Package wallet manages HD keys for transparent Zcash addresses: BIP-39
// mnemonics, BIP-44 derivation, the encrypted keystore and the ledger of
// outpoints spent by unconfirmed transactions.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// ErrInvalidMnemonic is returned for phrases that fail BIP-39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// entropyBits maps supported word counts to BIP-39 entropy sizes.
var entropyBits = map[int]int{12: 128, 15: 160, 18: 192, 21: 224, 24: 256}

// GenerateMnemonic creates a new BIP-39 mnemonic of the given word count
// (12, 15, 18, 21 or 24). Zero selects 24 words.
func GenerateMnemonic(words int) (string, error) {
	if words == 0 {
		words = 24
	}
	bits, ok := entropyBits[words]
	if !ok {
		return "", fmt.Errorf("unsupported mnemonic length %d", words)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic lowercases a phrase and collapses its whitespace.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic))
}

// SeedFromMnemonic derives a 512-bit seed from a mnemonic and optional passphrase
// using PBKDF2-SHA512 as specified in BIP-39.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	mnemonic = NormalizeMnemonic(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}
