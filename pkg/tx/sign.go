package tx

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/zecsend/pkg/address"
	"github.com/Klingon-tech/zecsend/pkg/crypto"
	"github.com/Klingon-tech/zecsend/pkg/params"
	"github.com/Klingon-tech/zecsend/pkg/script"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ErrKeyMismatch is returned when an input is not controlled by the signing key.
var ErrKeyMismatch = errors.New("input not controlled by signing key")

// sigVerifier checks signatures produced by sign and accepted by Verify.
var sigVerifier crypto.Verifier = crypto.ECDSAVerifier{}

// Signed is a fully signed transaction.
type Signed struct {
	// Signatures holds one DER signature per input, without the sighash byte.
	Signatures [][]byte
	PubKey     []byte
	Raw        []byte
	TxID       chainhash.Hash
}

// Hex returns the raw transaction as hex, ready for sendrawtransaction.
func (s *Signed) Hex() string {
	return hex.EncodeToString(s.Raw)
}

// Sign validates u and signs every input with key under consensus cp.
func Sign(u *Unsigned, key crypto.Signer, cp params.Consensus) (*Signed, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return sign(u.Height, u.Inputs, u.Outputs, key, cp)
}

// SignAndFinalize signs utxos and outputs with a hex private key and returns
// the raw transaction bytes. The fee is implied by the values.
func SignAndFinalize(privKeyHex string, utxos []UTXO, outputs []Output, height uint32, cp params.Consensus) ([]byte, error) {
	key, err := crypto.PrivateKeyFromHex(privKeyHex)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	if err := ValidateShape(utxos, outputs); err != nil {
		return nil, err
	}
	s, err := sign(height, utxos, outputs, key, cp)
	if err != nil {
		return nil, err
	}
	return s.Raw, nil
}

func sign(height uint32, inputs []UTXO, outputs []Output, key crypto.Signer, cp params.Consensus) (*Signed, error) {
	pub := key.PublicKey()
	pkh := crypto.Hash160(pub)
	for i, in := range inputs {
		a, err := address.Decode(in.Address)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if a.Hash != pkh {
			return nil, fmt.Errorf("input %d (%s): %w", i, in.Address, ErrKeyMismatch)
		}
	}

	ctx := NewSighashContext(cp, height, inputs, outputs)

	sigs := make([][]byte, len(inputs))
	sigScripts := make([][]byte, len(inputs))
	for i := range inputs {
		hash := ctx.SignatureHash(i)
		sig, err := key.Sign(hash[:])
		if err != nil {
			return nil, fmt.Errorf("sign input %d: %w", i, err)
		}
		// A signature that does not verify would produce a transaction the
		// network rejects.
		if !sigVerifier.Verify(hash[:], sig, pub) {
			panic(fmt.Sprintf("signature for input %d does not verify", i))
		}
		sigs[i] = sig
		sigScripts[i] = script.UnlockingScript(sig, pub)
	}

	raw := Serialize(cp, height, inputs, sigScripts, outputs)
	txid := ctx.TxID()

	logger.Debug().
		Str("txid", txid.String()).
		Str("consensus", cp.String()).
		Int("inputs", len(inputs)).
		Int("size", len(raw)).
		Msg("Signed transaction")

	return &Signed{
		Signatures: sigs,
		PubKey:     pub,
		Raw:        raw,
		TxID:       txid,
	}, nil
}
