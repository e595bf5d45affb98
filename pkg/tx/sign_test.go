package tx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/Klingon-tech/zecsend/pkg/crypto"
)

func TestSign_PinnedVectors(t *testing.T) {
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			inputs := v.inputs(t)
			raw, err := SignAndFinalize(sampleSecret, inputs, v.outputs, sampleHeight, nu61)
			if err != nil {
				t.Fatalf("SignAndFinalize: %v", err)
			}
			if got := hex.EncodeToString(raw); got != v.raw {
				t.Errorf("raw =\n%s\nwant\n%s", got, v.raw)
			}
		})
	}
}

func TestSign_Unsigned(t *testing.T) {
	v := vectors[0]
	u := &Unsigned{Height: sampleHeight, Inputs: v.inputs(t), Outputs: v.outputs, Fee: 10_000}

	s, err := Sign(u, sampleKey(t), nu61)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if s.Hex() != v.raw {
		t.Errorf("Hex() = %s, want %s", s.Hex(), v.raw)
	}
	if s.TxID.String() != v.txid {
		t.Errorf("TxID = %s, want %s", s.TxID, v.txid)
	}
	if len(s.Signatures) != 1 || hex.EncodeToString(s.Signatures[0]) != v.sig[0] {
		t.Errorf("signature = %x, want %s", s.Signatures, v.sig[0])
	}
	if hex.EncodeToString(s.PubKey) != samplePub {
		t.Errorf("PubKey = %x", s.PubKey)
	}
}

func TestSign_SignaturesVerify(t *testing.T) {
	v := vectors[2]
	inputs := v.inputs(t)
	u := &Unsigned{Height: sampleHeight, Inputs: inputs, Outputs: v.outputs, Fee: 10_000}
	s, err := Sign(u, sampleKey(t), nu61)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	c := NewSighashContext(nu61, sampleHeight, inputs, v.outputs)
	for i, sig := range s.Signatures {
		if got := hex.EncodeToString(sig); got != v.sig[i] {
			t.Errorf("signature %d = %s, want %s", i, got, v.sig[i])
		}
		h := c.SignatureHash(i)
		if !crypto.VerifySignature(h[:], sig, s.PubKey) {
			t.Errorf("signature %d does not verify", i)
		}
	}
}

func TestSign_Deterministic(t *testing.T) {
	v := vectors[1]
	a, err := SignAndFinalize(sampleSecret, v.inputs(t), v.outputs, sampleHeight, nu61)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SignAndFinalize(sampleSecret, v.inputs(t), v.outputs, sampleHeight, nu61)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("signing twice produced different transactions")
	}
}

func TestSign_Unbalanced(t *testing.T) {
	v := vectors[0]
	u := &Unsigned{Height: sampleHeight, Inputs: v.inputs(t), Outputs: v.outputs, Fee: 9_999}
	if _, err := Sign(u, sampleKey(t), nu61); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("err = %v, want ErrUnbalanced", err)
	}
}

func TestSign_KeyMismatch(t *testing.T) {
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	v := vectors[0]
	u := &Unsigned{Height: sampleHeight, Inputs: v.inputs(t), Outputs: v.outputs, Fee: 10_000}
	if _, err := Sign(u, other, nu61); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("err = %v, want ErrKeyMismatch", err)
	}
}

func TestSignAndFinalize_BadKey(t *testing.T) {
	v := vectors[0]
	for _, k := range []string{"", "zz", "00", hex.EncodeToString(make([]byte, 32))} {
		if _, err := SignAndFinalize(k, v.inputs(t), v.outputs, sampleHeight, nu61); !errors.Is(err, crypto.ErrInvalidPrivateKey) {
			t.Errorf("key %q: err = %v, want ErrInvalidPrivateKey", k, err)
		}
	}
}

func TestSignAndFinalize_InvalidShape(t *testing.T) {
	v := vectors[0]
	if _, err := SignAndFinalize(sampleSecret, nil, v.outputs, sampleHeight, nu61); !errors.Is(err, ErrNoInputs) {
		t.Errorf("err = %v, want ErrNoInputs", err)
	}
	bad := []Output{PayTo("garbage", 1)}
	if _, err := SignAndFinalize(sampleSecret, v.inputs(t), bad, sampleHeight, nu61); !errors.Is(err, ErrOutputAddress) {
		t.Errorf("err = %v, want ErrOutputAddress", err)
	}
}

func TestSign_Testnet(t *testing.T) {
	in := utxo(t, fromTestAddr, sampleTxID, 1, 100_000)
	outs := []Output{PayTo(fromTestAddr, 40_000), PayTo(toTestAddr, 50_000)}
	raw, err := SignAndFinalize(sampleSecret, []UTXO{in}, outs, sampleHeight, nu61)
	if err != nil {
		t.Fatalf("SignAndFinalize: %v", err)
	}
	// Scripts only commit to the key hash, so the bytes match mainnet.
	if hex.EncodeToString(raw) != vectors[0].raw {
		t.Error("testnet transaction should serialize identically to mainnet")
	}
}

// countingSigner wraps a key and records every digest it signs.
type countingSigner struct {
	crypto.Signer
	digests [][]byte
}

func (s *countingSigner) Sign(hash []byte) ([]byte, error) {
	s.digests = append(s.digests, append([]byte(nil), hash...))
	return s.Signer.Sign(hash)
}

func TestSign_CustomSigner(t *testing.T) {
	v := vectors[2]
	inputs := v.inputs(t)
	u := &Unsigned{Height: sampleHeight, Inputs: inputs, Outputs: v.outputs, Fee: 10_000}

	signer := &countingSigner{Signer: sampleKey(t)}
	s, err := Sign(u, signer, nu61)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if s.Hex() != v.raw {
		t.Errorf("raw differs from the private key signer")
	}
	if len(signer.digests) != len(inputs) {
		t.Fatalf("signed %d digests, want %d", len(signer.digests), len(inputs))
	}
	c := NewSighashContext(nu61, sampleHeight, inputs, v.outputs)
	for i, d := range signer.digests {
		if h := c.SignatureHash(i); !bytes.Equal(d, h[:]) {
			t.Errorf("digest %d = %x, want %x", i, d, h)
		}
	}
}

// badSigner returns a well-formed signature from a different key.
type badSigner struct {
	crypto.Signer
	other crypto.Signer
}

func (s badSigner) Sign(hash []byte) ([]byte, error) { return s.other.Sign(hash) }

func TestSign_SelfCheckPanics(t *testing.T) {
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	v := vectors[0]
	u := &Unsigned{Height: sampleHeight, Inputs: v.inputs(t), Outputs: v.outputs, Fee: 10_000}

	defer func() {
		if recover() == nil {
			t.Error("a signature that does not verify should panic")
		}
	}()
	Sign(u, badSigner{Signer: sampleKey(t), other: other}, nu61)
}
