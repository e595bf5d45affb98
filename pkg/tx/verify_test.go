package tx

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/zecsend/pkg/crypto"
)

func TestVerify_PinnedVectors(t *testing.T) {
	fees := []uint64{10_000, 25_000, 10_000}
	for i, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			d, err := DecodeHex(v.raw)
			if err != nil {
				t.Fatal(err)
			}
			fee, err := d.Verify(NewUTXOSet(v.inputs(t)))
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if fee != fees[i] {
				t.Errorf("fee = %d, want %d", fee, fees[i])
			}
		})
	}
}

func TestVerify_Errors(t *testing.T) {
	v := vectors[0]
	decode := func() *Decoded {
		d, err := DecodeHex(v.raw)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	t.Run("missing utxo", func(t *testing.T) {
		if _, err := decode().Verify(NewUTXOSet(nil)); !errors.Is(err, ErrInputNotFound) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("wrong amount", func(t *testing.T) {
		u := sampleUTXO(t)
		u.Value++
		if _, err := decode().Verify(NewUTXOSet([]UTXO{u})); !errors.Is(err, ErrInvalidSig) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("wrong owner", func(t *testing.T) {
		u := sampleUTXO(t)
		u.Address = toAddr
		if _, err := decode().Verify(NewUTXOSet([]UTXO{u})); !errors.Is(err, ErrScriptMismatch) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("tampered output", func(t *testing.T) {
		d := decode()
		d.Outputs[1].Value++
		if _, err := d.Verify(NewUTXOSet(v.inputs(t))); !errors.Is(err, ErrInvalidSig) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("sighash type", func(t *testing.T) {
		d := decode()
		ss := d.Inputs[0].SigScript
		// Byte before the pubkey push is the sighash type.
		ss[1+int(ss[0])-1] = 0x81
		if _, err := d.Verify(NewUTXOSet(v.inputs(t))); !errors.Is(err, ErrUnsupportedSigHash) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("garbage sig script", func(t *testing.T) {
		d := decode()
		d.Inputs[0].SigScript = []byte{0x05, 0x01}
		if _, err := d.Verify(NewUTXOSet(v.inputs(t))); !errors.Is(err, ErrMalformedSigScript) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("sequence", func(t *testing.T) {
		d := decode()
		d.Inputs[0].Sequence = 0
		if _, err := d.Verify(NewUTXOSet(v.inputs(t))); !errors.Is(err, ErrUnsupportedSequence) {
			t.Errorf("err = %v", err)
		}
	})
}

type rejectAll struct{ calls int }

func (r *rejectAll) Verify(_, _, _ []byte) bool {
	r.calls++
	return false
}

func TestVerifyWith(t *testing.T) {
	v := vectors[2]
	d, err := DecodeHex(v.raw)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.VerifyWith(NewUTXOSet(v.inputs(t)), crypto.ECDSAVerifier{}); err != nil {
		t.Fatalf("VerifyWith(ECDSAVerifier): %v", err)
	}

	r := &rejectAll{}
	if _, err := d.VerifyWith(NewUTXOSet(v.inputs(t)), r); !errors.Is(err, ErrInvalidSig) {
		t.Errorf("err = %v, want ErrInvalidSig", err)
	}
	if r.calls != 1 {
		t.Errorf("verifier called %d times, want 1 (stop at first failure)", r.calls)
	}
}
