package address

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/Klingon-tech/zecsend/pkg/params"
)

const (
	fromMain = "t1NdvKvSnnBoJ7D9nfJSX5kK7GEGNs1bY4S"
	toMain   = "t1UYsZVJkLPeMjxEtACvSxfWuNmddpWfxzs"
	fromTest = "tmEUfekwCArJoFTMEL2kFwQyrsDMCNX5ZFf"
	p2shMain = "t3PKwFTwEL67gCNrDnQ77WNg3QkZ6NNb1Xt"

	fromSecret = "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35"
	fromPub    = "0339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2"
	fromHash   = "3442193e1bb70916e914552172cd4e2dbc9df811"
)

func mustHash(t *testing.T, s string) [HashSize]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		t.Fatalf("bad hash %q", s)
	}
	var h [HashSize]byte
	copy(h[:], b)
	return h
}

func TestEncode_KnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		hash   string
		prefix [2]byte
		want   string
	}{
		{"mainnet from", fromHash, params.MainNet.PubKeyHashAddrID, fromMain},
		{"mainnet to", "751e76e8199196d454941c45d1b3a323f1433bd6", params.MainNet.PubKeyHashAddrID, toMain},
		{"testnet from", fromHash, params.TestNet.PubKeyHashAddrID, fromTest},
		{"zero hash", "0000000000000000000000000000000000000000", params.MainNet.PubKeyHashAddrID, "t1Hsc1LR8yKnbbe3twRp88p6vFfC5t7DLbs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(mustHash(t, tt.hash), tt.prefix); got != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecode_Roundtrip(t *testing.T) {
	for _, net := range []*params.Network{params.MainNet, params.TestNet} {
		for i := 0; i < 50; i++ {
			var h [HashSize]byte
			if _, err := rand.Read(h[:]); err != nil {
				t.Fatal(err)
			}
			s := Encode(h, net.PubKeyHashAddrID)
			a, err := DecodeForNetwork(s, net)
			if err != nil {
				t.Fatalf("DecodeForNetwork(%s): %v", s, err)
			}
			if a.Hash != h || a.Prefix != net.PubKeyHashAddrID {
				t.Fatalf("roundtrip mismatch for %s", s)
			}
			if a.String() != s {
				t.Fatalf("String() = %s, want %s", a.String(), s)
			}
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want error
	}{
		{"empty", "", ErrInvalidFormat},
		{"not base58", "t1NdvKvSnnBoJ7D9nfJSX5kK7GEGNs1bY40", ErrInvalidFormat},
		{"truncated", fromMain[:30], ErrInvalidFormat},
		{"no checksum", "8o6iGspFVjpR5qGjJFyp62sML3Ts5J", ErrInvalidFormat},
		{"bad checksum", "t1NdvKvSnnBoJ7D9nfJSX5kK7GEGNs1bY4T", ErrChecksum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.addr)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(%q) err = %v, want %v", tt.addr, err, tt.want)
			}
		})
	}
}

func TestDecodeForNetwork_WrongNetwork(t *testing.T) {
	if _, err := DecodeForNetwork(fromTest, params.MainNet); !errors.Is(err, ErrWrongNetwork) {
		t.Errorf("testnet address on mainnet: err = %v, want ErrWrongNetwork", err)
	}
	if _, err := DecodeForNetwork(p2shMain, params.MainNet); !errors.Is(err, ErrWrongNetwork) {
		t.Errorf("p2sh address: err = %v, want ErrWrongNetwork", err)
	}
}

func TestIsValid(t *testing.T) {
	main := params.MainNet.PubKeyHashAddrID
	test := params.TestNet.PubKeyHashAddrID
	tests := []struct {
		addr   string
		prefix [2]byte
		want   bool
	}{
		{fromMain, main, true},
		{toMain, main, true},
		{fromTest, test, true},
		{fromTest, main, false},
		{fromMain, test, false},
		{p2shMain, main, false},
		{"t1NdvKvSnnBoJ7D9nfJSX5kK7GEGNs1bY4T", main, false},
		{"", main, false},
		{"0OIl", main, false},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", main, false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.addr, tt.prefix); got != tt.want {
			t.Errorf("IsValid(%q, %x) = %v, want %v", tt.addr, tt.prefix, got, tt.want)
		}
	}
}

func TestFromPublicKey(t *testing.T) {
	pub, _ := hex.DecodeString(fromPub)
	a := FromPublicKey(pub, params.MainNet.PubKeyHashAddrID)
	if a.String() != fromMain {
		t.Errorf("FromPublicKey() = %s, want %s", a, fromMain)
	}
	if n, ok := a.Network(); !ok || n != params.MainNet {
		t.Errorf("Network() = %v, %v", n, ok)
	}
}

func TestFromPrivateKey(t *testing.T) {
	priv, _ := hex.DecodeString(fromSecret)
	a, err := FromPrivateKey(priv, params.TestNet.PubKeyHashAddrID)
	if err != nil {
		t.Fatalf("FromPrivateKey: %v", err)
	}
	if a.String() != fromTest {
		t.Errorf("FromPrivateKey() = %s, want %s", a, fromTest)
	}

	if _, err := FromPrivateKey(make([]byte, 32), params.MainNet.PubKeyHashAddrID); err == nil {
		t.Error("expected error for zero key")
	}
}
