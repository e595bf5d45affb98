package wallet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/zecsend/pkg/params"
)

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := NewKeystore(filepath.Join(t.TempDir(), "keystore"))
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	return ks
}

func createTestWallet(t *testing.T, ks *Keystore, name string, password []byte) {
	t.Helper()
	if err := ks.Create(name, params.MainNet, 0, testSeed(t), password, fastParams()); err != nil {
		t.Fatalf("Create(%q) error: %v", name, err)
	}
}

func TestKeystore_CreateAndLoad(t *testing.T) {
	ks := testKeystore(t)
	password := []byte("test-password")
	createTestWallet(t, ks, "mywallet", password)

	loaded, err := ks.Load("mywallet", password)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(loaded, testSeed(t)) {
		t.Error("loaded seed does not match original")
	}

	info, err := ks.Info("mywallet")
	if err != nil {
		t.Fatalf("Info() error: %v", err)
	}
	if info.Network != "mainnet" || info.Account != 0 || info.CreatedAt.IsZero() {
		t.Errorf("Info() = %+v", info)
	}
}

func TestKeystore_Errors(t *testing.T) {
	ks := testKeystore(t)
	createTestWallet(t, ks, "wallet", []byte("correct"))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", ks.Create("wallet", params.MainNet, 0, testSeed(t), []byte("p"), fastParams()), ErrWalletExists},
		{"wrong password", func() error { _, err := ks.Load("wallet", []byte("wrong")); return err }(), ErrWrongPassword},
		{"missing", func() error { _, err := ks.Load("ghost", []byte("p")); return err }(), ErrWalletNotFound},
		{"missing info", func() error { _, err := ks.Info("ghost"); return err }(), ErrWalletNotFound},
		{"delete missing", ks.Delete("ghost"), ErrWalletNotFound},
		{"path traversal", func() error { _, err := ks.Load("../etc/passwd", []byte("p")); return err }(), ErrInvalidName},
		{"empty name", ks.Create("", params.MainNet, 0, testSeed(t), []byte("p"), fastParams()), ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
		})
	}
}

func TestKeystore_List(t *testing.T) {
	ks := testKeystore(t)

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected 0 wallets, got %d", len(names))
	}

	createTestWallet(t, ks, "beta", []byte("p"))
	createTestWallet(t, ks, "alpha", []byte("p"))
	os.WriteFile(filepath.Join(ks.Path(), "notes.txt"), []byte("x"), 0600)

	names, err = ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("List() = %v, want [alpha beta]", names)
	}
}

func TestKeystore_Delete(t *testing.T) {
	ks := testKeystore(t)
	createTestWallet(t, ks, "todelete", []byte("p"))

	if err := ks.Delete("todelete"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := ks.Load("todelete", []byte("p")); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("wallet should be deleted, err = %v", err)
	}
}

func TestKeystore_AddAddress(t *testing.T) {
	ks := testKeystore(t)
	createTestWallet(t, ks, "wallet", []byte("p"))

	first := AddressEntry{Change: ChangeExternal, Index: 0, Label: "default", Address: derivationVectors[0].addr}
	if err := ks.AddAddress("wallet", first); err != nil {
		t.Fatalf("AddAddress() error: %v", err)
	}
	// Same path and address again is a no-op.
	if err := ks.AddAddress("wallet", first); err != nil {
		t.Fatalf("idempotent AddAddress() error: %v", err)
	}
	// Same path, different address is rejected.
	clash := first
	clash.Address = derivationVectors[1].addr
	if err := ks.AddAddress("wallet", clash); err == nil {
		t.Error("should reject a second address on the same path")
	}

	addrs, err := ks.ListAddresses("wallet")
	if err != nil {
		t.Fatalf("ListAddresses() error: %v", err)
	}
	if len(addrs) != 1 || addrs[0] != first {
		t.Fatalf("ListAddresses() = %+v", addrs)
	}

	next, _ := ks.NextIndex("wallet", ChangeExternal)
	if next != 1 {
		t.Errorf("NextIndex(external) = %d, want 1", next)
	}
	next, _ = ks.NextIndex("wallet", ChangeInternal)
	if next != 0 {
		t.Errorf("NextIndex(internal) = %d, want 0", next)
	}
}

func TestKeystore_SetNextIndex(t *testing.T) {
	ks := testKeystore(t)
	createTestWallet(t, ks, "wallet", []byte("p"))

	if err := ks.SetNextIndex("wallet", ChangeInternal, 7); err != nil {
		t.Fatalf("SetNextIndex() error: %v", err)
	}
	if err := ks.SetNextIndex("wallet", ChangeExternal, 3); err != nil {
		t.Fatalf("SetNextIndex() error: %v", err)
	}
	ext, _ := ks.NextIndex("wallet", ChangeExternal)
	chg, _ := ks.NextIndex("wallet", ChangeInternal)
	if ext != 3 || chg != 7 {
		t.Errorf("indices = %d/%d, want 3/7", ext, chg)
	}
	if _, err := ks.NextIndex("ghost", ChangeExternal); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("NextIndex on missing wallet err = %v", err)
	}
}

func TestKeystore_FilePermissions(t *testing.T) {
	ks := testKeystore(t)
	createTestWallet(t, ks, "secure", []byte("p"))

	info, err := os.Stat(filepath.Join(ks.Path(), "secure.wallet"))
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("wallet file should be 0600, got %o", perm)
	}
	if _, err := os.Stat(filepath.Join(ks.Path(), "secure.wallet.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestKeystore_UnsupportedVersion(t *testing.T) {
	ks := testKeystore(t)
	os.WriteFile(filepath.Join(ks.Path(), "old.wallet"), []byte(`{"version":7}`), 0600)
	if _, err := ks.Info("old"); err == nil {
		t.Error("unsupported version should fail")
	}
}
