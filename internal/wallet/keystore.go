package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/Klingon-tech/zecsend/pkg/params"
)

// walletExt is the file extension of keystore files.
const walletExt = ".wallet"

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrInvalidName    = errors.New("invalid wallet name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// keystoreFile is the on-disk JSON format for an encrypted wallet.
type keystoreFile struct {
	Version           int            `json:"version"`
	CreatedAt         time.Time      `json:"created_at"`
	Network           string         `json:"network"`
	Account           uint32         `json:"account"`
	EncryptedSeed     []byte         `json:"encrypted_seed"`
	Addresses         []AddressEntry `json:"addresses"`
	NextChangeIndex   uint32         `json:"next_change_index"`   // BIP-44 internal chain index.
	NextExternalIndex uint32         `json:"next_external_index"` // BIP-44 external chain index.
}

// AddressEntry stores metadata for a derived address.
type AddressEntry struct {
	Change  uint32 `json:"change"` // 0=external (deposit), 1=internal (change)
	Index   uint32 `json:"index"`
	Label   string `json:"label,omitempty"`
	Address string `json:"address"`
}

// Info is the unencrypted metadata of a wallet.
type Info struct {
	Name              string
	Network           string
	Account           uint32
	CreatedAt         time.Time
	Addresses         []AddressEntry
	NextExternalIndex uint32
	NextChangeIndex   uint32
}

// Keystore manages encrypted key storage on disk.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

// Path returns the keystore directory.
func (ks *Keystore) Path() string {
	return ks.path
}

// walletPath returns the file path for a wallet by name.
func (ks *Keystore) walletPath(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(ks.path, name+walletExt), nil
}

// Create creates a new encrypted wallet file holding seed for the given
// network and BIP-44 account.
func (ks *Keystore) Create(name string, net *params.Network, account uint32, seed, password []byte, encParams EncryptionParams) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	encrypted, err := Encrypt(seed, password, encParams)
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}

	kf := keystoreFile{
		Version:       1,
		CreatedAt:     time.Now().UTC(),
		Network:       net.Name,
		Account:       account,
		EncryptedSeed: encrypted,
		Addresses:     []AddressEntry{},
	}
	return ks.writeFile(path, &kf)
}

// Load decrypts a wallet and returns the seed bytes.
func (ks *Keystore) Load(name string, password []byte) ([]byte, error) {
	_, kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	seed, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	return seed, nil
}

// Info returns the metadata of a wallet without decrypting it.
func (ks *Keystore) Info(name string) (*Info, error) {
	_, kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return &Info{
		Name:              name,
		Network:           kf.Network,
		Account:           kf.Account,
		CreatedAt:         kf.CreatedAt,
		Addresses:         kf.Addresses,
		NextExternalIndex: kf.NextExternalIndex,
		NextChangeIndex:   kf.NextChangeIndex,
	}, nil
}

// AddAddress records a derived address in the wallet metadata and advances
// the next index of its chain past it.
func (ks *Keystore) AddAddress(name string, entry AddressEntry) error {
	path, kf, err := ks.read(name)
	if err != nil {
		return err
	}

	// Check for duplicate derivation path or duplicate address.
	for _, existing := range kf.Addresses {
		if existing.Change == entry.Change && existing.Index == entry.Index {
			// Idempotent insert if metadata points to the same address.
			if existing.Address == entry.Address {
				return nil
			}
			return fmt.Errorf("address path change=%d index=%d already exists", entry.Change, entry.Index)
		}
		if existing.Address == entry.Address {
			return nil
		}
	}

	kf.Addresses = append(kf.Addresses, entry)
	next := &kf.NextExternalIndex
	if entry.Change == ChangeInternal {
		next = &kf.NextChangeIndex
	}
	if entry.Index >= *next {
		*next = entry.Index + 1
	}
	return ks.writeFile(path, kf)
}

// ListAddresses returns the address entries for a wallet.
func (ks *Keystore) ListAddresses(name string) ([]AddressEntry, error) {
	_, kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return kf.Addresses, nil
}

// NextIndex returns the next unused index on the given BIP-44 chain.
func (ks *Keystore) NextIndex(name string, change uint32) (uint32, error) {
	_, kf, err := ks.read(name)
	if err != nil {
		return 0, err
	}
	if change == ChangeInternal {
		return kf.NextChangeIndex, nil
	}
	return kf.NextExternalIndex, nil
}

// SetNextIndex sets the next unused index on the given BIP-44 chain.
func (ks *Keystore) SetNextIndex(name string, change, idx uint32) error {
	path, kf, err := ks.read(name)
	if err != nil {
		return err
	}
	if change == ChangeInternal {
		kf.NextChangeIndex = idx
	} else {
		kf.NextExternalIndex = idx
	}
	return ks.writeFile(path, kf)
}

// List returns the names of all wallet files in the keystore, sorted.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := filepath.Ext(name); ext == walletExt {
			names = append(names, name[:len(name)-len(ext)])
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	return os.Remove(path)
}

// writeFile replaces the wallet file atomically.
func (ks *Keystore) writeFile(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func (ks *Keystore) read(name string) (string, *keystoreFile, error) {
	path, err := ks.walletPath(name)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	if err != nil {
		return "", nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return "", nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != 1 {
		return "", nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return path, &kf, nil
}
