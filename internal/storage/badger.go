package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BadgerDB is the on-disk DB used for the pending ledger.
type BadgerDB struct {
	db *badger.DB
}

// NewBadger opens (or creates) a Badger directory at path.
func NewBadger(path string) (*BadgerDB, error) {
	// The ledger holds a few hundred small keys at most.
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithValueLogFileSize(16 << 20)

	db, err := badger.Open(opts)
	switch {
	case err == nil:
		return &BadgerDB{db: db}, nil
	case strings.Contains(err.Error(), "Cannot acquire directory lock"):
		return nil, fmt.Errorf("pending ledger %s is in use by another zecsend-cli: %w", path, err)
	default:
		return nil, fmt.Errorf("open pending ledger %s: %w", path, err)
	}
}

func (b *BadgerDB) Get(key []byte) (val []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, wrapBadger("get", err)
}

func (b *BadgerDB) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *BadgerDB) Put(key, value []byte) error {
	return wrapBadger("put", b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}))
}

func (b *BadgerDB) Delete(key []byte) error {
	return wrapBadger("delete", b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	}))
}

// ForEach visits keys with the given prefix in order. Keys and values are
// copies, so fn may keep them.
func (b *BadgerDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   16,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewBatch returns a batch backed by one read-write Badger transaction.
func (b *BadgerDB) NewBatch() Batch {
	return badgerBatch{b.db.NewTransaction(true)}
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}

type badgerBatch struct {
	txn *badger.Txn
}

func (bb badgerBatch) Put(key, value []byte) error { return bb.txn.Set(key, value) }

func (bb badgerBatch) Delete(key []byte) error { return bb.txn.Delete(key) }

func (bb badgerBatch) Commit() error { return wrapBadger("commit", bb.txn.Commit()) }

func wrapBadger(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("badger %s: %w", op, err)
	}
}
