package storage

import "strings"

// Namespace scopes a DB to the keys under "<part>/<part>/.../". The ledger
// keeps one namespace per wallet inside a single Badger directory.
//
// Keys seen by callers never include the namespace prefix. Closing a
// Namespace does not close the underlying DB.
type Namespace struct {
	db     DB
	prefix []byte
}

// NewNamespace scopes db to the given path parts.
func NewNamespace(db DB, parts ...string) *Namespace {
	return &Namespace{db: db, prefix: []byte(strings.Join(parts, "/") + "/")}
}

// Prefix returns the raw key prefix of the namespace.
func (n *Namespace) Prefix() []byte {
	return append([]byte(nil), n.prefix...)
}

func (n *Namespace) key(k []byte) []byte {
	full := make([]byte, 0, len(n.prefix)+len(k))
	return append(append(full, n.prefix...), k...)
}

func (n *Namespace) Get(key []byte) ([]byte, error) { return n.db.Get(n.key(key)) }

func (n *Namespace) Put(key, value []byte) error { return n.db.Put(n.key(key), value) }

func (n *Namespace) Delete(key []byte) error { return n.db.Delete(n.key(key)) }

func (n *Namespace) Has(key []byte) (bool, error) { return n.db.Has(n.key(key)) }

// ForEach walks the namespace keys starting with prefix.
func (n *Namespace) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	skip := len(n.prefix)
	return n.db.ForEach(n.key(prefix), func(key, value []byte) error {
		return fn(key[skip:], value)
	})
}

func (n *Namespace) NewBatch() Batch {
	return nsBatch{Batch: n.db.NewBatch(), ns: n}
}

// Close is a no-op.
func (n *Namespace) Close() error { return nil }

type nsBatch struct {
	Batch
	ns *Namespace
}

func (b nsBatch) Put(key, value []byte) error { return b.Batch.Put(b.ns.key(key), value) }

func (b nsBatch) Delete(key []byte) error { return b.Batch.Delete(b.ns.key(key)) }
