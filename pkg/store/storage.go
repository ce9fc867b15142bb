package store

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error

	// Sync flushes writes to disk
	Sync() error
}

// Transaction represents a database transaction with snapshot isolation
type Transaction interface {
	// Get retrieves a value by key
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair
	Set(table Table, key, value []byte) error

	// Delete removes a key
	Delete(table Table, key []byte) error

	// Scan iterates over the keys of table in [start, end).
	// A nil start begins at the first key, a nil end runs to the last one.
	Scan(table Table, start, end []byte) (Iterator, error)

	// Commit commits the transaction
	Commit() error

	// Rollback discards the transaction. Calling it after Commit is a no-op.
	Rollback() error
}

// Iterator iterates over key-value pairs
type Iterator interface {
	// Next advances to the next item
	Next() bool

	// Key returns the current key without the table prefix. The slice is
	// only valid until the next call to Next.
	Key() []byte

	// Value returns a copy of the current value
	Value() ([]byte, error)

	// Close closes the iterator
	Close() error
}

// Table is a logical keyspace inside the storage
type Table byte

const (
	// TableRuns maps run ID -> encoded Run
	TableRuns Table = iota

	// TableRunsByTime maps creation time (big-endian unix nanos) + run ID -> nothing
	TableRunsByTime

	// Total number of tables
	TableCount
)

func (t Table) String() string {
	switch t {
	case TableRuns:
		return "runs"
	case TableRunsByTime:
		return "runs_by_time"
	default:
		return "unknown"
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	prefix := TablePrefix(table)
	result := make([]byte, len(prefix)+len(key))
	copy(result, prefix)
	copy(result[len(prefix):], key)
	return result
}

// Update runs fn in a writable transaction and commits it when fn succeeds
func Update(s Storage, fn func(Transaction) error) error {
	txn, err := s.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// View runs fn in a read-only transaction
func View(s Storage, fn func(Transaction) error) error {
	txn, err := s.Begin(false)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	return fn(txn)
}
