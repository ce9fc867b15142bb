package storage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aleksaelezovic/myna/pkg/store"
)

// BadgerStorage implements store.Storage using BadgerDB
type BadgerStorage struct {
	db *badger.DB
}

// Options configures how the database is opened
type Options struct {
	// InMemory keeps everything in memory; Path is ignored
	InMemory bool
	// Logger receives badger's own log output at debug level. Nil disables it.
	Logger *slog.Logger
}

// NewBadgerStorage opens (or creates) a BadgerDB-backed storage at path
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	return OpenBadgerStorage(path, Options{})
}

// NewInMemoryBadgerStorage creates a storage that is discarded on Close
func NewInMemoryBadgerStorage() (*BadgerStorage, error) {
	return OpenBadgerStorage("", Options{InMemory: true})
}

// OpenBadgerStorage opens a storage with explicit options
func OpenBadgerStorage(path string, o Options) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path).WithInMemory(o.InMemory)
	opts.Logger = nil
	if o.Logger != nil {
		opts.Logger = slogAdapter{o.Logger.With("component", "badger")}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// slogAdapter routes badger.Logger output to slog
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Errorf(format string, args ...any) {
	a.log.Error(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Warningf(format string, args ...any) {
	a.log.Warn(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Infof(format string, args ...any) {
	a.log.Debug(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Debugf(format string, args ...any) {
	a.log.Debug(fmt.Sprintf(format, args...))
}

// Begin starts a new transaction
func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	return &badgerTxn{txn: s.db.NewTransaction(writable), writable: writable}, nil
}

// Close closes the storage
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk
func (s *BadgerStorage) Sync() error {
	return s.db.Sync()
}

type badgerTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTxn) Get(table store.Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(store.PrefixKey(table, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Set(store.PrefixKey(table, key), value)
}

func (t *badgerTxn) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Delete(store.PrefixKey(table, key))
}

// Scan visits the keys of table in [start, end)
func (t *badgerTxn) Scan(table store.Table, start, end []byte) (store.Iterator, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = store.TablePrefix(table)

	it := &badgerIterator{
		it:   t.txn.NewIterator(opts),
		seek: store.PrefixKey(table, start),
		skip: len(opts.Prefix),
	}
	if end != nil {
		it.end = store.PrefixKey(table, end)
	}
	return it, nil
}

func (t *badgerTxn) Commit() error {
	return t.txn.Commit()
}

// Rollback discards the transaction; safe to call after Commit
func (t *badgerTxn) Rollback() error {
	t.txn.Discard()
	return nil
}

type badgerIterator struct {
	it      *badger.Iterator
	seek    []byte
	end     []byte
	skip    int
	started bool
	valid   bool
}

func (i *badgerIterator) Next() bool {
	if i.started {
		i.it.Next()
	} else {
		i.it.Seek(i.seek)
		i.started = true
	}

	i.valid = i.it.Valid() && (i.end == nil || bytes.Compare(i.it.Item().Key(), i.end) < 0)
	return i.valid
}

func (i *badgerIterator) Key() []byte {
	if !i.valid {
		return nil
	}
	return i.it.Item().Key()[i.skip:]
}

func (i *badgerIterator) Value() ([]byte, error) {
	if !i.valid {
		return nil, store.ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

func (i *badgerIterator) Close() error {
	i.it.Close()
	return nil
}
