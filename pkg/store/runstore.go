package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrChecksumMismatch is returned when a stored payload no longer matches its checksum
var ErrChecksumMismatch = errors.New("run payload checksum mismatch")

// RunStore persists runs in a Storage.
//
// Runs live in TableRuns keyed by ID. TableRunsByTime indexes them by
// creation time so List can return the newest first without decoding every
// record.
type RunStore struct {
	storage Storage
}

// NewRunStore creates a run store over storage
func NewRunStore(storage Storage) *RunStore {
	return &RunStore{storage: storage}
}

// Close closes the underlying storage
func (s *RunStore) Close() error {
	return s.storage.Close()
}

// Put stores run, replacing any run with the same ID. The payload checksum
// is computed here.
func (s *RunStore) Put(run *Run) error {
	if run.ID == "" {
		return errors.New("run has no ID")
	}
	run.Checksum = PayloadChecksum(run.Payload)

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	return Update(s.storage, func(txn Transaction) error {
		previous, err := getRun(txn, run.ID)
		switch {
		case err == nil:
			if err := txn.Delete(TableRunsByTime, timeKey(previous)); err != nil {
				return err
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		if err := txn.Set(TableRuns, []byte(run.ID), data); err != nil {
			return err
		}
		return txn.Set(TableRunsByTime, timeKey(run), nil)
	})
}

// Get loads a run by ID
func (s *RunStore) Get(id string) (*Run, error) {
	var run *Run
	err := View(s.storage, func(txn Transaction) error {
		var err error
		run, err = getRun(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns every run, newest first
func (s *RunStore) List() ([]*Run, error) {
	var runs []*Run
	err := View(s.storage, func(txn Transaction) error {
		ids, err := scanIDs(txn)
		if err != nil {
			return err
		}
		for _, id := range slices.Backward(ids) {
			run, err := getRun(txn, id)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Delete removes a run. Deleting an unknown ID returns ErrNotFound.
func (s *RunStore) Delete(id string) error {
	return Update(s.storage, func(txn Transaction) error {
		run, err := getRun(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(TableRunsByTime, timeKey(run)); err != nil {
			return err
		}
		return txn.Delete(TableRuns, []byte(id))
	})
}

// Clear removes every run and returns how many were removed
func (s *RunStore) Clear() (int, error) {
	removed := 0
	err := Update(s.storage, func(txn Transaction) error {
		for _, table := range []Table{TableRuns, TableRunsByTime} {
			keys, err := scanKeys(txn, table)
			if err != nil {
				return err
			}
			for _, key := range keys {
				if err := txn.Delete(table, key); err != nil {
					return err
				}
			}
			if table == TableRuns {
				removed = len(keys)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func getRun(txn Transaction, id string) (*Run, error) {
	data, err := txn.Get(TableRuns, []byte(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	if run.Checksum != PayloadChecksum(run.Payload) {
		return nil, fmt.Errorf("run %s: %w", id, ErrChecksumMismatch)
	}
	return &run, nil
}

// timeKey orders runs by creation time, then ID
func timeKey(run *Run) []byte {
	key := binary.BigEndian.AppendUint64(nil, uint64(run.CreatedAt.UnixNano()))
	return append(key, run.ID...)
}

func scanIDs(txn Transaction) ([]string, error) {
	keys, err := scanKeys(txn, TableRunsByTime)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(key) <= 8 {
			continue
		}
		ids = append(ids, string(key[8:]))
	}
	return ids, nil
}

func scanKeys(txn Transaction, table Table) ([][]byte, error) {
	it, err := txn.Scan(table, nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var keys [][]byte
	for it.Next() {
		keys = append(keys, bytes.Clone(it.Key()))
	}
	return keys, nil
}
