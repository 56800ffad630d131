// Package badgerstore adapts github.com/dgraph-io/badger/v4 to the
// persistent.Store port.
package badgerstore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/flier/shuffle/pkg/persistent"
)

// Store wraps an open badger.DB.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a badger database rooted at path.
func Open(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(key []byte) (value []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key)
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return nil
		}

		if getErr != nil {
			return getErr
		}

		ok = true

		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)

			return nil
		})
	})

	return value, ok, err
}

func (s *Store) Put(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *Store) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Iterate walks every record in a single read-only snapshot.
func (s *Store) Iterate(visit func(key, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			key := item.KeyCopy(nil)

			var value []byte

			if err := item.Value(func(val []byte) error {
				value = append([]byte(nil), val...)

				return nil
			}); err != nil {
				return err
			}

			if err := visit(key, value); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) Batch() persistent.Batch { return &batch{wb: s.db.NewWriteBatch()} }

// Flush maps to badger's Sync, guaranteeing prior writes are durable.
func (s *Store) Flush() error { return s.db.Sync() }

// Compact maps to badger's Flatten, collapsing the LSM tree into a
// single level.
func (s *Store) Compact() error { return s.db.Flatten(1) }

func (s *Store) Close() error { return s.db.Close() }

type batch struct {
	wb  *badger.WriteBatch
	err error
}

func (b *batch) Put(key, value []byte) {
	if b.err != nil {
		return
	}

	b.err = b.wb.Set(key, value)
}

func (b *batch) Delete(key []byte) {
	if b.err != nil {
		return
	}

	b.err = b.wb.Delete(key)
}

func (b *batch) Commit() error {
	if b.err != nil {
		b.wb.Cancel()

		return b.err
	}

	return b.wb.Flush()
}
