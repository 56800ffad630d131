// Package memstore is an in-memory Store, used by tests and as a
// reference implementation of the persistent.Store contract.
package memstore

import (
	"sort"

	"github.com/flier/shuffle/pkg/persistent"
)

// Store is a map-backed persistent.Store. Construct one with New: the zero
// value has no backing map, so Put and committing a batch that puts a key
// panic on it.
type Store struct {
	records map[string][]byte
	closed  bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	v, ok := s.records[string(key)]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, true, nil
}

func (s *Store) Put(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.records[string(key)] = v

	return nil
}

func (s *Store) Delete(key []byte) error {
	delete(s.records, string(key))

	return nil
}

// Iterate visits every record in key order, for deterministic tests.
func (s *Store) Iterate(visit func(key, value []byte) error) error {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if err := visit([]byte(k), s.records[k]); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) Batch() persistent.Batch { return &batch{store: s} }

func (s *Store) Flush() error   { return nil }
func (s *Store) Compact() error { return nil }

func (s *Store) Close() error {
	s.closed = true

	return nil
}

// Closed reports whether Close was called, for tests.
func (s *Store) Closed() bool { return s.closed }

type op struct {
	key     string
	value   []byte
	deleted bool
}

type batch struct {
	store *Store
	ops   []op
}

func (b *batch) Put(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)

	b.ops = append(b.ops, op{key: string(key), value: v})
}

func (b *batch) Delete(key []byte) {
	b.ops = append(b.ops, op{key: string(key), deleted: true})
}

func (b *batch) Commit() error {
	for _, o := range b.ops {
		if o.deleted {
			delete(b.store.records, o.key)
		} else {
			b.store.records[o.key] = o.value
		}
	}

	return nil
}
