// Package persistent wraps a pkg/shuffle.Shuffler with a mirror to an
// opaque key/value store, so a process can restart without losing its
// item generations.
package persistent

// Store is the narrow key/value port the persistent wrapper mirrors
// mutations into. Keys are the caller-supplied item codec's encoding of
// an item; values are 8-byte big-endian generations.
type Store interface {
	Get(key []byte) (value []byte, ok bool, err error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Iterate(func(key, value []byte) error) error
	Batch() Batch
	Flush() error
	Compact() error
	Close() error
}

// Batch groups writes for a single atomic commit.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Commit() error
}
