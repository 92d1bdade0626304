package ports

import (
	"context"
	"iter"
)

// RecordBackend persists whole collections as opaque blobs. Write must
// replace the previous blob atomically: a concurrent Read sees either the old
// or the new content, never a mix.
type RecordBackend interface {
	// Read returns the stored blob for a collection, or nil if it was never written
	Read(ctx context.Context, collection string) ([]byte, error)

	// Write atomically replaces the blob of a collection
	Write(ctx context.Context, collection string, data []byte) error

	// Close releases the underlying medium
	Close() error
}

// Collection is a named, independently persisted sequence of records of one kind
type Collection[T any] interface {
	// Name returns the collection name
	Name() string

	// Load returns every record in stored order
	Load(ctx context.Context) ([]T, error)

	// Save replaces the entire collection atomically
	Save(ctx context.Context, records []T) error

	// Append adds one record inside the collection's critical section
	Append(ctx context.Context, record T) error

	// Update runs a read-modify-write inside the collection's critical section.
	// Returning an error from fn aborts without writing.
	Update(ctx context.Context, fn func(records []T) ([]T, error)) error

	// All returns a lazy sequence over the records. Each range re-reads the
	// collection from the beginning.
	All(ctx context.Context) iter.Seq2[T, error]

	// Reset replaces the collection with an empty one
	Reset(ctx context.Context) error
}
