package store

import (
	"context"
	"encoding/json"
	"iter"
	"time"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
)

// Collection is a typed view over one named collection of a Store
type Collection[T any] struct {
	store *Store
	name  string
}

// Name returns the collection name
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns every record in stored order. A collection that was never
// written loads as empty.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	data, err := c.store.backend.Read(ctx, c.name)
	if err != nil {
		return nil, domain.StoreIO(c.name, "read", err)
	}
	return c.decode(ctx, data)
}

// Save replaces the entire collection atomically
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	return c.write(ctx, records)
}

// Append adds one record inside the collection's critical section
func (c *Collection[T]) Append(ctx context.Context, record T) error {
	return c.Update(ctx, func(records []T) ([]T, error) {
		return append(records, record), nil
	})
}

// Update loads, applies fn and saves, all inside the collection's critical
// section. If fn returns an error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	start := time.Now()
	records, err := c.Load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	if err := c.write(ctx, updated); err != nil {
		return err
	}
	logger.LogPerformance(ctx, c.store.log, "collection.update", time.Since(start), map[string]interface{}{
		"collection": c.name,
		"records":    len(updated),
	})
	return nil
}

// All returns a lazy, restartable sequence over the records. Each range
// re-reads the collection; a load failure is yielded once as the error.
func (c *Collection[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		records, err := c.Load(ctx)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Reset replaces the collection with an empty one
func (c *Collection[T]) Reset(ctx context.Context) error {
	return c.Save(ctx, []T{})
}

func (c *Collection[T]) write(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return domain.Internal("encode collection "+c.name, err)
	}
	if err := c.store.backend.Write(ctx, c.name, data); err != nil {
		return domain.StoreIO(c.name, "write", err)
	}
	return nil
}

func (c *Collection[T]) decode(ctx context.Context, data []byte) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		if c.store.policy == CorruptReset {
			c.store.log.Warn(ctx, "corrupt collection treated as empty", map[string]interface{}{
				"collection": c.name,
				"error":      err.Error(),
			})
			return []T{}, nil
		}
		return nil, domain.StoreCorrupt(c.name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
