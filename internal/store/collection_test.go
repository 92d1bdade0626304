package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type failingBackend struct {
	readErr  error
	writeErr error
}

func (f failingBackend) Read(context.Context, string) ([]byte, error) { return nil, f.readErr }
func (f failingBackend) Write(context.Context, string, []byte) error  { return f.writeErr }
func (f failingBackend) Close() error                                 { return nil }

func TestCollection_LoadMissingIsEmpty(t *testing.T) {
	c := Open[item](New(NewMemoryBackend()), "items")

	records, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "items", c.Name())
}

func TestCollection_SaveReplacesWholeCollection(t *testing.T) {
	ctx := context.Background()
	c := Open[item](New(NewMemoryBackend()), "items")

	require.NoError(t, c.Save(ctx, []item{{1, "a"}, {2, "b"}}))
	require.NoError(t, c.Save(ctx, []item{{3, "c"}}))

	records, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{3, "c"}}, records)
}

func TestCollection_UpdateErrorDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	c := Open[item](New(NewMemoryBackend()), "items")
	require.NoError(t, c.Append(ctx, item{1, "a"}))

	boom := errors.New("boom")
	err := c.Update(ctx, func(records []item) ([]item, error) {
		return append(records, item{2, "b"}), boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCollection_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Separate handles on the same name share one critical section.
			c := Open[item](s, "items")
			assert.NoError(t, c.Append(ctx, item{ID: i}))
		}(i)
	}
	wg.Wait()

	records, err := Open[item](s, "items").Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

func TestCollection_CorruptAbort(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write(ctx, "items", []byte("{not json")))

	c := Open[item](New(backend), "items")
	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
	assert.Equal(t, domain.KindStoreCorrupt, domain.KindOf(err))

	err = c.Append(ctx, item{1, "a"})
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)

	require.NoError(t, c.Reset(ctx))
	records, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCollection_CorruptReset(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write(ctx, "items", []byte("[{]")))

	c := Open[item](New(backend, WithCorruptPolicy(CorruptReset)), "items")
	records, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, c.Append(ctx, item{1, "a"}))
	records, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{1, "a"}}, records)
}

func TestCollection_BackendFailuresAreStoreIO(t *testing.T) {
	ctx := context.Background()

	_, err := Open[item](New(failingBackend{readErr: errors.New("eio")}), "items").Load(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreIO)

	err = Open[item](New(failingBackend{writeErr: errors.New("enospc")}), "items").Save(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrStoreIO)
	assert.Equal(t, domain.KindStoreIO, domain.KindOf(err))
}

func TestCollection_AllIsRestartable(t *testing.T) {
	ctx := context.Background()
	c := Open[item](New(NewMemoryBackend()), "items")
	require.NoError(t, c.Save(ctx, []item{{1, "a"}, {2, "b"}}))

	seq := c.All(ctx)
	collect := func() []item {
		var out []item
		for r, err := range seq {
			require.NoError(t, err)
			out = append(out, r)
		}
		return out
	}

	first := collect()
	second := collect()
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)

	require.NoError(t, c.Append(ctx, item{3, "c"}))
	assert.Len(t, collect(), 3)
}

func TestCollection_AllYieldsLoadError(t *testing.T) {
	c := Open[item](New(failingBackend{readErr: errors.New("eio")}), "items")

	calls := 0
	for _, err := range c.All(context.Background()) {
		calls++
		assert.ErrorIs(t, err, domain.ErrStoreIO)
	}
	assert.Equal(t, 1, calls)
}

func TestParseCorruptPolicy(t *testing.T) {
	p, err := ParseCorruptPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CorruptAbort, p)

	p, err = ParseCorruptPolicy("reset")
	require.NoError(t, err)
	assert.Equal(t, CorruptReset, p)

	_, err = ParseCorruptPolicy("ignore")
	assert.Error(t, err)
}

func TestCollection_UpdateLogsDuration(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	c := Open[item](New(NewMemoryBackend(), WithLogger(log)), "items")

	require.NoError(t, c.Append(context.Background(), item{ID: 1, Name: "a"}))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "collection.update", line["operation"])
	assert.Equal(t, "items", line["collection"])
	assert.Equal(t, float64(1), line["records"])
	assert.Contains(t, line, "duration_ms")
}
