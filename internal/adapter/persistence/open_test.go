package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purochile/pcbot/internal/config"
	"github.com/purochile/pcbot/internal/store"
)

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, config.StoreConfig{Driver: "file", DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = Open(ctx, config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryBackend{}, b)

	_, err = Open(ctx, config.StoreConfig{Driver: "mongo"})
	assert.ErrorContains(t, err, "unsupported store driver")
}
