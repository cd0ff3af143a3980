package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "ActivityPubTable:https://ex.org/o/1", recordKey("ActivityPubTable", "https://ex.org/o/1"))
}

func TestRedis_NotOpen(t *testing.T) {
	g := NewRedisGateway("localhost:0", "", 0)
	assert.ErrorIs(t, g.Put(context.Background(), "test", Record{"id": "x"}), ErrNotOpen)
}

// Needs a live server, e.g. REDIS_ADDR=localhost:6379
func TestRedis_PutGet(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	g := NewRedisGateway(addr, "", 0)
	require.NoError(t, g.Open())
	defer g.Close()
	ctx := context.Background()

	require.NoError(t, g.Put(ctx, "test", Record{"id": "https://ex.org/o/1", "content": "hello"}))
	require.NoError(t, g.Put(ctx, "test", Record{"id": "https://ex.org/o/1", "content": "goodbye"}))
	got, err := g.Get(ctx, "test", "https://ex.org/o/1")
	require.NoError(t, err)
	assert.Equal(t, "goodbye", got["content"])

	got, err = g.Get(ctx, "test", "https://ex.org/o/missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
