package draft

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Put(ctx, "t1", "Hello"))
	require.NoError(t, s.Put(ctx, "t2", "Other"))
	got, err = s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	require.NoError(t, s.Delete(ctx, "t1"))
	got, err = s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "Other", got)

	require.NoError(t, s.Put(ctx, "t2", ""))
	got, err = s.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	s := NewRedisStore(client, time.Minute)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(context.Background()))

	exerciseStore(t, s)
}

func TestConnectParsesURL(t *testing.T) {
	c, err := Connect("redis://:secret@localhost:6390/3", "", 0)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "localhost:6390", c.Options().Addr)
	assert.Equal(t, 3, c.Options().DB)
	assert.Equal(t, "secret", c.Options().Password)

	_, err = Connect("redis://%%", "", 0)
	assert.Error(t, err)
}
