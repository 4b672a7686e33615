package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	_, found := c.Get(ctx, "missing")
	assert.False(t, found)

	c.Set(ctx, "key", []byte("value"), time.Minute)
	data, found := c.Get(ctx, "key")
	require.True(t, found)
	assert.Equal(t, []byte("value"), data)

	c.Set(ctx, "key", []byte("replaced"), time.Minute)
	data, found = c.Get(ctx, "key")
	require.True(t, found)
	assert.Equal(t, []byte("replaced"), data)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	c.Set(ctx, "short", []byte("gone soon"), 20*time.Millisecond)
	_, found := c.Get(ctx, "short")
	require.True(t, found)

	time.Sleep(50 * time.Millisecond)
	_, found = c.Get(ctx, "short")
	assert.False(t, found)
}

func TestMemoryCacheNoExpiration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache(20 * time.Millisecond)

	c.Set(ctx, "forever", []byte("stays"), NoExpiration)
	time.Sleep(50 * time.Millisecond)

	_, found := c.Get(ctx, "forever")
	assert.True(t, found)
}

func TestMemoryCacheDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	c.Set(ctx, "key", []byte("value"), time.Minute)
	c.Delete(ctx, "key")

	_, found := c.Get(ctx, "key")
	assert.False(t, found)

	// Deleting an absent key is a no-op.
	c.Delete(ctx, "missing")
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	c.Set(ctx, "tasks_all_page1", []byte("a"), time.Minute)
	c.Set(ctx, "tasks_all_page2", []byte("b"), time.Minute)
	c.Set(ctx, "task_xyz", []byte("c"), time.Minute)

	deleted := c.DeletePrefix(ctx, "tasks_all")
	assert.Equal(t, 2, deleted)

	_, found := c.Get(ctx, "tasks_all_page1")
	assert.False(t, found)
	_, found = c.Get(ctx, "tasks_all_page2")
	assert.False(t, found)

	// Keys outside the prefix survive.
	_, found = c.Get(ctx, "task_xyz")
	assert.True(t, found)

	assert.Equal(t, 0, c.DeletePrefix(ctx, "tasks_all"))
}
