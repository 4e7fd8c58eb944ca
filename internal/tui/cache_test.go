package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newRenderCache(2)
	k1 := cacheKey{side: beforeSide, row: 1, width: 40}
	k2 := cacheKey{side: beforeSide, row: 2, width: 40}
	k3 := cacheKey{side: beforeSide, row: 3, width: 40}
	c.put(k1, "one")
	c.put(k2, "two")

	// Touching k1 makes k2 the eviction candidate.
	_, ok := c.get(k1)
	require.True(t, ok)
	c.put(k3, "three")

	_, ok = c.get(k2)
	assert.False(t, ok)
	v, ok := c.get(k1)
	require.True(t, ok)
	assert.Equal(t, "one", v)
	v, ok = c.get(k3)
	require.True(t, ok)
	assert.Equal(t, "three", v)
	assert.Equal(t, 2, c.len())
}

func TestRenderCacheOverwriteKeepsOneEntry(t *testing.T) {
	c := newRenderCache(4)
	k := cacheKey{side: unifiedSide, row: 7, width: 80}
	c.put(k, "old")
	c.put(k, "new")
	v, ok := c.get(k)
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.len())
}

func TestRenderCacheClear(t *testing.T) {
	c := newRenderCache(4)
	k := cacheKey{side: afterSide, row: 1, width: 40, cursor: true}
	c.put(k, "row")
	c.clear()
	_, ok := c.get(k)
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
}
