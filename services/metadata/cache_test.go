package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiresOnRead(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCache(8, clock.Now)

	c.set("k", "v", time.Minute)
	v, ok := c.get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	clock.Advance(time.Minute)
	_, ok = c.get("k")
	assert.True(t, ok, "entry is live at exactly its ttl")

	clock.Advance(time.Nanosecond)
	_, ok = c.get("k")
	assert.False(t, ok)
	assert.Zero(t, c.len(), "expired entry is dropped on read")
}

func TestMemoryCacheSetReplacesEntry(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCache(8, clock.Now)

	c.set("k", 1, time.Minute)
	clock.Advance(50 * time.Second)
	c.set("k", 2, time.Minute)
	clock.Advance(50 * time.Second)

	v, ok := c.get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMemoryCacheSkipsNonPositiveTTL(t *testing.T) {
	c := newMemoryCache(8, nil)
	c.set("k", "v", 0)
	_, ok := c.get("k")
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newMemoryCache(2, nil)
	c.set("a", 1, time.Hour)
	c.set("b", 2, time.Hour)
	_, _ = c.get("a")
	c.set("c", 3, time.Hour)

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "trending", cacheKey("trending"))
	assert.Equal(t, "movie:550", cacheKey("movie", "550"))
	assert.Equal(t, "search:star+wars%3A+a+new+hope:2", cacheKey("search", "star wars: a new hope", "2"))
}

func TestNormalizeQuery(t *testing.T) {
	inputs := map[string]string{
		"":                 "",
		"   ":              "",
		"  The   MATRIX  ": "the matrix",
		"Amélie":           "amélie",
		"Ame\u0301lie":     "amélie",
		"STRASSE":          "strasse",
	}
	for in, want := range inputs {
		assert.Equal(t, want, normalizeQuery(in), "normalizeQuery(%q)", in)
	}
}
