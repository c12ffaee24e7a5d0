package metadata

import (
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const defaultCacheEntries = 1024

type cacheEntry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.After(e.createdAt.Add(e.ttl))
}

// memoryCache is a bounded in-memory TTL cache. Expiry is evaluated on read
// against the injected clock, so an expired entry is never served even if it
// has not been evicted yet.
type memoryCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, cacheEntry]
	now     func() time.Time
}

func newMemoryCache(maxEntries int, now func() time.Time) *memoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	if now == nil {
		now = time.Now
	}
	entries, err := lru.New[string, cacheEntry](maxEntries)
	if err != nil {
		log.Printf("[metadata] failed to create cache with %d entries, using default: %v", maxEntries, err)
		entries, _ = lru.New[string, cacheEntry](defaultCacheEntries)
	}
	return &memoryCache{entries: entries, now: now}
}

func (c *memoryCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if entry.expired(c.now()) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.value, true
}

// set stores value under key, replacing any previous entry.
func (c *memoryCache) set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, cacheEntry{value: value, createdAt: c.now(), ttl: ttl})
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// cacheKey builds the request fingerprint: the operation name followed by the
// query-escaped inputs, joined with ':'.
func cacheKey(op string, parts ...string) string {
	var b strings.Builder
	b.WriteString(op)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(p))
	}
	return b.String()
}

// normalizeQuery trims, collapses whitespace, composes to NFC and case-folds a
// search query so equivalent spellings share a fingerprint.
func normalizeQuery(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if collapsed == "" {
		return ""
	}
	// Casers keep state, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(collapsed))
}
