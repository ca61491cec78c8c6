package repomap

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCacheEntry is one memoized matcher response plus the wall-clock
// time it was stored, for TTL expiry.
type resultCacheEntry struct {
	results []MatchResult
	storedAt time.Time
}

// MatcherResultCache is the bounded LRU + TTL cache spec.md §4.5 requires
// in front of the matchers, keyed by (query, threshold, strategy-set). The
// Facade owns one instance shared by all three matchers (it folds the
// match kind into the query key). The cache is protected by a mutex, since
// its critical sections are tiny and concurrent matcher calls are rare
// (spec.md §9).
type MatcherResultCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, resultCacheEntry]
	ttl time.Duration
}

func NewMatcherResultCache(size int, ttl time.Duration) *MatcherResultCache {
	if size <= 0 {
		size = 1000
	}
	c, _ := lru.New[string, resultCacheEntry](size)
	return &MatcherResultCache{lru: c, ttl: ttl}
}

func cacheKey(query string, threshold float64, strategies []string) string {
	sorted := append([]string(nil), strategies...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%.4f|%s", query, threshold, strings.Join(sorted, ","))
}

// Get returns a cached result list, treating an expired entry as a miss.
func (c *MatcherResultCache) Get(query string, threshold float64, strategies []string) ([]MatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, threshold, strategies)
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.storedAt) > c.ttl {
		c.lru.Remove(key)
		return nil, false
	}
	return entry.results, true
}

func (c *MatcherResultCache) Put(query string, threshold float64, strategies []string, results []MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(query, threshold, strategies)
	c.lru.Add(key, resultCacheEntry{results: results, storedAt: time.Now()})
}

// Invalidate drops every memoized entry; called whenever the identifier
// universe changes (after any tag extraction that changes the set).
func (c *MatcherResultCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// EstimatedBytes gives a rough memory estimate for statistics reporting.
func (c *MatcherResultCache) EstimatedBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, key := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(key); ok {
			total += int64(len(key))
			total += int64(len(entry.results)) * 96 // rough per-result estimate
		}
	}
	return total
}

func (c *MatcherResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
