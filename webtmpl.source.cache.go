package webtmpl

import (
	"path/filepath"
	"sync"
	"time"
)

// CachedSource wraps any TemplateSource with an in-memory cache of file
// contents. Entries live until they expire or are invalidated, normally by
// a Watcher reacting to file changes.
type CachedSource struct {
	source TemplateSource
	config CacheConfig
	now    func() time.Time

	mu       sync.RWMutex
	cache    map[string]*cacheEntry
	counters cacheCounters
}

// CacheConfig configures the caching behavior.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Zero keeps entries until invalidated.
	TTL time.Duration

	// MaxEntries is the maximum number of cached templates.
	// When exceeded, the least recently used entry is evicted.
	// Default: 1000.
	MaxEntries int
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        0,
		MaxEntries: 1000,
	}
}

// CacheStats reports the cache state.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

type cacheEntry struct {
	content    string
	cachedAt   time.Time
	accessedAt time.Time
}

type cacheCounters struct {
	mu     sync.Mutex
	hits   int64
	misses int64
}

func (c *cacheCounters) hit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *cacheCounters) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *cacheCounters) snapshot() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

var _ TemplateSource = (*CachedSource)(nil)

// NewCachedSource wraps source with caching.
func NewCachedSource(source TemplateSource, config CacheConfig) *CachedSource {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig().MaxEntries
	}
	return &CachedSource{
		source: source,
		config: config,
		now:    time.Now,
		cache:  make(map[string]*cacheEntry),
	}
}

func cacheKey(path string) string {
	return filepath.Clean(path)
}

// Exists always asks the wrapped source. A path that no longer exists is
// dropped from the cache, so a deleted template fails as missing.
func (s *CachedSource) Exists(path string) bool {
	if s.source.Exists(path) {
		return true
	}
	s.Invalidate(path)
	return false
}

// ReadFile returns the cached content of path, reading it on a miss.
func (s *CachedSource) ReadFile(path string) (string, error) {
	key := cacheKey(path)
	now := s.now()

	s.mu.Lock()
	entry, ok := s.cache[key]
	if ok && s.isValid(entry, now) {
		entry.accessedAt = now
		content := entry.content
		s.mu.Unlock()
		s.counters.hit()
		return content, nil
	}
	s.mu.Unlock()
	s.counters.miss()

	content, err := s.source.ReadFile(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.addEntry(key, content, now)
	s.mu.Unlock()

	return content, nil
}

// Invalidate removes the given paths from the cache.
func (s *CachedSource) Invalidate(paths ...string) {
	s.mu.Lock()
	for _, p := range paths {
		delete(s.cache, cacheKey(p))
	}
	s.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (s *CachedSource) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*cacheEntry)
	s.mu.Unlock()
}

// Stats returns cache statistics.
func (s *CachedSource) Stats() CacheStats {
	s.mu.RLock()
	entries := len(s.cache)
	s.mu.RUnlock()

	hits, misses := s.counters.snapshot()
	return CacheStats{Entries: entries, Hits: hits, Misses: misses}
}

func (s *CachedSource) isValid(entry *cacheEntry, now time.Time) bool {
	if s.config.TTL <= 0 {
		return true
	}
	return now.Sub(entry.cachedAt) < s.config.TTL
}

// addEntry must be called with s.mu held.
func (s *CachedSource) addEntry(key, content string, now time.Time) {
	if _, exists := s.cache[key]; !exists && len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}
	s.cache[key] = &cacheEntry{
		content:    content,
		cachedAt:   now,
		accessedAt: now,
	}
}

// evictOldest must be called with s.mu held.
func (s *CachedSource) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range s.cache {
		if first || e.accessedAt.Before(oldest) {
			oldestKey = k
			oldest = e.accessedAt
			first = false
		}
	}
	if !first {
		delete(s.cache, oldestKey)
	}
}
