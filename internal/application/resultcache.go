package application

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultResultCacheSize is the number of generator results kept when no
// explicit size is configured.
const DefaultResultCacheSize = 200

// ResultCache memoizes successful AI generations. Eviction is least recently
// used once maxEntries is reached. Each Generator owns the cache it is given;
// there is no shared package-level instance.
type ResultCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewResultCache creates a cache holding at most maxEntries results.
// maxEntries <= 0 selects DefaultResultCacheSize.
func NewResultCache(maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultResultCacheSize
	}
	return &ResultCache{cache: lru.New(maxEntries)}
}

// CacheKey derives the cache key for one generation request.
func CacheKey(fileType, fileName, content, projectID string) string {
	h := sha256.New()
	for _, part := range []string{fileType, fileName, content, projectID} {
		// Length-prefix each part so adjacent fields cannot run together.
		fmt.Fprintf(h, "%d:%s", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached suggestions for key.
func (c *ResultCache) Get(key string) ([]AISuggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return cloneSuggestions(v.([]AISuggestion)), true
}

// Add stores a copy of suggestions under key.
func (c *ResultCache) Add(key string, suggestions []AISuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, cloneSuggestions(suggestions))
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

func cloneSuggestions(in []AISuggestion) []AISuggestion {
	out := make([]AISuggestion, len(in))
	for i, s := range in {
		s.FilePaths = append([]string(nil), s.FilePaths...)
		out[i] = s
	}
	return out
}
