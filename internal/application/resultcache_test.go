package application_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codesuggest/internal/application"
)

func TestCacheKey_DistinguishesEveryField(t *testing.T) {
	base := application.CacheKey("javascript", "a.js", "var a;", "shop")

	assert.Equal(t, base, application.CacheKey("javascript", "a.js", "var a;", "shop"))
	assert.NotEqual(t, base, application.CacheKey("css", "a.js", "var a;", "shop"))
	assert.NotEqual(t, base, application.CacheKey("javascript", "b.js", "var a;", "shop"))
	assert.NotEqual(t, base, application.CacheKey("javascript", "a.js", "var b;", "shop"))
	assert.NotEqual(t, base, application.CacheKey("javascript", "a.js", "var a;", "other"))
	assert.NotEqual(t,
		application.CacheKey("ab", "c", "", ""),
		application.CacheKey("a", "bc", "", ""),
	)
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := application.NewResultCache(2)
	entry := func(s string) []application.AISuggestion {
		return []application.AISuggestion{{OriginalCode: s, SuggestedCode: s, Explanation: s}}
	}

	cache.Add("a", entry("a"))
	cache.Add("b", entry("b"))
	_, ok := cache.Get("a") // a is now most recently used
	require.True(t, ok)
	cache.Add("c", entry("c"))

	_, ok = cache.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestResultCache_ReturnsCopies(t *testing.T) {
	cache := application.NewResultCache(0)
	cache.Add("k", []application.AISuggestion{{OriginalCode: "a", FilePaths: []string{"x.js"}}})

	got, ok := cache.Get("k")
	require.True(t, ok)
	got[0].OriginalCode = "mutated"
	got[0].FilePaths[0] = "mutated.js"

	again, _ := cache.Get("k")
	assert.Equal(t, "a", again[0].OriginalCode)
	assert.Equal(t, []string{"x.js"}, again[0].FilePaths)
}

func TestResultCache_DefaultSize(t *testing.T) {
	cache := application.NewResultCache(0)
	for i := 0; i < application.DefaultResultCacheSize+10; i++ {
		cache.Add(fmt.Sprint(i), nil)
	}
	assert.Equal(t, application.DefaultResultCacheSize, cache.Len())
}
