package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/domain/trend"
)

func TestCacheKeyUsesFirstThreeKeywordsCaseFolded(t *testing.T) {
	key := CacheKey([]string{"Ransomware", "LockBit", "Windows", "Linux"})
	assert.Equal(t, "ransomware_lockbit_windows", key)

	assert.Equal(t, "phishing", CacheKey([]string{"Phishing"}))
	assert.Equal(t, "", CacheKey(nil))
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(8, time.Minute)

	res := trend.Result{
		TrendScore: 61,
		Sources: map[string]*trend.SourceSignal{
			trend.ProviderGoogle: {Score: 70, Direction: trend.DirectionRising},
		},
		Graph: trend.Graph{DataPoints: []trend.DataPoint{{Label: "2026-08-01", Value: 70}}},
	}
	cache.Put("ransomware", res)

	got, ok := cache.Get("ransomware")
	require.True(t, ok)
	assert.Equal(t, 61, got.TrendScore)
	assert.Equal(t, 70, got.Sources[trend.ProviderGoogle].Score)

	_, ok = cache.Get("phishing")
	assert.False(t, ok)
}

func TestCacheReturnsIndependentCopies(t *testing.T) {
	cache := NewCache(8, time.Minute)

	res := trend.Result{
		Sources: map[string]*trend.SourceSignal{
			trend.ProviderGoogle: {Score: 40},
		},
	}
	cache.Put("malware", res)

	first, ok := cache.Get("malware")
	require.True(t, ok)
	first.Sources[trend.ProviderGoogle].Score = 99
	first.Cached = true

	second, ok := cache.Get("malware")
	require.True(t, ok)
	assert.Equal(t, 40, second.Sources[trend.ProviderGoogle].Score)
	assert.False(t, second.Cached)
}

func TestCacheExpiresEntriesAfterTTL(t *testing.T) {
	cache := NewCache(8, 30*time.Millisecond)
	cache.Put("zero-day", trend.Result{TrendScore: 12})

	_, ok := cache.Get("zero-day")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = cache.Get("zero-day")
	assert.False(t, ok)
}
