package probe

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

const (
	// cacheSize bounds the number of memoized ProbeResults per SPEC_FULL.md
	// §4.6 ("Bounded LRU (≈1024 entries)").
	cacheSize = 1024
)

// cacheKey is the tuple SPEC_FULL.md §4.6 keys the cache on.
type cacheKey struct {
	classname  string
	videoID    string
	includeRaw bool
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%s|%v", k.classname, k.videoID, k.includeRaw)
}

// ResultCache is a TTL+LRU memoization layer with single-flight
// deduplication: concurrent callers for the same key share one in-flight
// computation instead of issuing redundant upstream requests.
type ResultCache struct {
	lru    *lru.LRU[cacheKey, ProbeResult]
	flight singleflight.Group
}

// NewResultCache builds a cache bounded to cacheSize entries, each expiring
// after ttl seconds.
func NewResultCache(ttl float64) *ResultCache {
	return &ResultCache{
		lru: lru.NewLRU[cacheKey, ProbeResult](cacheSize, nil, secondsToDuration(ttl)),
	}
}

// GetOrCompute returns the cached ProbeResult for (classname, videoID,
// includeRaw) if present and unexpired; otherwise it invokes compute exactly
// once even under concurrent callers for the same key, caches the result
// (including error results, so a failing backend is not hammered), and
// returns it.
func (c *ResultCache) GetOrCompute(classname, videoID string, includeRaw bool, compute func() ProbeResult) ProbeResult {
	key := cacheKey{classname: classname, videoID: videoID, includeRaw: includeRaw}
	if v, ok := c.lru.Get(key); ok {
		return v
	}
	v, _, _ := c.flight.Do(key.String(), func() (any, error) {
		result := compute()
		c.lru.Add(key, result)
		return result, nil
	})
	return v.(ProbeResult)
}
