package probe

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResultCacheSingleFlightDeduplicatesConcurrentCallers(t *testing.T) {
	cache := NewResultCache(600)
	var calls int64

	compute := func() ProbeResult {
		atomic.AddInt64(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return ProbeResult{Archived: true, Classname: "youtube"}
	}

	const concurrency = 20
	done := make(chan ProbeResult, concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			done <- cache.GetOrCompute("youtube", "dQw4w9WgXcQ", false, compute)
		}()
	}
	for i := 0; i < concurrency; i++ {
		r := <-done
		assert.True(t, r.Archived)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "concurrent callers for the same key must share one computation")
}

func TestResultCacheHitSkipsRecompute(t *testing.T) {
	cache := NewResultCache(600)
	var calls int64
	compute := func() ProbeResult {
		atomic.AddInt64(&calls, 1)
		return ProbeResult{Archived: true}
	}

	first := cache.GetOrCompute("ia_details", "dQw4w9WgXcQ", false, compute)
	second := cache.GetOrCompute("ia_details", "dQw4w9WgXcQ", false, compute)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestResultCacheDistinguishesKeys(t *testing.T) {
	cache := NewResultCache(600)
	var calls int64
	compute := func() ProbeResult {
		atomic.AddInt64(&calls, 1)
		return ProbeResult{Archived: true}
	}

	cache.GetOrCompute("ia_details", "videoA", false, compute)
	cache.GetOrCompute("ia_details", "videoB", false, compute)
	cache.GetOrCompute("ia_details", "videoA", true, compute) // different includeRaw is a different key

	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}
