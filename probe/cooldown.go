package probe

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CooldownRegistry holds one rate.Limiter per probe classname, enforcing a
// minimum inter-request spacing per probe per SPEC_FULL.md §4.5. The gate is
// per-process, not per-video: every call for a given classname shares the
// same limiter regardless of which video ID is being probed.
type CooldownRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewCooldownRegistry returns an empty registry; limiters are created lazily
// on first use via Register.
func NewCooldownRegistry() *CooldownRegistry {
	return &CooldownRegistry{limiters: make(map[string]*rate.Limiter)}
}

// Register declares the minimum spacing for classname. Calling it more than
// once for the same classname replaces the limiter; probes should register
// once at construction.
func (c *CooldownRegistry) Register(classname string, spacing time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiters[classname] = rate.NewLimiter(rate.Every(spacing), 1)
}

// Wait blocks cooperatively until classname's spacing requirement is
// satisfied, or until ctx is done. A classname with no registered spacing
// never blocks.
func (c *CooldownRegistry) Wait(ctx context.Context, classname string) error {
	c.mu.Lock()
	lim, ok := c.limiters[classname]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return lim.Wait(ctx)
}
