// internal/service/trends/limiter.go

package trends

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ProviderLimiter enforces a minimum spacing between outbound calls to
// each signal provider. One limiter is shared by all workers; the
// per-provider state is created lazily under the lock so two callers can
// never both observe an expired window and burst the provider.
type ProviderLimiter struct {
	mu        sync.Mutex
	defaults  time.Duration
	intervals map[string]time.Duration
	limiters  map[string]*rate.Limiter
}

// NewProviderLimiter creates a limiter with the given default minimum
// interval between calls to the same provider.
func NewProviderLimiter(defaultInterval time.Duration) *ProviderLimiter {
	return &ProviderLimiter{
		defaults:  defaultInterval,
		intervals: make(map[string]time.Duration),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// SetInterval overrides the minimum interval for one provider. Must be
// called before the provider's first Wait.
func (l *ProviderLimiter) SetInterval(provider string, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intervals[provider] = interval
}

// Wait blocks until at least the provider's minimum interval has elapsed
// since its previous call, then records the new call time. It returns
// early with the context error if the context is cancelled.
func (l *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	l.mu.Lock()
	lim, ok := l.limiters[provider]
	if !ok {
		interval, found := l.intervals[provider]
		if !found {
			interval = l.defaults
		}
		lim = rate.NewLimiter(rate.Every(interval), 1)
		l.limiters[provider] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}
