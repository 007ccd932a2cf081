package fetcher

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRateLimiters returns per-host limiters for every provider the
// built-in sources talk to. Hosts without an entry fall back to a
// generous shared default in the HTTP fetcher.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"api.worldbank.org": rate.NewLimiter(10, 10),
		"api.census.gov":    rate.NewLimiter(5, 5),
		"www2.census.gov":   rate.NewLimiter(5, 5),
		"apps.bea.gov":      rate.NewLimiter(5, 5),
		"naciscdn.org":      rate.NewLimiter(5, 5),
	}
}

// DefaultAdaptiveLimiters covers the API hosts that actively throttle.
// The static download hosts (CDN, bulk file servers) stay on plain
// limiters since they respond with 5xx rather than 429 under load.
func DefaultAdaptiveLimiters() map[string]*AdaptiveLimiter {
	return map[string]*AdaptiveLimiter{
		"api.worldbank.org": NewAdaptiveLimiter(10, 10),
		"api.census.gov":    NewAdaptiveLimiter(5, 5),
		"apps.bea.gov":      NewAdaptiveLimiter(5, 5),
	}
}

// AdaptiveLimiter tunes its request rate from observed responses: each
// success nudges the rate up 20%, each 429 halves it. The rate stays
// within [initial/4, initial*2].
type AdaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	current rate.Limit
	floor   rate.Limit
	ceil    rate.Limit
}

// NewAdaptiveLimiter starts a limiter at the given rate and burst.
func NewAdaptiveLimiter(initial rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(initial, burst),
		current: initial,
		floor:   initial / 4,
		ceil:    initial * 2,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess nudges the rate up toward the ceiling.
func (a *AdaptiveLimiter) OnSuccess() {
	a.adjust(1.2)
}

// OnRateLimit halves the rate after a 429 response.
func (a *AdaptiveLimiter) OnRateLimit() {
	next := a.adjust(0.5)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(next)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// adjust scales the current rate by factor, clamped to the limiter's
// bounds, and returns the rate now in effect.
func (a *AdaptiveLimiter) adjust(factor rate.Limit) rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.current * factor
	switch {
	case next > a.ceil:
		next = a.ceil
	case next < a.floor:
		next = a.floor
	}
	a.current = next
	a.limiter.SetLimit(next)
	return next
}

// hostOf extracts the host from a URL for limiter lookup.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
