// Package ratelimit throttles outbound calls per upstream provider.
// Each provider gets its own token bucket so a burst against one API
// cannot starve the others.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limit is the steady rate and burst size for one provider.
type Limit struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultLimit applies to providers without an explicit entry.
var DefaultLimit = Limit{RequestsPerSecond: 10, Burst: 20}

// ProviderLimiter hands out one rate.Limiter per provider name.
type ProviderLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limits   map[string]Limit
}

// New constructs a ProviderLimiter with per-provider limits. Providers
// missing from limits fall back to DefaultLimit.
func New(limits map[string]Limit) *ProviderLimiter {
	if limits == nil {
		limits = make(map[string]Limit)
	}
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		limits:   limits,
	}
}

// Wait blocks until the provider's bucket allows one request or the
// context is done.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.limiter(provider).Wait(ctx)
}

func (p *ProviderLimiter) limiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, ok := p.limiters[provider]
	p.mu.RUnlock()
	if ok {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if limiter, ok = p.limiters[provider]; ok {
		return limiter
	}

	limit, ok := p.limits[provider]
	if !ok {
		limit = DefaultLimit
	}
	limiter = rate.NewLimiter(rate.Limit(limit.RequestsPerSecond), limit.Burst)
	p.limiters[provider] = limiter
	return limiter
}
