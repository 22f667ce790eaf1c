// Package ratelimit throttles calls to each strategy's upstream with a
// token bucket per strategy.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

// Limiter hands out one token bucket per strategy, created on first use
// from the defaults unless an override was configured.
type Limiter struct {
	limiters  map[string]*rate.Limiter
	overrides map[string]Config
	mu        sync.RWMutex
	defaults  Config
}

func NewLimiter(defaults Config, overrides map[string]Config) *Limiter {
	if defaults.RequestsPerSecond <= 0 {
		defaults = DefaultConfig()
	}
	return &Limiter{
		limiters:  make(map[string]*rate.Limiter),
		overrides: overrides,
		defaults:  defaults,
	}
}

func (l *Limiter) get(strategy string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[strategy]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists = l.limiters[strategy]; exists {
		return limiter
	}

	cfg := l.defaults
	if o, ok := l.overrides[strategy]; ok && o.RequestsPerSecond > 0 {
		cfg = o
	}
	limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.BurstSize, 1))
	l.limiters[strategy] = limiter
	return limiter
}

// Wait blocks until strategy may make a call or ctx is done.
func (l *Limiter) Wait(ctx context.Context, strategy string) error {
	return l.get(strategy).Wait(ctx)
}
