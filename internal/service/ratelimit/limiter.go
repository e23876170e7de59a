package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key (client IP, host, ...).
type Limiter struct {
	mu    sync.RWMutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

// New creates a keyed limiter allowing rps events per second with the given burst.
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{m: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.m[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.m[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.m[key] = lim
	return lim
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}
