package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry is the token bucket of a single key
type entry struct {
	limiter *rate.Limiter
	timer   *time.Timer
}

// KeyRateLimiter keeps one token bucket per key (client ip). Buckets that are not used
// for expirationTime are dropped.
type KeyRateLimiter struct {
	limiters       map[string]*entry
	mu             sync.Mutex
	rate           rate.Limit
	burst          int
	expirationTime time.Duration
}

func New(rps float64, burst int, expirationTime time.Duration) *KeyRateLimiter {
	return &KeyRateLimiter{
		limiters:       make(map[string]*entry),
		rate:           rate.Limit(rps),
		burst:          burst,
		expirationTime: expirationTime,
	}
}

// getLimiter gets or creates the bucket for key and pushes back its expiration
func (l *KeyRateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.limiters[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(l.expirationTime, func() { l.cleanup(key, e) })
	return e.limiter
}

func (l *KeyRateLimiter) cleanup(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// the key may have been recreated in the meantime
	if l.limiters[key] == e {
		delete(l.limiters, key)
	}
}

// Allow reports whether a request for key may proceed now.
func (l *KeyRateLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

func (l *KeyRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Stop cleans up all timers
func (l *KeyRateLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.limiters {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(l.limiters, key)
	}
}
