// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter limits login attempts per key (the normalized email) with one
// token bucket per key. Idle buckets are dropped by Sweep, which the server
// runs on an interval under its supervisor.
type LoginLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows burst attempts per key, refilled at attempts per
// window.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	if attempts <= 0 {
		attempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
		idle:     2 * window,
	}
}

// DefaultLoginLimiter allows 5 attempts per minute per email.
func DefaultLoginLimiter() *LoginLimiter {
	return NewLoginLimiter(5, time.Minute)
}

// Allow consumes one attempt for key and reports whether it was available.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	entry, exists := l.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// Sweep drops buckets idle for longer than twice the window. A dropped key
// starts again with a full bucket, which is what it would have refilled to.
func (l *LoginLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.idle)
	for key, entry := range l.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

// Idle is the sweep threshold.
func (l *LoginLimiter) Idle() time.Duration {
	return l.idle
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
