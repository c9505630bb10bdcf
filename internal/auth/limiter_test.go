// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package auth

import (
	"testing"
	"time"
)

func TestLoginLimiterPerKey(t *testing.T) {
	l := NewLoginLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !l.Allow("a@example.com") {
			t.Fatalf("attempt %d rejected within burst", i+1)
		}
	}
	if l.Allow("a@example.com") {
		t.Error("attempt beyond burst allowed")
	}
	if !l.Allow("b@example.com") {
		t.Error("other key rejected")
	}
}

func TestLoginLimiterSweep(t *testing.T) {
	l := NewLoginLimiter(5, time.Minute)
	l.Allow("stale@example.com")
	l.Allow("fresh@example.com")

	l.mu.Lock()
	l.limiters["stale@example.com"].lastAccess = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.Sweep()

	if got := l.size(); got != 1 {
		t.Errorf("size after sweep = %d, want 1", got)
	}
}

func TestNewLoginLimiterDefaults(t *testing.T) {
	l := NewLoginLimiter(0, 0)
	if l.burst != 5 {
		t.Errorf("burst = %d, want 5", l.burst)
	}
	if l.Idle() != 2*time.Minute {
		t.Errorf("idle = %v, want 2m", l.Idle())
	}
}
