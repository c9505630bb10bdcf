// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package services

import (
	"context"
	"time"
)

// SweeperService calls a cleanup function on a fixed interval.
type SweeperService struct {
	name     string
	interval time.Duration
	sweep    func()
}

// NewSweeperService creates a sweeper named name. interval defaults to one
// minute.
func NewSweeperService(name string, interval time.Duration, sweep func()) *SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperService{name: name, interval: interval, sweep: sweep}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

// String implements fmt.Stringer.
func (s *SweeperService) String() string {
	return s.name
}
