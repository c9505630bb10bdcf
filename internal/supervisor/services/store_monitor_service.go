// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Pinger reports whether the graph store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitorService pings the graph store on an interval and logs when
// reachability changes. Store calls made while it is down still fail on
// their own; the monitor only makes outages visible without traffic.
type StoreMonitorService struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	name     string

	healthy atomic.Bool
}

// NewStoreMonitorService creates a monitor. interval defaults to 30s and the
// per-ping timeout to 5s.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewStoreMonitorService(store Pinger, interval, timeout time.Duration, logger zerolog.Logger) *StoreMonitorService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &StoreMonitorService{
		store:    store,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With().Str("service", "store-monitor").Logger(),
		name:     "store-monitor",
	}
	s.healthy.Store(true)
	return s
}

// Serve implements suture.Service.
func (s *StoreMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *StoreMonitorService) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.store.Ping(pingCtx)
	switch {
	case err != nil && ctx.Err() != nil:
		return
	case err != nil && s.healthy.Swap(false):
		s.logger.Error().Err(err).Msg("Graph store unreachable")
	case err == nil && !s.healthy.Swap(true):
		s.logger.Info().Msg("Graph store reachable again")
	}
}

// Healthy reports the result of the last completed check.
func (s *StoreMonitorService) Healthy() bool {
	return s.healthy.Load()
}

// String implements fmt.Stringer.
func (s *StoreMonitorService) String() string {
	return s.name
}
