// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/Fadikk367/lego-shop-server/internal/logging"
)

// EventRouter is the lifecycle of *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Running() chan struct{}
	Close() error
}

// EventRouterService runs the event router under supervision.
//
// A watermill router cannot be run twice, so once Run has returned for any
// reason other than shutdown the service reports suture.ErrDoNotRestart and
// the failure is left in the log rather than retried.
type EventRouterService struct {
	router          EventRouter
	shutdownTimeout time.Duration
	name            string
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter, shutdownTimeout time.Duration) *EventRouterService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventRouterService{
		router:          router,
		shutdownTimeout: shutdownTimeout,
		name:            "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	log := logging.WithComponent("events")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.router.Run(ctx)
	}()

	select {
	case <-s.router.Running():
		log.Info().Msg("Event router running")
	case err := <-errCh:
		return s.stopped(ctx, err)
	case <-ctx.Done():
	}

	select {
	case err := <-errCh:
		return s.stopped(ctx, err)
	case <-ctx.Done():
	}

	done := make(chan error, 1)
	go func() { done <- s.router.Close() }()
	select {
	case err := <-done:
		if err != nil {
			log.Warn().Err(err).Msg("Event router close failed")
		}
	case <-time.After(s.shutdownTimeout):
		log.Warn().Dur("timeout", s.shutdownTimeout).Msg("Event router did not close in time")
	}
	return ctx.Err()
}

func (s *EventRouterService) stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return fmt.Errorf("event router stopped: %w: %w", err, suture.ErrDoNotRestart)
}

// String implements fmt.Stringer.
func (s *EventRouterService) String() string {
	return s.name
}
