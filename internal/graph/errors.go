// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// Error kinds returned by every Store. Callers branch with errors.Is; the
// text of the backing engine's error never appears in these values.
var (
	// ErrStoreUnavailable means the store could not be reached or the call
	// timed out. Writes that fail this way are not assumed committed.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrQueryFailed means the store rejected or failed a well-formed request.
	ErrQueryFailed = errors.New("graph query failed")

	// ErrNotFound means a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation means a write referenced an entity that does not
	// exist (a product's category, an order's user or products). It is a
	// QueryFailed: errors.Is(err, ErrQueryFailed) holds as well.
	ErrConstraintViolation = fmt.Errorf("%w: constraint violation", ErrQueryFailed)

	// ErrConflict means a uniqueness expectation was violated (duplicate email).
	ErrConflict = errors.New("already exists")
)

// EntityError ties an error kind to the entity that caused it.
type EntityError struct {
	Op   string
	Ref  models.EntityRef
	Kind error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Ref, e.Kind)
}

func (e *EntityError) Unwrap() error {
	return e.Kind
}

func notFound(op string, kind models.Kind, id int64) error {
	return &EntityError{Op: op, Ref: models.Ref(kind, id), Kind: ErrNotFound}
}

func constraintViolation(op string, kind models.Kind, id int64) error {
	return &EntityError{Op: op, Ref: models.Ref(kind, id), Kind: ErrConstraintViolation}
}

// opError wraps one of the package sentinels with the operation name.
func opError(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// ctxError reports a call abandoned because ctx ended. The context error
// stays in the chain so a client cancellation can be told apart from a
// timeout.
func ctxError(op string, cause error) error {
	if !isContextError(cause) {
		return opError(op, ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, cause)
}

// isCancellation reports a call the caller gave up on. It says nothing about
// store health.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// isDomainError reports whether err already carries one of the package kinds.
func isDomainError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrQueryFailed) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict)
}

// isContextError reports deadline and cancellation errors.
func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// ErrorKind returns a short stable label for err, for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrQueryFailed):
		return "query_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "unknown"
	}
}

// isCallerError reports errors caused by the request rather than the store.
// They must not count against store health.
func isCallerError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrConflict)
}
