// Package service implements the business rules of the ticketing core:
// checkout orchestration, the ticket lifecycle and showtime scheduling.
// Services compose repository operations inside transactions and never
// hold mutable state of their own, so any number of instances can run
// concurrently against the same database.
package service

import "errors"

// ErrTotalMismatch is returned when the client-declared total differs
// from the server-computed one by more than a cent.  The check guards
// against client-side tampering; the server-computed total is always
// the one persisted.
var ErrTotalMismatch = errors.New("total mismatch")

// ErrShowtimeExpired is returned when a seat line item references a
// showtime that has already started.
var ErrShowtimeExpired = errors.New("showtime expired")

// ErrShowtimeStarted is returned when a ticket for an already-started
// showtime is cancelled.
var ErrShowtimeStarted = errors.New("showtime already started")

// ErrCancellationWindowClosed is returned when a cancellation arrives
// later than the configured buffer before the showtime start.
var ErrCancellationWindowClosed = errors.New("cancellation window closed")

// ErrIdempotencyKeyRequired is returned when a checkout request carries
// no idempotency key.  Without a key a retried request whose first
// attempt committed but was not acknowledged would purchase twice.
var ErrIdempotencyKeyRequired = errors.New("idempotency key required")

// ErrIdempotencyConflict is returned when a checkout replays a known
// idempotency key with a different declared total.
var ErrIdempotencyConflict = errors.New("idempotency conflict")
