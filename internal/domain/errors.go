package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing license plate, non-positive cargo weight).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with existing state: a
// duplicate license plate, deleting a vehicle that still has trips, or
// changing the status of a vehicle that is out on a trip.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition is returned when a trip status change is not allowed
// by the trip state machine (e.g. COMPLETED -> DISPATCHED).
// Handlers should map this to HTTP 409.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInconsistent signals that stored state contradicts an invariant, for
// example a DISPATCHED trip whose vehicle is not ON_TRIP, or a trip insert
// whose vehicle or driver was deleted after validation. It is a server
// fault: the transaction is rolled back, nothing is committed, and the
// caller may retry.
var ErrInconsistent = errors.New("inconsistent state")
