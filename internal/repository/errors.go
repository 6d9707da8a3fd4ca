// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios and translate them into
// HTTP statuses: ErrForbidden becomes 403, ErrNotFound 404, ErrInvalidState
// 409 and ErrCapacityExceeded 400.
package repository

import "errors"

// ErrNotFound is returned when no row matches the requested identifier.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when a lifecycle operation is illegal for the
// entity's current status, e.g. accepting an SOS request that is no longer
// pending.
var ErrInvalidState = errors.New("invalid state for operation")

// ErrCapacityExceeded is returned when a shelter occupancy update would push
// current occupancy above capacity.  Nothing is written in that case.
var ErrCapacityExceeded = errors.New("occupancy exceeds capacity")

// ErrEmailExists is returned when registration collides with an existing
// email address.
var ErrEmailExists = errors.New("email already exists")
