// Package services defines the business logic for vehicle allocations.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Allocation-related errors.
var (
	// ErrVehicleConflict is returned when the requested vehicle already has
	// an allocation on the requested date (one allocation per vehicle per
	// day).
	ErrVehicleConflict = errors.New("vehicle is already allocated for this date")

	// ErrPastDate is returned when a create request carries a date in the
	// past, or when an update/delete targets an allocation whose date has
	// already passed (frozen record).
	ErrPastDate = errors.New("allocation date is in the past")

	// ErrAllocationNotFound indicates that the referenced allocation id does
	// not exist.
	ErrAllocationNotFound = errors.New("allocation not found")

	// ErrStorageUnavailable wraps failures of the persistence gateway itself
	// (connectivity, timeouts). It is propagated to the caller without retry;
	// the underlying cause is attached via %w chaining.
	ErrStorageUnavailable = errors.New("allocation store unavailable")
)
