// Package services – allocation validators
//
// This file holds the pure decision logic for the allocation write path.
// The functions take explicit inputs (stored state, the current date) and
// return sentinel errors; they never touch the store themselves, which keeps
// them trivially testable and keeps the service methods as thin orchestration.
package services

import (
	"time"

	"github.com/fleetops/go-fleet-backend/internal/domain"
)

// ValidateCreate decides whether a new allocation may be created.
//
// Rules, in order:
//  1. ErrVehicleConflict when another allocation already exists for the same
//     (vehicle, date) pair.
//  2. ErrPastDate when the requested date is strictly before today.
//
// Only the first failing rule is reported; the conflict check deliberately
// runs before the past-date check so a caller double-booking a past date sees
// the conflict.
func ValidateCreate(conflictExists bool, allocationDate, today time.Time) error {
	if conflictExists {
		return ErrVehicleConflict
	}
	if domain.MidnightUTC(allocationDate).Before(domain.MidnightUTC(today)) {
		return ErrPastDate
	}
	return nil
}

// ValidateMutation decides whether an existing allocation may be updated or
// deleted. Both paths share the same rules:
//
//   - ErrAllocationNotFound when existing is nil (record absent).
//   - ErrPastDate when the stored date has already passed; a past-dated
//     allocation is frozen and can neither change nor disappear.
func ValidateMutation(existing *domain.Allocation, today time.Time) error {
	if existing == nil {
		return ErrAllocationNotFound
	}
	if existing.IsFrozen(today) {
		return ErrPastDate
	}
	return nil
}
