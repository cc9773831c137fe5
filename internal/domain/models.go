// Package domain defines the persistence models for vehicle allocations and
// the reference entities they point at. These types are mapped with bson tags
// for MongoDB and form the core data layer of the allocation application.
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Allocation represents the assignment of one vehicle to one employee for a
// single calendar date. It is the only entity this service owns; employees
// and vehicles are referenced by opaque integer IDs without FK enforcement.
//
// Fields:
//   - ID: store-generated ObjectID, stable once created.
//   - EmployeeID: positive integer referencing an employee.
//   - VehicleID: positive integer referencing a vehicle.
//   - AllocationDate: calendar date persisted as a timestamp normalized to
//     midnight UTC (see MidnightUTC) so equality comparisons are exact.
//
// Invariants (enforced by the service layer):
//   - At most one allocation may exist per (VehicleID, AllocationDate).
//   - An allocation whose date has passed is frozen: no update, no delete.
type Allocation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID     int                `bson:"employee_id" json:"employee_id"`
	VehicleID      int                `bson:"vehicle_id" json:"vehicle_id"`
	AllocationDate time.Time          `bson:"allocation_date" json:"allocation_date"`
}

// CollectionName returns the MongoDB collection name for Allocation.
func (Allocation) CollectionName() string { return "allocations" }

// IsFrozen reports whether the allocation date is strictly before today,
// meaning the record may no longer be updated or deleted. Both sides are
// compared at midnight-UTC granularity.
func (a Allocation) IsFrozen(today time.Time) bool {
	return a.AllocationDate.Before(MidnightUTC(today))
}

// Employee is a referenced-only entity seeded by cmd/seed. The core never
// validates that an allocation's EmployeeID resolves to a stored employee.
type Employee struct {
	ID         int    `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	Department string `bson:"department" json:"department"`
}

// CollectionName returns the MongoDB collection name for Employee.
func (Employee) CollectionName() string { return "employees" }

// Vehicle is a referenced-only entity seeded by cmd/seed.
type Vehicle struct {
	ID       int    `bson:"id" json:"id"`
	Model    string `bson:"model" json:"model"`
	DriverID int    `bson:"driver_id" json:"driver_id"`
}

// CollectionName returns the MongoDB collection name for Vehicle.
func (Vehicle) CollectionName() string { return "vehicles" }

// AllocationInput carries the caller-supplied fields of an allocation for
// create and update operations. The date is normalized by the service before
// it reaches the store.
type AllocationInput struct {
	EmployeeID     int
	VehicleID      int
	AllocationDate time.Time
}

// HistoryFilter holds the optional constraints for a history query. Each
// field is independently optional: a zero EmployeeID/VehicleID or a nil date
// pointer means the constraint is absent.
//
// The date range is applied only when BOTH DateFrom and DateTo are set;
// providing a single bound has no effect. When applied the range is
// inclusive on both ends.
type HistoryFilter struct {
	EmployeeID int
	VehicleID  int
	DateFrom   *time.Time
	DateTo     *time.Time
}

// HasDateRange reports whether both range bounds are present.
func (f HistoryFilter) HasDateRange() bool {
	return f.DateFrom != nil && f.DateTo != nil
}

// MidnightUTC collapses a timestamp to midnight UTC of its calendar day.
// All allocation dates are anchored this way before storage so that the
// (vehicle_id, allocation_date) conflict probe compares exact values.
func MidnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
