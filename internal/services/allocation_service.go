// Package services – AllocationService
//
// This file implements the AllocationService, which orchestrates the
// allocation lifecycle: create (with the double-booking probe), update and
// delete (both guarded against frozen past-dated records), and filtered
// history retrieval. Every operation re-reads current state from the store
// before acting; the service holds no cached state.
//
// Service-level errors (ErrVehicleConflict, ErrPastDate,
// ErrAllocationNotFound, ErrStorageUnavailable) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetops/go-fleet-backend/internal/domain"
)

// AllocationRepo defines the persistence contract required by
// AllocationService. Implementations are thin wrappers over the allocations
// collection; absence is signalled with mongo.ErrNoDocuments.
type AllocationRepo interface {
	// InsertAllocation inserts a new allocation document and returns its
	// generated ObjectID.
	InsertAllocation(ctx context.Context, db *mongo.Database, a *domain.Allocation) (primitive.ObjectID, error)

	// FindAllocationByID fetches an allocation by its ObjectID.
	FindAllocationByID(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*domain.Allocation, error)

	// FindAllocationByVehicleAndDate fetches the allocation for an exact
	// (vehicle_id, allocation_date) pair, used as the double-booking probe.
	FindAllocationByVehicleAndDate(ctx context.Context, db *mongo.Database, vehicleID int, date time.Time) (*domain.Allocation, error)

	// ListAllocations returns allocations matching the filter, capped at limit.
	ListAllocations(ctx context.Context, db *mongo.Database, f domain.HistoryFilter, limit int64) ([]domain.Allocation, error)

	// ReplaceAllocation overwrites the full document and returns the matched count.
	ReplaceAllocation(ctx context.Context, db *mongo.Database, id primitive.ObjectID, a *domain.Allocation) (int64, error)

	// DeleteAllocation removes the document and returns the deleted count.
	DeleteAllocation(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (int64, error)
}

// AllocationService provides the allocation use-cases. It coordinates the
// pure validators with the persistence gateway; each mutating call performs
// exactly one gateway read followed by at most one write, with no retries.
//
// The conflict probe and the insert are not atomic: two concurrent creates
// for the same (vehicle, date) can both pass the probe. See DESIGN.md for
// the documented race and the optional unique-index strengthening.
type AllocationService struct {
	// DB is the Mongo database handle used for persistence. It is injected
	// at construction and owned by the hosting process's lifecycle.
	DB *mongo.Database
	// Repo is the allocation repository used by this service.
	Repo AllocationRepo

	// HistoryLimit caps history results. Values above DefaultHistoryLimit
	// are clamped back down.
	HistoryLimit int64
	// Now supplies the current time; overridable in tests.
	Now func() time.Time
}

// DefaultHistoryLimit is the hard cap on history query results. It is a
// limit, not pagination: there is no cursor or offset support.
const DefaultHistoryLimit int64 = 100

// NewAllocationService constructs an AllocationService with the default
// history cap and wall-clock time source.
func NewAllocationService(db *mongo.Database, r AllocationRepo) *AllocationService {
	return &AllocationService{
		DB:           db,
		Repo:         r,
		HistoryLimit: DefaultHistoryLimit,
		Now:          time.Now,
	}
}

// Create validates and inserts a new allocation, returning the generated id
// as a hex string.
//
// The allocation date is normalized to midnight UTC before both the conflict
// probe and the insert, so stored dates compare exactly. On any validation
// failure the store is left untouched.
func (s *AllocationService) Create(ctx context.Context, in domain.AllocationInput) (string, error) {
	date := domain.MidnightUTC(in.AllocationDate)

	existing, err := s.Repo.FindAllocationByVehicleAndDate(ctx, s.DB, in.VehicleID, date)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", storageErr("conflict probe", err)
	}

	if err := ValidateCreate(existing != nil, date, s.now()); err != nil {
		return "", err
	}

	id, err := s.Repo.InsertAllocation(ctx, s.DB, &domain.Allocation{
		EmployeeID:     in.EmployeeID,
		VehicleID:      in.VehicleID,
		AllocationDate: date,
	})
	if err != nil {
		return "", storageErr("insert", err)
	}
	return id.Hex(), nil
}

// Update overwrites all fields of an existing allocation with the new input
// (full replace, not a partial merge). The target must exist and must not be
// frozen.
//
// The new (vehicle, date) pair is intentionally not re-checked against the
// double-booking invariant; an update can introduce a collision. The gap is
// asserted by tests rather than silently fixed.
func (s *AllocationService) Update(ctx context.Context, id primitive.ObjectID, in domain.AllocationInput) error {
	current, err := s.Repo.FindAllocationByID(ctx, s.DB, id)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return storageErr("fetch", err)
	}

	if err := ValidateMutation(current, s.now()); err != nil {
		return err
	}

	matched, err := s.Repo.ReplaceAllocation(ctx, s.DB, id, &domain.Allocation{
		ID:             id,
		EmployeeID:     in.EmployeeID,
		VehicleID:      in.VehicleID,
		AllocationDate: domain.MidnightUTC(in.AllocationDate),
	})
	if err != nil {
		return storageErr("replace", err)
	}
	if matched == 0 {
		// Deleted between the read and the write.
		return ErrAllocationNotFound
	}
	return nil
}

// Delete permanently removes an allocation. The target must exist and must
// not be frozen; there is no soft delete.
func (s *AllocationService) Delete(ctx context.Context, id primitive.ObjectID) error {
	current, err := s.Repo.FindAllocationByID(ctx, s.DB, id)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return storageErr("fetch", err)
	}

	if err := ValidateMutation(current, s.now()); err != nil {
		return err
	}

	deleted, err := s.Repo.DeleteAllocation(ctx, s.DB, id)
	if err != nil {
		return storageErr("delete", err)
	}
	if deleted == 0 {
		return ErrAllocationNotFound
	}
	return nil
}

// History returns allocations matching the optional filter, capped at the
// configured limit. Result ordering is store-default.
func (s *AllocationService) History(ctx context.Context, f domain.HistoryFilter) ([]domain.Allocation, error) {
	limit := s.HistoryLimit
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	items, err := s.Repo.ListAllocations(ctx, s.DB, f, limit)
	if err != nil {
		return nil, storageErr("history", err)
	}
	return items, nil
}

// now returns the injected clock, falling back to wall-clock time when the
// service was constructed without one.
func (s *AllocationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// storageErr wraps a gateway failure in ErrStorageUnavailable so callers can
// branch on the kind while retaining the underlying cause.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
