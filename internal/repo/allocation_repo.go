// Package repo implements the data persistence layer for domain entities,
// backed by the official MongoDB driver. This file provides repository
// functions for the Allocation model.
//
// All functions are context-aware and accept a *mongo.Database handle. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an allocation is not found, functions return mongo.ErrNoDocuments
//     (also exported here as ErrNoDocuments for convenience).
//   - On driver errors (connectivity, timeouts), the raw error is propagated;
//     the service layer wraps those in its storage-unavailable kind.
package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetops/go-fleet-backend/internal/domain"
)

// ErrNoDocuments is returned when a requested record does not exist. It
// aliases mongo.ErrNoDocuments for consistency across the service layer.
var ErrNoDocuments = mongo.ErrNoDocuments

// allocations returns the allocations collection handle.
func allocations(db *mongo.Database) *mongo.Collection {
	return db.Collection(domain.Allocation{}.CollectionName())
}

// InsertAllocation inserts a new allocation document and returns the
// store-generated ObjectID. Callers are expected to have normalized the
// allocation date to midnight UTC beforehand.
func InsertAllocation(ctx context.Context, db *mongo.Database, a *domain.Allocation) (primitive.ObjectID, error) {
	res, err := allocations(db).InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// FindAllocationByID fetches a single allocation by its ObjectID, returning
// ErrNoDocuments if missing.
func FindAllocationByID(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*domain.Allocation, error) {
	var a domain.Allocation
	err := allocations(db).FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAllocationByVehicleAndDate fetches the allocation for an exact
// (vehicle_id, allocation_date) pair. This is the double-booking probe; the
// date must already be midnight-anchored for the equality match to hit.
func FindAllocationByVehicleAndDate(ctx context.Context, db *mongo.Database, vehicleID int, date time.Time) (*domain.Allocation, error) {
	var a domain.Allocation
	err := allocations(db).FindOne(ctx, bson.M{
		"vehicle_id":      vehicleID,
		"allocation_date": date,
	}).Decode(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAllocations returns allocations matching the filter, capped at limit.
// Ordering is store-default; there is no cursor or offset support.
func ListAllocations(ctx context.Context, db *mongo.Database, f domain.HistoryFilter, limit int64) ([]domain.Allocation, error) {
	cur, err := allocations(db).Find(ctx, HistoryQuery(f), options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Allocation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAllocation overwrites the full document for id and returns the
// matched count (0 when the record vanished between read and write).
func ReplaceAllocation(ctx context.Context, db *mongo.Database, id primitive.ObjectID, a *domain.Allocation) (int64, error) {
	res, err := allocations(db).ReplaceOne(ctx, bson.M{"_id": id}, a)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// DeleteAllocation permanently removes the document for id and returns the
// deleted count.
func DeleteAllocation(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (int64, error) {
	res, err := allocations(db).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// HistoryQuery translates the optional history filter into a Mongo query
// document.
//
// Semantics:
//   - EmployeeID / VehicleID become equality constraints when non-zero.
//   - The date range is applied only when BOTH bounds are present, as an
//     inclusive $gte/$lte pair. A single bound has no effect.
//   - An empty filter yields an unconstrained query.
func HistoryQuery(f domain.HistoryFilter) bson.M {
	q := bson.M{}
	if f.EmployeeID != 0 {
		q["employee_id"] = f.EmployeeID
	}
	if f.VehicleID != 0 {
		q["vehicle_id"] = f.VehicleID
	}
	if f.HasDateRange() {
		q["allocation_date"] = bson.M{
			"$gte": domain.MidnightUTC(*f.DateFrom),
			"$lte": domain.MidnightUTC(*f.DateTo),
		}
	}
	return q
}
