// Package repo implements the data persistence layer for domain entities,
// backed by the official MongoDB driver. This file provides bulk helpers for
// the referenced-only Employee and Vehicle collections, used by cmd/seed.
package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetops/go-fleet-backend/internal/domain"
)

// InsertEmployees bulk-inserts employees and returns the inserted count.
func InsertEmployees(ctx context.Context, db *mongo.Database, employees []domain.Employee) (int, error) {
	docs := make([]any, len(employees))
	for i := range employees {
		docs[i] = employees[i]
	}
	res, err := db.Collection(domain.Employee{}.CollectionName()).InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// InsertVehicles bulk-inserts vehicles and returns the inserted count.
func InsertVehicles(ctx context.Context, db *mongo.Database, vehicles []domain.Vehicle) (int, error) {
	docs := make([]any, len(vehicles))
	for i := range vehicles {
		docs[i] = vehicles[i]
	}
	res, err := db.Collection(domain.Vehicle{}.CollectionName()).InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}
