// Package repo implements the data persistence layer for domain entities,
// backed by the official MongoDB driver. This file provides repository
// helpers for the IdempotencyRecord model used to implement safe-retry
// semantics for POST /allocations.
package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetops/go-fleet-backend/internal/domain"
)

// ErrDuplicateKey indicates that an idempotency record already exists for
// the given key.
var ErrDuplicateKey = errors.New("idempotency key already recorded")

// idempotency returns the idempotency collection handle.
func idempotency(db *mongo.Database) *mongo.Collection {
	return db.Collection(domain.IdempotencyRecord{}.CollectionName())
}

// GetIdempotency returns the non-expired record for key, or ErrNoDocuments.
// Expiry is double-checked here because the TTL monitor only sweeps
// periodically; a record past its ExpiresAt may still be present.
func GetIdempotency(ctx context.Context, db *mongo.Database, key string, now time.Time) (*domain.IdempotencyRecord, error) {
	var rec domain.IdempotencyRecord
	err := idempotency(db).FindOne(ctx, bson.M{
		"key":        key,
		"expires_at": bson.M{"$gt": now},
	}).Decode(&rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency records the outcome of a completed create so later
// retries with the same key can replay it. Returns ErrDuplicateKey when the
// unique index on key rejects the insert (a concurrent retry won).
func CreateIdempotency(ctx context.Context, db *mongo.Database, key, allocationID string, status int, ttl time.Duration) (*domain.IdempotencyRecord, error) {
	now := time.Now().UTC()
	rec := &domain.IdempotencyRecord{
		Key:          key,
		AllocationID: allocationID,
		Status:       status,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if _, err := idempotency(db).InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return rec, nil
}
