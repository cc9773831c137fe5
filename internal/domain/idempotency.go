// Package domain defines the core persistence models for the application.
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdempotencyRecord stores the outcome of a previously processed create
// request, keyed by the client-supplied Idempotency-Key. It enables safe
// retries of POST /allocations: a replayed key returns the originally
// created allocation instead of re-executing the write.
//
// Records expire via a TTL index on ExpiresAt (see repo.EnsureIndexes).
type IdempotencyRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Key          string             `bson:"key"`
	AllocationID string             `bson:"allocation_id"`
	Status       int                `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
	ExpiresAt    time.Time          `bson:"expires_at"`
}

// CollectionName returns the MongoDB collection name for IdempotencyRecord.
func (IdempotencyRecord) CollectionName() string { return "idempotency" }
