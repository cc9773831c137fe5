// Package repo implements the data persistence layer for domain entities,
// backed by the official MongoDB driver. This file contains the connection
// bootstrap and index management.
package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"github.com/fleetops/go-fleet-backend/internal/domain"
)

// connectTimeout bounds the initial server selection and ping.
const connectTimeout = 10 * time.Second

// Connect opens a MongoDB client for the given URI, verifies connectivity
// with a ping, and returns the named database handle. Command monitoring is
// instrumented with OpenTelemetry spans.
//
// The returned client is owned by the caller; close it via Disconnect on the
// database's Client() during shutdown.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client.Database(dbName), nil
}

// EnsureIndexes creates the indexes the service relies on:
//
//   - allocations (vehicle_id, allocation_date): non-unique compound index
//     backing the double-booking probe and history scans. It is deliberately
//     NOT unique: the check-then-insert race is a documented property of the
//     write path, and enforcement stays in the service layer.
//   - idempotency (key): unique, so concurrent retries with the same key
//     cannot both record a result.
//   - idempotency (expires_at): TTL index, records vanish after expiry.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(domain.Allocation{}.CollectionName()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "vehicle_id", Value: 1},
			{Key: "allocation_date", Value: 1},
		},
		Options: options.Index().SetName("ix_vehicle_date"),
	})
	if err != nil {
		return err
	}

	idem := db.Collection(domain.IdempotencyRecord{}.CollectionName())
	_, err = idem.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetName("ux_idempotency_key").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_idempotency_expiry").SetExpireAfterSeconds(0),
		},
	})
	return err
}
