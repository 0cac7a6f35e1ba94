package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the ride and user queries depend on.
// Safe to call on every startup; Mongo treats existing indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "location.current", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	}

	rides := []mongo.IndexModel{
		{Keys: bson.D{{Key: "pickup.location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "destination.location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "driver", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "rider", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	redemptions := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "redeemed_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "voucher_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	for collection, models := range map[string][]mongo.IndexModel{
		"users":       users,
		"rides":       rides,
		"redemptions": redemptions,
	} {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	return nil
}
