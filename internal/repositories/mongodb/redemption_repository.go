package mongodb

import (
	"context"
	"fmt"
	"time"

	"tokenride/internal/models"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type redemptionRepository struct {
	collection *mongo.Collection
}

func NewRedemptionRepository(db *mongo.Database) interfaces.RedemptionRepository {
	return &redemptionRepository{
		collection: db.Collection("redemptions"),
	}
}

func (r *redemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	redemption.ID = primitive.NewObjectID()
	redemption.RedeemedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, redemption)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create redemption: %w", err)
	}

	return nil
}

func (r *redemptionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Redemption, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find redemptions: %w", err)
	}
	defer cursor.Close(ctx)

	var redemptions []*models.Redemption
	for cursor.Next(ctx) {
		var redemption models.Redemption
		if err := cursor.Decode(&redemption); err != nil {
			return nil, 0, fmt.Errorf("failed to decode redemption: %w", err)
		}
		redemptions = append(redemptions, &redemption)
	}

	return redemptions, total, cursor.Err()
}
