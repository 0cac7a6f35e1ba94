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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ratingRetryAttempts = 5

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.IsActive = true
	user.Stats.Rating = 5.0
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

// Deactivate flags the account instead of deleting it; users are never
// hard-deleted.
func (r *userRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *userRepository) CreditTokens(ctx context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"tokens." + string(category): amount,
				"tokens.total":               amount,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to credit tokens: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

// DebitTokens folds the balance check into the filter, so a concurrent debit
// can never push a balance negative.
func (r *userRepository) DebitTokens(ctx context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":                        id,
			"tokens." + string(category): bson.M{"$gte": amount},
		},
		bson.M{
			"$inc": bson.M{
				"tokens." + string(category): -amount,
				"tokens.total":               -amount,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to debit tokens: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Matched nothing: either the user is gone or the balance fell short.
	// Reload to report which.
	wallet, err := r.GetWallet(ctx, id)
	if err != nil {
		return err
	}

	return &models.InsufficientTokensError{
		Category:  category,
		Required:  amount,
		Available: wallet.Balance(category),
	}
}

// TransferTokens moves an amount between categories in one document write.
// Total is unchanged, so only the two category balances are incremented.
func (r *userRepository) TransferTokens(ctx context.Context, id primitive.ObjectID, from, to models.TokenCategory, amount int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":                    id,
			"tokens." + string(from): bson.M{"$gte": amount},
		},
		bson.M{
			"$inc": bson.M{
				"tokens." + string(from): -amount,
				"tokens." + string(to):   amount,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to transfer tokens: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	wallet, err := r.GetWallet(ctx, id)
	if err != nil {
		return err
	}

	return &models.InsufficientTokensError{
		Category:  from,
		Required:  amount,
		Available: wallet.Balance(from),
	}
}

func (r *userRepository) GetWallet(ctx context.Context, id primitive.ObjectID) (*models.TokenWallet, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"tokens": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &user.Tokens, nil
}

// CreditRideReward credits the reward and bumps the ride counters in a single
// atomic write, so a crash cannot separate the two.
func (r *userRepository) CreditRideReward(ctx context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"tokens." + string(category): amount,
				"tokens.total":               amount,
				"stats.completed_rides":      1,
				"stats.total_rides":          1,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to credit ride reward: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

func (r *userRepository) RecordCancelledRide(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"stats.cancelled_rides": 1,
				"stats.total_rides":     1,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record cancelled ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

// ApplyRating is a read-modify-write on the running average, retried with a
// version check since the average cannot be expressed as a plain $inc.
func (r *userRepository) ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error {
	for attempt := 0; attempt < ratingRetryAttempts; attempt++ {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		stats := user.Stats
		stats.ApplyRating(rating)

		result, err := r.collection.UpdateOne(
			ctx,
			bson.M{"_id": id, "version": user.Version},
			bson.M{
				"$set": bson.M{
					"stats.rating":       stats.Rating,
					"stats.rating_count": stats.RatingCount,
					"updated_at":         time.Now(),
				},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to apply rating: %w", err)
		}
		if result.MatchedCount > 0 {
			return nil
		}
		// Lost the race; reload and retry.
	}

	return interfaces.ErrNotModified
}

func (r *userRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, lat, lng float64, address string) error {
	point := models.NewGeoPoint(lat, lng)
	point.Timestamp = time.Now()

	updates := map[string]interface{}{
		"location.current": point,
	}
	if address != "" {
		updates["location.address"] = address
	}

	return r.Update(ctx, id, updates)
}

func (r *userRepository) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	return r.Update(ctx, id, map[string]interface{}{"available": available})
}

func (r *userRepository) TouchLastSeen(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"last_seen_at": time.Now()})
}

func (r *userRepository) GetNearby(ctx context.Context, lat, lng, radiusMeters float64, role models.UserRole, exclude primitive.ObjectID) ([]*models.User, error) {
	filter := bson.M{
		"_id":       bson.M{"$ne": exclude},
		"is_active": true,
		"location.current": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}
	if role != "" {
		filter["role"] = bson.M{"$in": []models.UserRole{role, models.UserRoleBoth}}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, cursor.Err()
}

func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := bson.M{"is_active": true}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, total, cursor.Err()
}
