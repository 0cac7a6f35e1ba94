package mongodb

import (
	"context"
	"fmt"
	"time"

	"tokenride/internal/models"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/services"
	"tokenride/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	now := time.Now()
	ride.ID = primitive.NewObjectID()
	ride.Status = models.RideStatusPending
	ride.Timestamps.Requested = now
	ride.CreatedAt = now
	ride.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	r.cacheRide(ctx, ride)

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if !ride.Status.Terminal() {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

// Join fills the rider slot only while the ride is still pending and
// unclaimed, so two concurrent joins cannot both succeed.
func (r *rideRepository) Join(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	now := time.Now()

	filter := bson.M{
		"_id":    id,
		"status": models.RideStatusPending,
		"rider":  nil,
	}
	update := bson.M{
		"$set": bson.M{
			"rider":               riderID,
			"status":              models.RideStatusAccepted,
			"timestamps.accepted": now,
			"updated_at":          now,
		},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus, cancelledBy *primitive.ObjectID, reason string) (*models.Ride, error) {
	now := time.Now()

	set := bson.M{
		"status":     to,
		"updated_at": now,
	}

	switch to {
	case models.RideStatusAccepted:
		set["timestamps.accepted"] = now
	case models.RideStatusInProgress:
		set["timestamps.started"] = now
	case models.RideStatusCompleted:
		set["timestamps.completed"] = now
	case models.RideStatusCancelled:
		set["timestamps.cancelled"] = now
		set["cancellation.timestamp"] = now
		if cancelledBy != nil {
			set["cancellation.cancelled_by"] = *cancelledBy
		}
		if reason != "" {
			set["cancellation.reason"] = reason
		}
	}

	filter := bson.M{"_id": id, "status": from}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
}

func (r *rideRepository) ClaimParticipantCredit(ctx context.Context, id primitive.ObjectID, side interfaces.RideParticipant) error {
	field := creditedField(side)

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":            id,
			"status":         models.RideStatusCompleted,
			"tokens." + field: false,
		},
		bson.M{"$set": bson.M{"tokens." + field: true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to claim %s credit: %w", side, err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotModified
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) ReleaseParticipantCredit(ctx context.Context, id primitive.ObjectID, side interfaces.RideParticipant) error {
	field := creditedField(side)

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "tokens." + field: true},
		bson.M{"$set": bson.M{"tokens." + field: false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to release %s credit: %w", side, err)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// MarkDistributed flips the distributed flag exactly once, and only after
// both participant credits have landed.
func (r *rideRepository) MarkDistributed(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":                    id,
			"tokens.distributed":     false,
			"tokens.driver_credited": true,
			"$or": []bson.M{
				{"rider": nil},
				{"tokens.rider_credited": true},
			},
		},
		bson.M{"$set": bson.M{"tokens.distributed": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark tokens distributed: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotModified
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) SetRating(ctx context.Context, id primitive.ObjectID, side interfaces.RideParticipant, rating int, feedback string) (*models.Ride, error) {
	ratingField := "rating.driver_rating"
	feedbackField := "rating.driver_feedback"
	if side == interfaces.ParticipantRider {
		ratingField = "rating.rider_rating"
		feedbackField = "rating.rider_feedback"
	}

	filter := bson.M{
		"_id":       id,
		"status":    models.RideStatusCompleted,
		ratingField: nil,
	}
	update := bson.M{
		"$set": bson.M{
			ratingField:   rating,
			feedbackField: feedback,
			"updated_at":  time.Now(),
		},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *rideRepository) GetNearbyPending(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Ride, error) {
	filter := bson.M{
		"status": models.RideStatusPending,
		"pickup.location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}

	// $near sorts nearest-first already.
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby rides: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeRides(ctx, cursor)
}

func (r *rideRepository) GetHistory(ctx context.Context, userID primitive.ObjectID, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"driver": userID},
			{"rider": userID},
		},
	}
	if status != "" {
		filter["status"] = status
	}

	return r.findRidesWithFilter(ctx, filter, params)
}

func (r *rideRepository) GetDistributed(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"driver": userID},
			{"rider": userID},
		},
		"status":             models.RideStatusCompleted,
		"tokens.distributed": true,
	}

	return r.findRidesWithFilter(ctx, filter, params)
}

func (r *rideRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Ride, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotModified
		}
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}

	r.invalidateRideCache(ctx, ride.ID.Hex())

	return &ride, nil
}

func (r *rideRepository) findRidesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	rides, err := decodeRides(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	return rides, total, nil
}

func decodeRides(ctx context.Context, cursor *mongo.Cursor) ([]*models.Ride, error) {
	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, cursor.Err()
}

func creditedField(side interfaces.RideParticipant) string {
	if side == interfaces.ParticipantRider {
		return "rider_credited"
	}
	return "driver_credited"
}

// Cache helpers: active rides are cached for quick status lookups and
// invalidated on every write. Cache failures are deliberately non-fatal.

func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache == nil {
		return
	}
	_ = r.cache.SetRide(ctx, ride)
}

func (r *rideRepository) getRideFromCache(ctx context.Context, id string) *models.Ride {
	if r.cache == nil {
		return nil
	}
	ride, err := r.cache.GetRide(ctx, id)
	if err != nil {
		return nil
	}
	return ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeleteRide(ctx, id)
}
