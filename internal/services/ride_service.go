package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokenride/internal/models"
	"tokenride/internal/observability"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier mirrors authoritative ride transitions to connected clients.
// Delivery is best-effort; a false return means the recipient was offline
// and the event was dropped.
type Notifier interface {
	NotifyUser(userID string, event string, data map[string]interface{}) bool
}

type CreateRideInput struct {
	Pickup        models.RidePoint
	Destination   models.RidePoint
	ScheduledTime *time.Time
	MaxPassengers int
	Notes         string
	TokenCategory models.TokenCategory
}

type RideService struct {
	rides    interfaces.RideRepository
	users    interfaces.UserRepository
	notifier Notifier
	log      *logger.Logger
}

func NewRideService(rides interfaces.RideRepository, users interfaces.UserRepository, notifier Notifier, log *logger.Logger) *RideService {
	return &RideService{
		rides:    rides,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// CreateRide opens a pending ride offer. Distance, duration and the token
// reward are computed once here and are immutable afterwards.
func (s *RideService) CreateRide(ctx context.Context, driverID primitive.ObjectID, input *CreateRideInput) (*models.Ride, error) {
	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !driver.Role.CanDrive() {
		return nil, ErrNotDriverCapable
	}

	if err := validateRidePoint(&input.Pickup, "pickup"); err != nil {
		return nil, err
	}
	if err := validateRidePoint(&input.Destination, "destination"); err != nil {
		return nil, err
	}

	distance := utils.CalculateDistance(
		input.Pickup.Location.Latitude(), input.Pickup.Location.Longitude(),
		input.Destination.Location.Latitude(), input.Destination.Location.Longitude(),
	)
	duration := models.EstimateDuration(distance)

	category := input.TokenCategory
	if category == "" {
		category = models.TokenCategoryFood
	}
	if !category.Valid() {
		return nil, models.ErrInvalidCategory
	}

	maxPassengers := input.MaxPassengers
	if maxPassengers < 1 {
		maxPassengers = 1
	}
	if maxPassengers > utils.MaxPassengers {
		return nil, validationErrorf("max passengers cannot exceed %d", utils.MaxPassengers)
	}
	if len(input.Notes) > utils.MaxNotesLength {
		return nil, validationErrorf("notes cannot exceed %d characters", utils.MaxNotesLength)
	}

	scheduledTime := time.Now()
	if input.ScheduledTime != nil {
		scheduledTime = *input.ScheduledTime
	}

	ride := &models.Ride{
		Driver:      driverID,
		Pickup:      input.Pickup,
		Destination: input.Destination,
		Route: models.RideRoute{
			Distance: distance,
			Duration: duration,
		},
		Tokens: models.TokenReward{
			Amount:   models.CalculateTokens(distance, duration),
			Category: category,
		},
		ScheduledTime: scheduledTime,
		MaxPassengers: maxPassengers,
		Notes:         input.Notes,
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}

	observability.RidesCreated.Inc()
	s.log.LogRideEvent(ride.ID, "created", map[string]interface{}{
		"driver":   driverID.Hex(),
		"distance": distance,
		"tokens":   ride.Tokens.Amount,
	})

	ride.DriverProfile = driver.PublicProfile()

	return ride, nil
}

func (s *RideService) GetRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rides.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	s.attachProfiles(ctx, ride)

	return ride, nil
}

// NearbyRides returns pending rides around a point, nearest first.
func (s *RideService) NearbyRides(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Ride, error) {
	if radiusMeters <= 0 {
		radiusMeters = utils.DefaultSearchRadiusM
	}
	if radiusMeters > utils.MaxSearchRadiusM {
		radiusMeters = utils.MaxSearchRadiusM
	}

	rides, err := s.rides.GetNearbyPending(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}

	for _, ride := range rides {
		s.attachProfiles(ctx, ride)
	}

	return rides, nil
}

// JoinRide claims the rider slot with a single conditional write, so two
// concurrent joins against the same pending ride cannot both succeed.
func (s *RideService) JoinRide(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.Ride, error) {
	rider, err := s.users.GetByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !rider.Role.CanRide() {
		return nil, ErrNotRiderCapable
	}

	current, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	if current.Driver == riderID {
		return nil, ErrOwnRide
	}

	ride, err := s.rides.Join(ctx, rideID, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			return nil, s.classifyJoinFailure(ctx, rideID)
		}
		return nil, err
	}

	observability.RidesJoined.Inc()
	s.log.LogRideEvent(ride.ID, "joined", map[string]interface{}{
		"rider": riderID.Hex(),
	})

	s.notify(ride.Driver, "ride_accepted", map[string]interface{}{
		"ride_id":  ride.ID.Hex(),
		"rider_id": riderID.Hex(),
	})

	s.attachProfiles(ctx, ride)

	return ride, nil
}

// classifyJoinFailure reloads the ride after a failed conditional join to
// report which precondition broke.
func (s *RideService) classifyJoinFailure(ctx context.Context, rideID primitive.ObjectID) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrRideNotFound
		}
		return err
	}

	if ride.Rider != nil {
		return ErrRideTaken
	}
	if ride.Status != models.RideStatusPending {
		return ErrRideNotPending
	}

	return ErrRideNotPending
}

// UpdateStatus walks one edge of the ride state machine. Re-entrant and
// backward transitions are rejected rather than silently re-stamped.
func (s *RideService) UpdateStatus(ctx context.Context, rideID, userID primitive.ObjectID, newStatus models.RideStatus, reason string) (*models.Ride, error) {
	if !newStatus.Valid() || newStatus == models.RideStatusPending {
		return nil, &InvalidTransitionError{From: "", To: string(newStatus)}
	}

	current, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if !current.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	// A completed ride whose payout did not land keeps distributed == false.
	// Re-completing it retries the distribution instead of dead-ending on the
	// state machine; the per-side claims make the retry safe.
	if newStatus == models.RideStatusCompleted &&
		current.Status == models.RideStatusCompleted && !current.Tokens.Distributed {
		if err := s.DistributeTokens(ctx, current); err != nil {
			return nil, err
		}
		current.Tokens.Distributed = true
		s.attachProfiles(ctx, current)
		return current, nil
	}

	if !current.Status.CanTransitionTo(newStatus) {
		return nil, &InvalidTransitionError{From: string(current.Status), To: string(newStatus)}
	}

	var cancelledBy *primitive.ObjectID
	if newStatus == models.RideStatusCancelled {
		cancelledBy = &userID
	}

	ride, err := s.rides.UpdateStatus(ctx, rideID, current.Status, newStatus, cancelledBy, reason)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			// Lost a race with another transition; report against the
			// fresh state.
			fresh, ferr := s.rides.GetByID(ctx, rideID)
			if ferr != nil {
				return nil, ErrRideNotFound
			}
			return nil, &InvalidTransitionError{From: string(fresh.Status), To: string(newStatus)}
		}
		return nil, err
	}

	observability.RideTransitions.WithLabelValues(string(newStatus)).Inc()
	s.log.LogRideEvent(ride.ID, "status_changed", map[string]interface{}{
		"from": string(current.Status),
		"to":   string(newStatus),
		"by":   userID.Hex(),
	})

	switch newStatus {
	case models.RideStatusCompleted:
		if err := s.DistributeTokens(ctx, ride); err != nil {
			// The ride is completed but the payout did not land; the
			// per-side claims were released, so a retry can re-attempt.
			s.log.WithError(err).WithRideID(ride.ID).Error("Token distribution failed")
			return nil, err
		}
		ride.Tokens.Distributed = true

	case models.RideStatusCancelled:
		s.recordCancellation(ctx, ride)
	}

	s.notifyCounterpart(ride, userID, "ride_status_changed", map[string]interface{}{
		"ride_id": ride.ID.Hex(),
		"status":  string(newStatus),
		"by":      userID.Hex(),
	})

	s.attachProfiles(ctx, ride)

	return ride, nil
}

// DistributeTokens performs the one-time payout for a completed ride. Each
// participant's credit is claimed with a conditional flip of its credited
// flag, so concurrent invocations credit at most once per side, and a failed
// ledger write releases the claim for a later retry.
func (s *RideService) DistributeTokens(ctx context.Context, ride *models.Ride) error {
	if ride.Tokens.Distributed {
		return nil
	}

	if err := s.creditParticipant(ctx, ride, interfaces.ParticipantDriver, ride.Driver); err != nil {
		return err
	}

	if ride.Rider != nil {
		if err := s.creditParticipant(ctx, ride, interfaces.ParticipantRider, *ride.Rider); err != nil {
			return err
		}
	}

	if err := s.rides.MarkDistributed(ctx, ride.ID); err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			// Another invocation finished first.
			return nil
		}
		return err
	}

	s.log.LogRideEvent(ride.ID, "tokens_distributed", map[string]interface{}{
		"amount":   ride.Tokens.Amount,
		"category": string(ride.Tokens.Category),
	})

	return nil
}

func (s *RideService) creditParticipant(ctx context.Context, ride *models.Ride, side interfaces.RideParticipant, userID primitive.ObjectID) error {
	err := s.rides.ClaimParticipantCredit(ctx, ride.ID, side)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			// Already claimed by a concurrent or earlier invocation.
			return nil
		}
		return err
	}

	if err := s.users.CreditRideReward(ctx, userID, ride.Tokens.Category, ride.Tokens.Amount); err != nil {
		if releaseErr := s.rides.ReleaseParticipantCredit(ctx, ride.ID, side); releaseErr != nil {
			s.log.WithError(releaseErr).WithRideID(ride.ID).Error("Failed to release credit claim")
		}
		return fmt.Errorf("failed to credit %s: %w", side, err)
	}

	observability.TokensDistributed.WithLabelValues(string(ride.Tokens.Category)).Add(float64(ride.Tokens.Amount))
	s.log.LogTokenEvent(userID, "ride_reward", string(ride.Tokens.Category), ride.Tokens.Amount)

	return nil
}

func (s *RideService) recordCancellation(ctx context.Context, ride *models.Ride) {
	participants := []primitive.ObjectID{ride.Driver}
	if ride.Rider != nil {
		participants = append(participants, *ride.Rider)
	}

	for _, id := range participants {
		if err := s.users.RecordCancelledRide(ctx, id); err != nil {
			s.log.WithError(err).WithUserID(id).Warn("Failed to record cancelled ride")
		}
	}
}

// History lists rides where the caller is driver or rider, newest first.
func (s *RideService) History(ctx context.Context, userID primitive.ObjectID, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, validationErrorf("invalid ride status %q", status)
	}

	rides, total, err := s.rides.GetHistory(ctx, userID, status, params)
	if err != nil {
		return nil, 0, err
	}

	for _, ride := range rides {
		s.attachProfiles(ctx, ride)
	}

	return rides, total, nil
}

// RateRide records one side's rating and folds it into the counterpart's
// running average. Each side can rate exactly once, ever.
func (s *RideService) RateRide(ctx context.Context, rideID, userID primitive.ObjectID, rating int, feedback string) (*models.Ride, error) {
	if rating < utils.MinRating || rating > utils.MaxRating {
		return nil, validationErrorf("rating must be between %d and %d", utils.MinRating, utils.MaxRating)
	}
	if len(feedback) > utils.MaxFeedbackLength {
		return nil, validationErrorf("feedback cannot exceed %d characters", utils.MaxFeedbackLength)
	}

	current, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if !current.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	if current.Status != models.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}

	side := interfaces.ParticipantRider
	var counterpart *primitive.ObjectID
	if current.IsDriver(userID) {
		side = interfaces.ParticipantDriver
		counterpart = current.Rider
	} else {
		counterpart = &current.Driver
	}

	ride, err := s.rides.SetRating(ctx, rideID, side, rating, feedback)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			return nil, ErrAlreadyRated
		}
		return nil, err
	}

	if counterpart != nil {
		if err := s.users.ApplyRating(ctx, *counterpart, rating); err != nil {
			s.log.WithError(err).WithUserID(*counterpart).Error("Failed to update rating average")
		}
	}

	s.log.LogRideEvent(ride.ID, "rated", map[string]interface{}{
		"side":   string(side),
		"rating": rating,
	})

	s.attachProfiles(ctx, ride)

	return ride, nil
}

func (s *RideService) attachProfiles(ctx context.Context, ride *models.Ride) {
	if driver, err := s.users.GetByID(ctx, ride.Driver); err == nil {
		ride.DriverProfile = driver.PublicProfile()
	}
	if ride.Rider != nil {
		if rider, err := s.users.GetByID(ctx, *ride.Rider); err == nil {
			ride.RiderProfile = rider.PublicProfile()
		}
	}
}

func (s *RideService) notify(userID primitive.ObjectID, event string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID.Hex(), event, data)
}

func (s *RideService) notifyCounterpart(ride *models.Ride, actor primitive.ObjectID, event string, data map[string]interface{}) {
	if ride.IsDriver(actor) {
		if ride.Rider != nil {
			s.notify(*ride.Rider, event, data)
		}
		return
	}
	s.notify(ride.Driver, event, data)
}

func validateRidePoint(point *models.RidePoint, name string) error {
	if len(point.Location.Coordinates) != 2 {
		return validationErrorf("%s location requires [longitude, latitude] coordinates", name)
	}
	lat, lng := point.Location.Latitude(), point.Location.Longitude()
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return validationErrorf("%s location coordinates are out of range", name)
	}
	if point.Address == "" {
		return validationErrorf("%s address is required", name)
	}
	if point.Location.Type == "" {
		point.Location.Type = "Point"
	}
	return nil
}
