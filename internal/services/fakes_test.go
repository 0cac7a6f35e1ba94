package services

import (
	"context"
	"sync"
	"time"

	"tokenride/internal/models"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: "error", Output: "stderr"})
	return log
}

// fakeUserRepo is an in-memory UserRepository with the same conditional-write
// semantics as the mongo implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	// creditRewardErr, when set, makes CreditRideReward fail.
	creditRewardErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) add(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.IsActive = true
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Phone == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "profile.first_name":
			user.Profile.FirstName = value.(string)
		case "profile.last_name":
			user.Profile.LastName = value.(string)
		case "profile.avatar":
			user.Profile.Avatar = value.(string)
		case "profile.bio":
			user.Profile.Bio = value.(string)
		case "role":
			user.Role = value.(models.UserRole)
		}
	}
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.IsActive = false
	return nil
}

func (f *fakeUserRepo) CreditTokens(_ context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	return user.Tokens.Credit(category, amount)
}

func (f *fakeUserRepo) DebitTokens(_ context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	return user.Tokens.Debit(category, amount)
}

func (f *fakeUserRepo) TransferTokens(_ context.Context, id primitive.ObjectID, from, to models.TokenCategory, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	return user.Tokens.Transfer(from, to, amount)
}

func (f *fakeUserRepo) GetWallet(_ context.Context, id primitive.ObjectID) (*models.TokenWallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	wallet := user.Tokens
	return &wallet, nil
}

func (f *fakeUserRepo) CreditRideReward(_ context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditRewardErr != nil {
		return f.creditRewardErr
	}
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if err := user.Tokens.Credit(category, amount); err != nil {
		return err
	}
	user.Stats.CompletedRides++
	user.Stats.TotalRides++
	return nil
}

func (f *fakeUserRepo) RecordCancelledRide(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.Stats.CancelledRides++
	user.Stats.TotalRides++
	return nil
}

func (f *fakeUserRepo) ApplyRating(_ context.Context, id primitive.ObjectID, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.Stats.ApplyRating(rating)
	user.Version++
	return nil
}

func (f *fakeUserRepo) UpdateLocation(_ context.Context, id primitive.ObjectID, lat, lng float64, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.Location = models.UserLocation{Current: models.NewGeoPoint(lat, lng), Address: address}
	return nil
}

func (f *fakeUserRepo) SetAvailability(_ context.Context, id primitive.ObjectID, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.Available = available
	return nil
}

func (f *fakeUserRepo) TouchLastSeen(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	now := time.Now()
	user.LastSeenAt = &now
	return nil
}

func (f *fakeUserRepo) GetNearby(_ context.Context, _, _, _ float64, role models.UserRole, exclude primitive.ObjectID) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, user := range f.users {
		if user.ID == exclude || !user.IsActive {
			continue
		}
		if role != "" && user.Role != role && user.Role != models.UserRoleBoth {
			continue
		}
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeUserRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, user := range f.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

// fakeRideRepo mirrors the conditional-write behavior of the mongo ride
// repository: every guarded update checks its precondition and reports
// ErrNotModified on a miss.
type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (f *fakeRideRepo) Create(_ context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride.ID = primitive.NewObjectID()
	ride.Status = models.RideStatusPending
	now := time.Now()
	ride.Timestamps.Requested = now
	ride.CreatedAt = now
	ride.UpdatedAt = now
	clone := *ride
	f.rides[ride.ID] = &clone
	return nil
}

func (f *fakeRideRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) Join(_ context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok || ride.Status != models.RideStatusPending || ride.Rider != nil {
		return nil, interfaces.ErrNotModified
	}
	now := time.Now()
	ride.Rider = &riderID
	ride.Status = models.RideStatusAccepted
	ride.Timestamps.Accepted = &now
	ride.UpdatedAt = now
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.RideStatus, cancelledBy *primitive.ObjectID, reason string) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok || ride.Status != from {
		return nil, interfaces.ErrNotModified
	}
	now := time.Now()
	ride.Status = to
	ride.UpdatedAt = now
	switch to {
	case models.RideStatusAccepted:
		ride.Timestamps.Accepted = &now
	case models.RideStatusInProgress:
		ride.Timestamps.Started = &now
	case models.RideStatusCompleted:
		ride.Timestamps.Completed = &now
	case models.RideStatusCancelled:
		ride.Timestamps.Cancelled = &now
		ride.Cancellation = models.RideCancellation{CancelledBy: cancelledBy, Reason: reason, Timestamp: &now}
	}
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) ClaimParticipantCredit(_ context.Context, id primitive.ObjectID, side interfaces.RideParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok || ride.Status != models.RideStatusCompleted {
		return interfaces.ErrNotModified
	}
	if side == interfaces.ParticipantDriver {
		if ride.Tokens.DriverCredited {
			return interfaces.ErrNotModified
		}
		ride.Tokens.DriverCredited = true
		return nil
	}
	if ride.Tokens.RiderCredited {
		return interfaces.ErrNotModified
	}
	ride.Tokens.RiderCredited = true
	return nil
}

func (f *fakeRideRepo) ReleaseParticipantCredit(_ context.Context, id primitive.ObjectID, side interfaces.RideParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok {
		return interfaces.ErrNotModified
	}
	if side == interfaces.ParticipantDriver {
		ride.Tokens.DriverCredited = false
	} else {
		ride.Tokens.RiderCredited = false
	}
	return nil
}

func (f *fakeRideRepo) MarkDistributed(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok || ride.Tokens.Distributed || !ride.Tokens.DriverCredited {
		return interfaces.ErrNotModified
	}
	if ride.Rider != nil && !ride.Tokens.RiderCredited {
		return interfaces.ErrNotModified
	}
	ride.Tokens.Distributed = true
	return nil
}

func (f *fakeRideRepo) SetRating(_ context.Context, id primitive.ObjectID, side interfaces.RideParticipant, rating int, feedback string) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok || ride.Status != models.RideStatusCompleted {
		return nil, interfaces.ErrNotModified
	}
	if side == interfaces.ParticipantDriver {
		if ride.Rating.DriverRating != nil {
			return nil, interfaces.ErrNotModified
		}
		ride.Rating.DriverRating = &rating
		ride.Rating.DriverFeedback = feedback
	} else {
		if ride.Rating.RiderRating != nil {
			return nil, interfaces.ErrNotModified
		}
		ride.Rating.RiderRating = &rating
		ride.Rating.RiderFeedback = feedback
	}
	clone := *ride
	return &clone, nil
}

func (f *fakeRideRepo) GetNearbyPending(_ context.Context, _, _, _ float64) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, ride := range f.rides {
		if ride.Status == models.RideStatusPending {
			clone := *ride
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRideRepo) GetHistory(_ context.Context, userID primitive.ObjectID, status models.RideStatus, _ *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, ride := range f.rides {
		if !ride.IsParticipant(userID) {
			continue
		}
		if status != "" && ride.Status != status {
			continue
		}
		clone := *ride
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRideRepo) GetDistributed(_ context.Context, userID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Ride, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, ride := range f.rides {
		if ride.IsParticipant(userID) && ride.Tokens.Distributed {
			clone := *ride
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

// fakeRedemptionRepo stores receipts in memory.
type fakeRedemptionRepo struct {
	mu          sync.Mutex
	redemptions []*models.Redemption

	createErr error
}

func newFakeRedemptionRepo() *fakeRedemptionRepo {
	return &fakeRedemptionRepo{}
}

func (f *fakeRedemptionRepo) Create(_ context.Context, redemption *models.Redemption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	redemption.ID = primitive.NewObjectID()
	f.redemptions = append(f.redemptions, redemption)
	return nil
}

func (f *fakeRedemptionRepo) GetByUser(_ context.Context, userID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Redemption, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Redemption
	for _, redemption := range f.redemptions {
		if redemption.UserID == userID {
			out = append(out, redemption)
		}
	}
	return out, int64(len(out)), nil
}
