package services

import (
	"context"
	"errors"
	"time"

	"tokenride/internal/repositories/interfaces"
	"tokenride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const presenceWriteTimeout = 5 * time.Second

// PresenceService persists best-effort presence signals arriving over the
// relay. It never touches ride or token state.
type PresenceService struct {
	users interfaces.UserRepository
	log   *logger.Logger
}

func NewPresenceService(users interfaces.UserRepository, log *logger.Logger) *PresenceService {
	return &PresenceService{
		users: users,
		log:   log,
	}
}

func (s *PresenceService) UpdateLocation(userID string, lat, lng float64, address string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errors.New("coordinates are out of range")
	}

	ctx, cancel := context.WithTimeout(context.Background(), presenceWriteTimeout)
	defer cancel()

	return s.users.UpdateLocation(ctx, id, lat, lng, address)
}

func (s *PresenceService) SetAvailability(userID string, available bool) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), presenceWriteTimeout)
	defer cancel()

	return s.users.SetAvailability(ctx, id, available)
}

func (s *PresenceService) TouchLastSeen(userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), presenceWriteTimeout)
	defer cancel()

	return s.users.TouchLastSeen(ctx, id)
}
