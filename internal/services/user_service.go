package services

import (
	"context"
	"errors"
	"strings"

	"tokenride/internal/models"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
	Bio       *string
	Role      *models.UserRole
}

type UserService struct {
	users interfaces.UserRepository
	log   *logger.Logger
}

func NewUserService(users interfaces.UserRepository, log *logger.Logger) *UserService {
	return &UserService{
		users: users,
		log:   log,
	}
}

func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the provided fields; nil pointers leave the current
// value untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input *UpdateProfileInput) (*models.User, error) {
	updates := make(map[string]interface{})

	if input.FirstName != nil {
		updates["profile.first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["profile.last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		updates["profile.avatar"] = *input.Avatar
	}
	if input.Bio != nil {
		updates["profile.bio"] = *input.Bio
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		updates["role"] = *input.Role
	}

	if len(updates) > 0 {
		if err := s.users.Update(ctx, id, updates); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	return s.GetProfile(ctx, id)
}

func (s *UserService) UpdateLocation(ctx context.Context, id primitive.ObjectID, lat, lng float64, address string) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return validationErrorf("coordinates are out of range")
	}
	return s.users.UpdateLocation(ctx, id, lat, lng, address)
}

func (s *UserService) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	return s.users.SetAvailability(ctx, id, available)
}

// NearbyUsers finds active users of the given role around a point. A role
// of "driver" also matches "both".
func (s *UserService) NearbyUsers(ctx context.Context, lat, lng, radiusMeters float64, role models.UserRole, exclude primitive.ObjectID) ([]*models.User, error) {
	if radiusMeters <= 0 {
		radiusMeters = utils.DefaultSearchRadiusM
	}
	if radiusMeters > utils.MaxSearchRadiusM {
		radiusMeters = utils.MaxSearchRadiusM
	}
	if role != "" && !role.Valid() {
		return nil, ErrInvalidRole
	}

	return s.users.GetNearby(ctx, lat, lng, radiusMeters, role, exclude)
}

func (s *UserService) GetStats(ctx context.Context, id primitive.ObjectID) (*models.UserStats, error) {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user.Stats, nil
}

// Deactivate soft-deletes the account. Historical rides keep referencing it.
func (s *UserService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.WithUserID(id).Info("User deactivated")

	return nil
}
