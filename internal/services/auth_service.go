package services

import (
	"context"
	"errors"
	"strings"

	"tokenride/internal/models"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
	Role      models.UserRole
}

type AuthService struct {
	users     interfaces.UserRepository
	jwtSecret string
	log       *logger.Logger
}

func NewAuthService(users interfaces.UserRepository, jwtSecret string, log *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// Register creates an account with an empty wallet and returns a signed
// token pair.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, *utils.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(email) {
		return nil, nil, ErrInvalidEmail
	}
	if !utils.IsValidPhone(input.Phone) {
		return nil, nil, ErrInvalidPhone
	}

	if len(input.Password) < utils.PasswordMinLength {
		return nil, nil, ErrPasswordTooShort
	}

	if !utils.IsValidName(input.FirstName) {
		return nil, nil, ErrInvalidName
	}
	if input.LastName != "" && !utils.IsValidName(input.LastName) {
		return nil, nil, ErrInvalidName
	}

	role := input.Role
	if role == "" {
		role = models.UserRoleRider
	}
	if !role.Valid() {
		return nil, nil, ErrInvalidRole
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil, err
	}
	if _, err := s.users.GetByPhone(ctx, input.Phone); err == nil {
		return nil, nil, ErrPhoneTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), utils.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:    email,
		Phone:    strings.TrimSpace(input.Phone),
		Password: string(hash),
		Role:     role,
		Profile: models.UserProfile{
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
		},
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			// Unique index caught a race between the pre-checks and the
			// insert.
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	pair, err := utils.GenerateTokenPair(user.ID, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}

	s.log.WithUserID(user.ID).WithField("role", string(user.Role)).Info("User registered")

	return user, pair, nil
}

// Login verifies credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *utils.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := utils.GenerateTokenPair(user.ID, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}

	s.log.WithUserID(user.ID).Info("User logged in")

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// reloaded so a deactivated account cannot renew.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := claims.UserObjectID()
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return utils.GenerateTokenPair(user.ID, string(user.Role), s.jwtSecret)
}
