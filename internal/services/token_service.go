package services

import (
	"context"
	"errors"

	"tokenride/internal/models"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TokenService struct {
	users interfaces.UserRepository
	rides interfaces.RideRepository
	log   *logger.Logger
}

func NewTokenService(users interfaces.UserRepository, rides interfaces.RideRepository, log *logger.Logger) *TokenService {
	return &TokenService{
		users: users,
		rides: rides,
		log:   log,
	}
}

func (s *TokenService) GetBalance(ctx context.Context, userID primitive.ObjectID) (*models.TokenWallet, error) {
	wallet, err := s.users.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return wallet, nil
}

// AddTokens credits a category directly; the wallet total is bumped in the
// same write.
func (s *TokenService) AddTokens(ctx context.Context, userID primitive.ObjectID, category models.TokenCategory, amount int) (*models.TokenWallet, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !category.Valid() {
		return nil, models.ErrInvalidCategory
	}

	if err := s.users.CreditTokens(ctx, userID, category, amount); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.log.LogTokenEvent(userID, "credit", string(category), amount)

	return s.users.GetWallet(ctx, userID)
}

// TransferTokens moves an amount between two categories of the same wallet.
// The source balance is checked and debited in a single conditional write,
// so the wallet can never go negative and the total never changes.
func (s *TokenService) TransferTokens(ctx context.Context, userID primitive.ObjectID, from, to models.TokenCategory, amount int) (*models.TokenWallet, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !from.Valid() || !to.Valid() {
		return nil, models.ErrInvalidCategory
	}
	if from == to {
		return nil, models.ErrSameCategory
	}

	if err := s.users.TransferTokens(ctx, userID, from, to, amount); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.log.WithUserID(userID).WithFields(map[string]interface{}{
		"from":   string(from),
		"to":     string(to),
		"amount": amount,
	}).Info("Tokens transferred")

	return s.users.GetWallet(ctx, userID)
}

// History returns the caller's completed rides with a distributed payout,
// newest first. Each entry is one earning event in the ledger.
func (s *TokenService) History(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.rides.GetDistributed(ctx, userID, params)
}
