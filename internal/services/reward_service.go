package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"tokenride/internal/models"
	"tokenride/internal/observability"
	"tokenride/internal/repositories/interfaces"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// rewardCatalog is the static reward inventory. Each entry burns tokens from
// exactly one category. Partner API integration would replace this with a
// database-backed catalog.
var rewardCatalog = []*models.Reward{
	{
		ID:            "starbucks-coffee",
		Title:         "Starbucks Coffee",
		Description:   "Grande size any drink",
		Category:      models.TokenCategoryFood,
		Cost:          50,
		OriginalPrice: "₹395",
		Brand:         "Starbucks",
		Available:     true,
		Featured:      true,
		Terms: []string{
			"Valid at all Starbucks outlets in India",
			"Cannot be combined with other offers",
			"Valid for 30 days from redemption",
		},
	},
	{
		ID:          "nike-discount",
		Title:       "Nike Sneakers",
		Description: "25% off any sneaker",
		Category:    models.TokenCategoryClothing,
		Cost:        150,
		Discount:    "25% OFF",
		Brand:       "Nike",
		Available:   true,
		Featured:    true,
		Terms: []string{
			"Valid at Nike stores and online",
			"Minimum purchase of ₹2000",
			"Valid for 60 days from redemption",
		},
	},
	{
		ID:            "airbnb-credit",
		Title:         "Airbnb Credit",
		Description:   "₹2000 travel credit",
		Category:      models.TokenCategoryTravel,
		Cost:          200,
		OriginalPrice: "₹2000",
		Brand:         "Airbnb",
		Available:     true,
		Featured:      true,
		Terms: []string{
			"Valid for bookings in India",
			"Minimum booking value ₹5000",
			"Valid for 90 days from redemption",
		},
	},
	{
		ID:            "zomato-voucher",
		Title:         "Zomato Voucher",
		Description:   "₹300 food credit",
		Category:      models.TokenCategoryFood,
		Cost:          30,
		OriginalPrice: "₹300",
		Brand:         "Zomato",
		Available:     true,
		Terms: []string{
			"Valid on Zomato app and website",
			"Minimum order value ₹500",
			"Valid for 45 days from redemption",
		},
	},
	{
		ID:            "uber-rides",
		Title:         "Uber Rides",
		Description:   "₹500 ride credit",
		Category:      models.TokenCategoryTravel,
		Cost:          75,
		OriginalPrice: "₹500",
		Brand:         "Uber",
		Available:     true,
		Terms: []string{
			"Valid in all Indian cities",
			"Cannot be used for partner food delivery",
			"Valid for 30 days from redemption",
		},
	},
	{
		ID:          "cinema-ticket",
		Title:       "Cinema Ticket",
		Description: "One standard admission at partner cinemas",
		Category:    models.TokenCategoryCoupons,
		Cost:        40,
		Brand:       "PVR",
		Available:   true,
		Terms: []string{
			"Valid Monday through Thursday",
			"Valid for 30 days from redemption",
		},
	},
}

// CategorySummary pairs a wallet balance with the rewards redeemable
// against it.
type CategorySummary struct {
	Category         models.TokenCategory `json:"category"`
	Balance          int                  `json:"balance"`
	AvailableRewards int                  `json:"available_rewards"`
}

type RewardService struct {
	users       interfaces.UserRepository
	redemptions interfaces.RedemptionRepository
	log         *logger.Logger
}

func NewRewardService(users interfaces.UserRepository, redemptions interfaces.RedemptionRepository, log *logger.Logger) *RewardService {
	return &RewardService{
		users:       users,
		redemptions: redemptions,
		log:         log,
	}
}

// Catalog lists rewards filtered by category and featured flag, cheapest
// first.
func (s *RewardService) Catalog(category models.TokenCategory, featuredOnly bool) ([]*models.Reward, error) {
	if category != "" && !category.Valid() {
		return nil, models.ErrInvalidCategory
	}

	rewards := make([]*models.Reward, 0, len(rewardCatalog))
	for _, reward := range rewardCatalog {
		if category != "" && reward.Category != category {
			continue
		}
		if featuredOnly && !reward.Featured {
			continue
		}
		rewards = append(rewards, reward)
	}

	sort.Slice(rewards, func(i, j int) bool { return rewards[i].Cost < rewards[j].Cost })

	return rewards, nil
}

func (s *RewardService) GetReward(id string) (*models.Reward, error) {
	for _, reward := range rewardCatalog {
		if reward.ID == id {
			return reward, nil
		}
	}
	return nil, ErrRewardNotFound
}

// Redeem burns tokens for a reward and issues a voucher. The debit checks
// and decrements the category balance in a single conditional write, so an
// insufficient balance surfaces the exact shortfall and leaves the wallet
// untouched.
func (s *RewardService) Redeem(ctx context.Context, userID primitive.ObjectID, rewardID string) (*models.Redemption, *models.TokenWallet, error) {
	reward, err := s.GetReward(rewardID)
	if err != nil {
		return nil, nil, err
	}
	if !reward.Available {
		return nil, nil, ErrRewardUnavailable
	}

	if err := s.users.DebitTokens(ctx, userID, reward.Category, reward.Cost); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	now := time.Now()
	redemption := &models.Redemption{
		UserID:      userID,
		RewardID:    reward.ID,
		Category:    reward.Category,
		Cost:        reward.Cost,
		VoucherCode: utils.GenerateVoucherCode(utils.VoucherCodeLength),
		Status:      models.RedemptionStatusActive,
		RedeemedAt:  now,
		ExpiresAt:   now.Add(utils.RedemptionValidFor),
	}

	if err := s.redemptions.Create(ctx, redemption); err != nil {
		// The debit landed but the receipt did not; refund to keep the
		// wallet consistent.
		if creditErr := s.users.CreditTokens(ctx, userID, reward.Category, reward.Cost); creditErr != nil {
			s.log.WithError(creditErr).WithUserID(userID).Error("Failed to refund after redemption write failure")
		}
		return nil, nil, err
	}

	observability.TokensRedeemed.WithLabelValues(string(reward.Category)).Add(float64(reward.Cost))
	s.log.LogTokenEvent(userID, "redemption", string(reward.Category), -reward.Cost)

	wallet, err := s.users.GetWallet(ctx, userID)
	if err != nil {
		wallet = nil
	}

	return redemption, wallet, nil
}

// Redemptions lists the caller's redemption receipts, newest first.
func (s *RewardService) Redemptions(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Redemption, int64, error) {
	return s.redemptions.GetByUser(ctx, userID, params)
}

// CategorySummaries reports, for each token category, the caller's balance
// and how many rewards it could be spent on.
func (s *RewardService) CategorySummaries(ctx context.Context, userID primitive.ObjectID) ([]CategorySummary, error) {
	wallet, err := s.users.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	summaries := make([]CategorySummary, 0, len(models.TokenCategories()))
	for _, category := range models.TokenCategories() {
		available := 0
		for _, reward := range rewardCatalog {
			if reward.Category == category && reward.Available {
				available++
			}
		}
		summaries = append(summaries, CategorySummary{
			Category:         category,
			Balance:          wallet.Balance(category),
			AvailableRewards: available,
		})
	}

	return summaries, nil
}
