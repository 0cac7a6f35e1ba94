package interfaces

import (
	"context"

	"tokenride/internal/models"
	"tokenride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	// Token ledger operations. All three are single-document atomic writes:
	// $inc on the category and the derived total, with the balance check
	// folded into the filter for debits.
	CreditTokens(ctx context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error
	DebitTokens(ctx context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error
	TransferTokens(ctx context.Context, id primitive.ObjectID, from, to models.TokenCategory, amount int) error
	GetWallet(ctx context.Context, id primitive.ObjectID) (*models.TokenWallet, error)

	// Ride-completion side effects: one atomic write crediting the reward
	// and bumping the completed/total ride counters together.
	CreditRideReward(ctx context.Context, id primitive.ObjectID, category models.TokenCategory, amount int) error
	RecordCancelledRide(ctx context.Context, id primitive.ObjectID) error

	// ApplyRating folds a 1-5 rating into the running average with an
	// optimistic version-checked retry.
	ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error

	// Presence operations
	UpdateLocation(ctx context.Context, id primitive.ObjectID, lat, lng float64, address string) error
	SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error
	TouchLastSeen(ctx context.Context, id primitive.ObjectID) error

	// Search
	GetNearby(ctx context.Context, lat, lng, radiusMeters float64, role models.UserRole, exclude primitive.ObjectID) ([]*models.User, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
}
