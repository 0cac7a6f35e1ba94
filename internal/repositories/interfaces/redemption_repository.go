package interfaces

import (
	"context"

	"tokenride/internal/models"
	"tokenride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RedemptionRepository interface {
	Create(ctx context.Context, redemption *models.Redemption) error
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Redemption, int64, error)
}
