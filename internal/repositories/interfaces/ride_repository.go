package interfaces

import (
	"context"

	"tokenride/internal/models"
	"tokenride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideParticipant names a side of the ride for credit claims and ratings.
type RideParticipant string

const (
	ParticipantDriver RideParticipant = "driver"
	ParticipantRider  RideParticipant = "rider"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	// Join fills the rider slot with a single conditional write on
	// {status: pending, rider: null}. Returns ErrNotModified when the slot
	// is gone; the service reloads to classify the failure.
	Join(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error)

	// UpdateStatus performs the state-machine edge from -> to as a
	// conditional write, stamping the transition timestamp exactly once.
	// Cancellation details are recorded when to is cancelled.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus, cancelledBy *primitive.ObjectID, reason string) (*models.Ride, error)

	// Token distribution bookkeeping. ClaimParticipantCredit flips the
	// per-side credited flag false -> true; exactly one concurrent caller
	// wins. ReleaseParticipantCredit reverts the claim after a failed
	// ledger credit so a retry can re-attempt. MarkDistributed flips
	// tokens.distributed once both sides are credited.
	ClaimParticipantCredit(ctx context.Context, id primitive.ObjectID, side RideParticipant) error
	ReleaseParticipantCredit(ctx context.Context, id primitive.ObjectID, side RideParticipant) error
	MarkDistributed(ctx context.Context, id primitive.ObjectID) error

	// SetRating records one side's rating, guarded on status completed and
	// the side's rating still being unset.
	SetRating(ctx context.Context, id primitive.ObjectID, side RideParticipant, rating int, feedback string) (*models.Ride, error)

	// Queries
	GetNearbyPending(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Ride, error)
	GetHistory(ctx context.Context, userID primitive.ObjectID, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetDistributed(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
}
