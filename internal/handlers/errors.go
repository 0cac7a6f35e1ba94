package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tokenride/internal/models"
	"tokenride/internal/services"
	"tokenride/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service-layer errors to HTTP responses. Unknown errors
// collapse to a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var insufficient *models.InsufficientTokensError
	if errors.As(err, &insufficient) {
		utils.ErrorResponseWithDetails(c, http.StatusBadRequest, "INSUFFICIENT_TOKENS", "Insufficient tokens", map[string]string{
			"category":  string(insufficient.Category),
			"required":  strconv.Itoa(insufficient.Required),
			"available": strconv.Itoa(insufficient.Available),
			"shortfall": strconv.Itoa(insufficient.Shortfall()),
		})
		return
	}

	var invalid *services.ValidationError
	if errors.As(err, &invalid) {
		utils.BadRequestResponse(c, invalid.Message)
		return
	}

	var transition *services.InvalidTransitionError
	if errors.As(err, &transition) {
		utils.ConflictResponse(c, transition.Error())
		return
	}

	switch {
	case errors.Is(err, services.ErrRideNotFound):
		utils.NotFoundResponse(c, "Ride")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "User")
	case errors.Is(err, services.ErrRewardNotFound):
		utils.NotFoundResponse(c, "Reward")

	case errors.Is(err, services.ErrRideTaken),
		errors.Is(err, services.ErrRideNotPending),
		errors.Is(err, services.ErrAlreadyRated),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrPhoneTaken):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrOwnRide),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotDriverCapable),
		errors.Is(err, services.ErrNotRiderCapable),
		errors.Is(err, services.ErrAccountInactive):
		utils.ForbiddenResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())

	case errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrSameCategory),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, services.ErrRideNotCompleted),
		errors.Is(err, services.ErrRewardUnavailable),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidPhone),
		errors.Is(err, services.ErrInvalidName):
		utils.BadRequestResponse(c, err.Error())

	default:
		utils.InternalServerErrorResponse(c)
	}
}
