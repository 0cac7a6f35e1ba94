package handlers

import (
	"strconv"
	"time"

	"tokenride/internal/middleware"
	"tokenride/internal/models"
	"tokenride/internal/services"
	"tokenride/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService *services.RideService
}

func NewRideHandler(rideService *services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// Latitude and longitude are pointers so a legitimate 0 is not mistaken for
// a missing field by the required binding.
type ridePointRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Address   string   `json:"address" binding:"required"`
	Landmark  string   `json:"landmark"`
}

type createRideRequest struct {
	Pickup        ridePointRequest `json:"pickup" binding:"required"`
	Destination   ridePointRequest `json:"destination" binding:"required"`
	ScheduledTime *time.Time       `json:"scheduled_time"`
	MaxPassengers int              `json:"max_passengers"`
	Notes         string           `json:"notes"`
	TokenCategory string           `json:"token_category"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type rateRideRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

func (r *ridePointRequest) toModel() models.RidePoint {
	return models.RidePoint{
		Location: models.NewGeoPoint(*r.Latitude, *r.Longitude),
		Address:  r.Address,
		Landmark: r.Landmark,
	}
}

// CreateRide opens a new pending ride offer for the authenticated driver.
func (h *RideHandler) CreateRide(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request createRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), userID, &services.CreateRideInput{
		Pickup:        request.Pickup.toModel(),
		Destination:   request.Destination.toModel(),
		ScheduledTime: request.ScheduledTime,
		MaxPassengers: request.MaxPassengers,
		Notes:         request.Notes,
		TokenCategory: models.TokenCategory(request.TokenCategory),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", gin.H{"ride": ride})
}

// NearbyRides lists pending rides around a point, nearest first.
func (h *RideHandler) NearbyRides(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid latitude")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid longitude")
		return
	}
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "0"), 64)

	rides, err := h.rideService.NearbyRides(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Nearby rides retrieved", gin.H{"rides": rides}, &utils.Meta{Count: len(rides)})
}

// GetRide returns one ride with participant summaries.
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved", gin.H{"ride": ride})
}

// JoinRide claims the rider slot on a pending ride.
func (h *RideHandler) JoinRide(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	ride, err := h.rideService.JoinRide(c.Request.Context(), rideID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride joined successfully", gin.H{"ride": ride})
}

// UpdateStatus advances the ride along its lifecycle.
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var request updateStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.UpdateStatus(c.Request.Context(), rideID, userID, models.RideStatus(request.Status), request.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride status updated", gin.H{"ride": ride})
}

// History lists the caller's rides, optionally filtered by status.
func (h *RideHandler) History(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	status := models.RideStatus(c.Query("status"))

	rides, total, err := h.rideService.History(c.Request.Context(), userID, status, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Ride history retrieved", gin.H{"rides": rides}, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// RateRide records the caller's rating for a completed ride.
func (h *RideHandler) RateRide(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var request rateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.RateRide(c.Request.Context(), rideID, userID, request.Rating, request.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride rated successfully", gin.H{"ride": ride})
}
