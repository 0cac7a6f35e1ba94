package handlers

import (
	"strconv"

	"tokenride/internal/middleware"
	"tokenride/internal/models"
	"tokenride/internal/services"
	"tokenride/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Address   string  `json:"address"`
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// GetProfile returns the caller's own profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", gin.H{"user": user})
}

// GetUser returns another user's public profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved", gin.H{
		"user":  user.PublicProfile(),
		"stats": user.Stats,
	})
}

// UpdateProfile applies partial profile changes.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request updateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	input := &services.UpdateProfileInput{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Avatar:    request.Avatar,
		Bio:       request.Bio,
	}
	if request.Role != nil {
		role := models.UserRole(*request.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", gin.H{"user": user})
}

// UpdateLocation stores the caller's current position.
func (h *UserHandler) UpdateLocation(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request updateLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.userService.UpdateLocation(c.Request.Context(), userID, request.Latitude, request.Longitude, request.Address); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", nil)
}

// SetAvailability toggles the caller's availability flag.
func (h *UserHandler) SetAvailability(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request availabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.userService.SetAvailability(c.Request.Context(), userID, *request.Available); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability updated", gin.H{"available": *request.Available})
}

// NearbyUsers finds active users around a point.
func (h *UserHandler) NearbyUsers(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

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
	role := models.UserRole(c.Query("role"))

	users, err := h.userService.NearbyUsers(c.Request.Context(), lat, lng, radius, role, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles := make([]*models.PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.PublicProfile())
	}

	utils.SuccessResponseWithMeta(c, "Nearby users retrieved", gin.H{"users": profiles}, &utils.Meta{Count: len(profiles)})
}

// GetStats returns the caller's ride counters and rating average.
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved", gin.H{"stats": stats})
}

// Deactivate soft-deletes the caller's account.
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Account deactivated", nil)
}
