package utils

import "time"

// Application Constants
const (
	AppName    = "TokenRide"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 6
	BcryptCost         = 12

	// Ride Constants
	DefaultSearchRadiusM = 2000.0 // meters
	MaxSearchRadiusM     = 50000.0
	AverageSpeedKMH      = 40.0
	MaxPassengers        = 4
	MaxNotesLength       = 200
	MaxFeedbackLength    = 500

	// Rating
	MinRating = 1
	MaxRating = 5

	// Rewards
	VoucherCodeLength    = 12
	RedemptionValidFor   = 30 * 24 * time.Hour
)

// Response Status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Common error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Authentication required"
	ErrForbidden        = "Access denied"
)
