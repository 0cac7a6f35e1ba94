package services

import (
	"errors"
	"fmt"
)

// Ride lifecycle errors. Each join/transition precondition violation is a
// distinct error so the HTTP boundary can report it precisely.
var (
	ErrRideNotFound      = errors.New("ride not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrRewardNotFound    = errors.New("reward not found")
	ErrRideNotPending    = errors.New("ride is not available")
	ErrRideTaken         = errors.New("ride already has a rider")
	ErrOwnRide           = errors.New("cannot join your own ride")
	ErrNotParticipant    = errors.New("not a participant of this ride")
	ErrNotDriverCapable  = errors.New("a driver-capable role is required")
	ErrNotRiderCapable   = errors.New("a rider-capable role is required")
	ErrAlreadyRated      = errors.New("this side of the ride is already rated")
	ErrRideNotCompleted  = errors.New("ride is not completed")
	ErrRewardUnavailable = errors.New("reward is not available")

	ErrEmailTaken         = errors.New("email is already registered")
	ErrPhoneTaken         = errors.New("phone is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidName        = errors.New("name must be at least 2 letters")
)

// ValidationError reports a rejected input. The HTTP boundary renders it as
// a 400 rather than a server error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a rejected state-machine edge.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return "invalid ride status transition from " + e.From + " to " + e.To
}
