package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusPending    RideStatus = "pending"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in-progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusPending, RideStatusAccepted, RideStatusInProgress, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// CanTransitionTo enforces strict forward edges. Re-entrant and backward
// transitions are rejected; cancelled is reachable from any non-terminal
// state.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	if next == RideStatusCancelled {
		return !s.Terminal()
	}

	switch s {
	case RideStatusPending:
		return next == RideStatusAccepted
	case RideStatusAccepted:
		return next == RideStatusInProgress
	case RideStatusInProgress:
		return next == RideStatusCompleted
	}
	return false
}

// RideRoute is the straight-line approximation computed at creation time.
type RideRoute struct {
	Distance float64 `json:"distance" bson:"distance"` // kilometers
	Duration int     `json:"duration" bson:"duration"` // minutes
}

// TokenReward describes the one-time payout for completing a ride. The
// per-participant credited flags make retries precise: each side is claimed
// and credited independently, and Distributed flips once both are done.
type TokenReward struct {
	Amount        int           `json:"amount" bson:"amount"`
	Category      TokenCategory `json:"category" bson:"category"`
	Distributed   bool          `json:"distributed" bson:"distributed"`
	DriverCredited bool         `json:"-" bson:"driver_credited"`
	RiderCredited  bool         `json:"-" bson:"rider_credited"`
}

// RideTimestamps records one timestamp per transition, each set exactly once.
type RideTimestamps struct {
	Requested time.Time  `json:"requested" bson:"requested"`
	Accepted  *time.Time `json:"accepted,omitempty" bson:"accepted,omitempty"`
	Started   *time.Time `json:"started,omitempty" bson:"started,omitempty"`
	Completed *time.Time `json:"completed,omitempty" bson:"completed,omitempty"`
	Cancelled *time.Time `json:"cancelled,omitempty" bson:"cancelled,omitempty"`
}

// RideRating holds at most one rating per side, each settable exactly once.
type RideRating struct {
	DriverRating   *int   `json:"driver_rating,omitempty" bson:"driver_rating,omitempty"`
	RiderRating    *int   `json:"rider_rating,omitempty" bson:"rider_rating,omitempty"`
	DriverFeedback string `json:"driver_feedback,omitempty" bson:"driver_feedback,omitempty"`
	RiderFeedback  string `json:"rider_feedback,omitempty" bson:"rider_feedback,omitempty"`
}

type RideCancellation struct {
	CancelledBy *primitive.ObjectID `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	Reason      string              `json:"reason,omitempty" bson:"reason,omitempty"`
	Timestamp   *time.Time          `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

type EmergencyContact struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type Ride struct {
	ID     primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Driver primitive.ObjectID  `json:"driver" bson:"driver"`
	Rider  *primitive.ObjectID `json:"rider,omitempty" bson:"rider,omitempty"`

	Status RideStatus `json:"status" bson:"status"`

	Pickup      RidePoint `json:"pickup" bson:"pickup"`
	Destination RidePoint `json:"destination" bson:"destination"`
	Route       RideRoute `json:"route" bson:"route"`

	Tokens TokenReward `json:"tokens" bson:"tokens"`

	ScheduledTime time.Time      `json:"scheduled_time" bson:"scheduled_time"`
	Timestamps    RideTimestamps `json:"timestamps" bson:"timestamps"`

	Rating       RideRating       `json:"rating" bson:"rating"`
	Cancellation RideCancellation `json:"cancellation" bson:"cancellation"`

	Notes            string           `json:"notes,omitempty" bson:"notes,omitempty"`
	MaxPassengers    int              `json:"max_passengers" bson:"max_passengers"`
	EmergencyContact EmergencyContact `json:"emergency_contact,omitempty" bson:"emergency_contact,omitempty"`

	// Participant summaries joined in at read time, never persisted.
	DriverProfile *PublicProfile `json:"driver_profile,omitempty" bson:"-"`
	RiderProfile  *PublicProfile `json:"rider_profile,omitempty" bson:"-"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (r *Ride) IsDriver(userID primitive.ObjectID) bool {
	return r.Driver == userID
}

func (r *Ride) IsRider(userID primitive.ObjectID) bool {
	return r.Rider != nil && *r.Rider == userID
}

func (r *Ride) IsParticipant(userID primitive.ObjectID) bool {
	return r.IsDriver(userID) || r.IsRider(userID)
}

// EstimateDuration assumes a 40 km/h average speed.
func EstimateDuration(distanceKM float64) int {
	return int(math.Ceil(distanceKM / 40 * 60))
}

// CalculateTokens prices a ride at 3 tokens per km plus 2 tokens per 15
// minutes, with a floor of 10.
func CalculateTokens(distanceKM float64, durationMinutes int) int {
	const baseTokens = 10

	tokens := int(math.Ceil(distanceKM*3 + float64(durationMinutes)/15*2))
	if tokens < baseTokens {
		return baseTokens
	}
	return tokens
}
