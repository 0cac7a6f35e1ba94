package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleRider  UserRole = "rider"
	UserRoleDriver UserRole = "driver"
	UserRoleBoth   UserRole = "both"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleRider, UserRoleDriver, UserRoleBoth:
		return true
	}
	return false
}

// CanDrive reports whether the role permits offering rides.
func (r UserRole) CanDrive() bool {
	return r == UserRoleDriver || r == UserRoleBoth
}

// CanRide reports whether the role permits joining rides.
func (r UserRole) CanRide() bool {
	return r == UserRoleRider || r == UserRoleBoth
}

type UserProfile struct {
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Avatar    string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty" bson:"bio,omitempty"`
}

// UserStats holds trailing aggregate counters. Rating is a running average
// updated incrementally together with RatingCount.
type UserStats struct {
	TotalRides     int     `json:"total_rides" bson:"total_rides"`
	CompletedRides int     `json:"completed_rides" bson:"completed_rides"`
	CancelledRides int     `json:"cancelled_rides" bson:"cancelled_rides"`
	Rating         float64 `json:"rating" bson:"rating"`
	RatingCount    int     `json:"rating_count" bson:"rating_count"`
}

// ApplyRating folds a new 1-5 rating into the running average.
func (s *UserStats) ApplyRating(rating int) {
	total := s.Rating*float64(s.RatingCount) + float64(rating)
	s.RatingCount++
	s.Rating = total / float64(s.RatingCount)
}

type UserLocation struct {
	Current GeoPoint `json:"current" bson:"current"`
	Address string   `json:"address,omitempty" bson:"address,omitempty"`
}

type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email    string             `json:"email" bson:"email"`
	Phone    string             `json:"phone" bson:"phone"`
	Password string             `json:"-" bson:"password"`
	Profile  UserProfile        `json:"profile" bson:"profile"`
	Role     UserRole           `json:"role" bson:"role"`
	Tokens   TokenWallet        `json:"tokens" bson:"tokens"`
	Stats    UserStats          `json:"stats" bson:"stats"`
	Location UserLocation       `json:"location" bson:"location"`

	Available bool `json:"available" bson:"available"`
	IsActive  bool `json:"is_active" bson:"is_active"`

	// Version guards read-modify-write updates (rating average) with an
	// optimistic concurrency check.
	Version int64 `json:"-" bson:"version"`

	LastSeenAt *time.Time `json:"last_seen_at,omitempty" bson:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// PublicProfile is the participant summary attached to rides.
type PublicProfile struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Avatar    string             `json:"avatar,omitempty"`
	Rating    float64            `json:"rating"`
}

func (u *User) PublicProfile() *PublicProfile {
	return &PublicProfile{
		ID:        u.ID,
		FirstName: u.Profile.FirstName,
		LastName:  u.Profile.LastName,
		Avatar:    u.Profile.Avatar,
		Rating:    u.Stats.Rating,
	}
}
