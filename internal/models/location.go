package models

import (
	"time"
)

// GeoPoint is a GeoJSON point, coordinates stored as [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Timestamp   time.Time `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
	}
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) >= 2 {
		return p.Coordinates[1]
	}
	return 0
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) >= 1 {
		return p.Coordinates[0]
	}
	return 0
}

// RidePoint is a pickup or destination: a geo point plus a human-readable
// address. Immutable after ride creation.
type RidePoint struct {
	Location GeoPoint `json:"location" bson:"location"`
	Address  string   `json:"address" bson:"address"`
	Landmark string   `json:"landmark,omitempty" bson:"landmark,omitempty"`
}
