package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindCreateRide(t *testing.T, body string) (*createRideRequest, error) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/rides/create", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var request createRideRequest
	err := c.ShouldBindJSON(&request)
	return &request, err
}

func TestCreateRideBindingAcceptsZeroCoordinates(t *testing.T) {
	request, err := bindCreateRide(t, `{
		"pickup":      {"latitude": 0, "longitude": 0, "address": "Null Island"},
		"destination": {"latitude": 6.45, "longitude": 3.39, "address": "Lagos Marina"}
	}`)
	require.NoError(t, err, "0,0 is a valid coordinate pair, not a missing one")

	point := request.Pickup.toModel()
	assert.Equal(t, 0.0, point.Location.Latitude())
	assert.Equal(t, 0.0, point.Location.Longitude())
}

func TestCreateRideBindingRejectsMissingCoordinates(t *testing.T) {
	_, err := bindCreateRide(t, `{
		"pickup":      {"latitude": 28.6, "address": "Connaught Place"},
		"destination": {"latitude": 28.7, "longitude": 77.25, "address": "Model Town"}
	}`)
	assert.Error(t, err)
}

func TestCreateRideBindingRejectsOutOfRangeCoordinates(t *testing.T) {
	_, err := bindCreateRide(t, `{
		"pickup":      {"latitude": 91, "longitude": 77.2, "address": "Nowhere"},
		"destination": {"latitude": 28.7, "longitude": 77.25, "address": "Model Town"}
	}`)
	assert.Error(t, err)
}
