package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenride/internal/models"
	"tokenride/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w
}

func TestRespondErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"notes too long", &services.ValidationError{Message: "notes cannot exceed 200 characters"}, http.StatusBadRequest},
		{"rating out of bounds", &services.ValidationError{Message: "rating must be between 1 and 5"}, http.StatusBadRequest},
		{"bad history filter", &services.ValidationError{Message: `invalid ride status "driving"`}, http.StatusBadRequest},
		{"insufficient tokens", &models.InsufficientTokensError{Category: models.TokenCategoryFood, Required: 50, Available: 40}, http.StatusBadRequest},
		{"invalid transition", &services.InvalidTransitionError{From: "completed", To: "completed"}, http.StatusConflict},
		{"ride not found", services.ErrRideNotFound, http.StatusNotFound},
		{"ride taken", services.ErrRideTaken, http.StatusConflict},
		{"not participant", services.ErrNotParticipant, http.StatusForbidden},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", errors.New("mongo: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := respond(tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondErrorValidationMessageSurfaced(t *testing.T) {
	w := respond(&services.ValidationError{Message: "max passengers cannot exceed 4"})

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "max passengers cannot exceed 4", body.Error.Message)
}

func TestRespondErrorShortfallDetails(t *testing.T) {
	w := respond(&models.InsufficientTokensError{Category: models.TokenCategoryTravel, Required: 75, Available: 60})

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_TOKENS", body.Error.Code)
	assert.Equal(t, "15", body.Error.Details["shortfall"])
}
