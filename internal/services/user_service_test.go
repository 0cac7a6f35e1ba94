package services

import (
	"context"
	"testing"

	"tokenride/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfilePartialFields(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, testLogger())
	ctx := context.Background()

	user := users.add(&models.User{
		Role: models.UserRoleRider,
		Profile: models.UserProfile{
			FirstName: "Asha",
			LastName:  "Verma",
		},
	})

	role := models.UserRoleBoth
	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		FirstName: strPtr("  Aisha "),
		Bio:       strPtr("Weekend carpooler"),
		Role:      &role,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aisha", updated.Profile.FirstName, "names are trimmed")
	assert.Equal(t, "Verma", updated.Profile.LastName, "unset fields stay untouched")
	assert.Equal(t, "Weekend carpooler", updated.Profile.Bio)
	assert.Equal(t, models.UserRoleBoth, updated.Role)
}

func TestUpdateProfileRejectsUnknownRole(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, testLogger())

	user := users.add(&models.User{Role: models.UserRoleRider})

	bad := models.UserRole("admin")
	_, err := svc.UpdateProfile(context.Background(), user.ID, &UpdateProfileInput{Role: &bad})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateLocationBounds(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, testLogger())
	ctx := context.Background()

	user := users.add(&models.User{Role: models.UserRoleDriver})

	require.NoError(t, svc.UpdateLocation(ctx, user.ID, 28.6, 77.2, "Connaught Place"))
	assert.Error(t, svc.UpdateLocation(ctx, user.ID, 91, 77.2, ""))
	assert.Error(t, svc.UpdateLocation(ctx, user.ID, 28.6, 181, ""))
}

func TestNearbyUsersFiltersRole(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, testLogger())
	ctx := context.Background()

	me := users.add(&models.User{Role: models.UserRoleRider})
	users.add(&models.User{Role: models.UserRoleDriver})
	users.add(&models.User{Role: models.UserRoleBoth})
	users.add(&models.User{Role: models.UserRoleRider})

	drivers, err := svc.NearbyUsers(ctx, 28.6, 77.2, 0, models.UserRoleDriver, me.ID)
	require.NoError(t, err)
	assert.Len(t, drivers, 2, "role both counts as a driver")

	_, err = svc.NearbyUsers(ctx, 28.6, 77.2, 0, models.UserRole("admin"), me.ID)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestDeactivateSoftDeletes(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, testLogger())
	ctx := context.Background()

	user := users.add(&models.User{Role: models.UserRoleRider})

	require.NoError(t, svc.Deactivate(ctx, user.ID))

	fetched, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)

	other := users.add(&models.User{Role: models.UserRoleRider})
	visible, err := svc.NearbyUsers(ctx, 28.6, 77.2, 0, "", other.ID)
	require.NoError(t, err)
	assert.Empty(t, visible, "deactivated accounts drop out of discovery")
}
