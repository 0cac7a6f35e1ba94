package services

import (
	"context"
	"testing"

	"tokenride/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenFixture(t *testing.T) (*TokenService, *fakeUserRepo, *fakeRideRepo, *models.User) {
	t.Helper()

	users := newFakeUserRepo()
	rides := newFakeRideRepo()
	svc := NewTokenService(users, rides, testLogger())

	user := users.add(&models.User{Role: models.UserRoleBoth, Email: "wallet@example.com"})

	return svc, users, rides, user
}

func TestAddTokens(t *testing.T) {
	svc, _, _, user := newTokenFixture(t)
	ctx := context.Background()

	wallet, err := svc.AddTokens(ctx, user.ID, models.TokenCategoryTravel, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, wallet.Travel)
	assert.Equal(t, 25, wallet.Total)

	_, err = svc.AddTokens(ctx, user.ID, models.TokenCategoryTravel, 0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.AddTokens(ctx, user.ID, "fuel", 10)
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestTransferTokensBetweenCategories(t *testing.T) {
	svc, _, _, user := newTokenFixture(t)
	ctx := context.Background()

	_, err := svc.AddTokens(ctx, user.ID, models.TokenCategoryFood, 60)
	require.NoError(t, err)

	wallet, err := svc.TransferTokens(ctx, user.ID, models.TokenCategoryFood, models.TokenCategoryClothing, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, wallet.Food)
	assert.Equal(t, 20, wallet.Clothing)
	assert.Equal(t, 60, wallet.Total, "transfers never change the total")
}

func TestTransferTokensSameCategory(t *testing.T) {
	svc, _, _, user := newTokenFixture(t)
	ctx := context.Background()

	_, err := svc.AddTokens(ctx, user.ID, models.TokenCategoryFood, 60)
	require.NoError(t, err)

	_, err = svc.TransferTokens(ctx, user.ID, models.TokenCategoryFood, models.TokenCategoryFood, 10)
	assert.ErrorIs(t, err, models.ErrSameCategory)
}

func TestGetBalanceUnknownUser(t *testing.T) {
	svc, _, _, _ := newTokenFixture(t)

	_, err := svc.GetBalance(context.Background(), newFakeUserRepo().add(&models.User{}).ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenHistoryListsDistributedRides(t *testing.T) {
	users := newFakeUserRepo()
	rides := newFakeRideRepo()
	tokenSvc := NewTokenService(users, rides, testLogger())
	rideSvc := NewRideService(rides, users, nil, testLogger())
	ctx := context.Background()

	driver := users.add(&models.User{Role: models.UserRoleDriver, Email: "d@example.com"})
	rider := users.add(&models.User{Role: models.UserRoleRider, Email: "r@example.com"})

	created, err := rideSvc.CreateRide(ctx, driver.ID, testRideInput())
	require.NoError(t, err)

	// Nothing earned yet.
	history, total, err := tokenSvc.History(ctx, driver.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, history)

	completeRide(t, rideSvc, created.ID, driver.ID, rider.ID)

	history, total, err = tokenSvc.History(ctx, driver.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, history, 1)
	assert.True(t, history[0].Tokens.Distributed)
}
