package services

import (
	"context"
	"testing"

	"tokenride/internal/models"
	"tokenride/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	return NewAuthService(users, "test-secret", testLogger()), users
}

func validRegisterInput() *RegisterInput {
	return &RegisterInput{
		Email:     "new.user@example.com",
		Phone:     "+919876543210",
		Password:  "hunter22",
		FirstName: "Asha",
		LastName:  "Verma",
		Role:      models.UserRoleBoth,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", user.Email)
	assert.Equal(t, models.UserRoleBoth, user.Role)
	assert.NotEqual(t, "hunter22", user.Password, "password must be stored hashed")
	assert.Zero(t, user.Tokens.Total, "new accounts start with an empty wallet")
	require.NotNil(t, pair)

	claims, err := utils.ValidateToken(pair.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "both", claims.Role)

	loggedIn, loginPair, err := svc.Login(ctx, "new.user@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginPair.AccessToken)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	input := validRegisterInput()
	input.Email = "not-an-email"
	_, _, err := svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	input = validRegisterInput()
	input.Phone = "12"
	_, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidPhone)

	input = validRegisterInput()
	input.Password = "abc"
	_, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	input = validRegisterInput()
	input.Role = "admin"
	_, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidRole)

	input = validRegisterInput()
	input.FirstName = "A"
	_, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidName)

	input = validRegisterInput()
	input.LastName = "Verma42"
	_, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidName)

	input = validRegisterInput()
	input.LastName = "O'Neil-Jones"
	_, _, err = svc.Register(ctx, input)
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	dup := validRegisterInput()
	dup.Phone = "+919876500000"
	_, _, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailures(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "new.user@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.Deactivate(ctx, user.ID))
	_, _, err = svc.Login(ctx, "new.user@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefresh(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	_, err = svc.Refresh(ctx, "garbage-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.Deactivate(ctx, user.ID))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrAccountInactive)
}
