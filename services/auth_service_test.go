package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceRegister(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewAuthService(userRepo)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{
		FirstName: "  Ada ",
		LastName:  "Lovelace",
		Email:     " Ada@Example.COM ",
		Password:  "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "ada@example.com", user.Email, "email is normalized")
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)

	_, err = service.Register(ctx, RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "ada@example.com",
		Password:  "another pass",
	})
	assert.ErrorIs(t, err, ErrUserEmailConflict)

	_, err = service.Register(ctx, RegisterInput{
		FirstName: "Short",
		LastName:  "Pass",
		Email:     "short@example.com",
		Password:  "1234567",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthServiceLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewAuthService(userRepo)
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	})
	require.NoError(t, err)

	user, err := service.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = service.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials, "unknown email reads the same as a bad password")
}
