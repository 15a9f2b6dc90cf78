package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknet/contest-system/models"
)

func seedUsers(t *testing.T, repo *fakeUserRepo, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, repo.Create(context.Background(), &models.User{
			FirstName:    name,
			LastName:     "Tester",
			Email:        name + "@example.com",
			PasswordHash: "x",
		}))
	}
}

func TestUserServiceList(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewUserService(userRepo)
	seedUsers(t, userRepo, "alice", "bob", "carol")

	users, total, err := service.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 2)
	assert.Empty(t, users[0].PasswordHash, "hashes are stripped from listings")

	users, _, err = service.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].FirstName)
}

func TestUserServiceSearch(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewUserService(userRepo)
	seedUsers(t, userRepo, "alice", "alicia", "bob")

	users, total, err := service.Search(context.Background(), SearchUsersInput{Term: "alic"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)

	_, _, err = service.Search(context.Background(), SearchUsersInput{Term: "   "})
	assert.ErrorIs(t, err, ErrSearchTermRequired)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewUserService(userRepo)
	seedUsers(t, userRepo, "alice")

	updated, err := service.UpdateProfile(context.Background(), 1, "  Alicia ", "")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Tester", updated.LastName, "blank fields keep their current value")

	_, err = service.UpdateProfile(context.Background(), 99, "X", "Y")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceDelete(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewUserService(userRepo)
	seedUsers(t, userRepo, "alice")

	require.NoError(t, service.Delete(context.Background(), 1))
	assert.ErrorIs(t, service.Delete(context.Background(), 1), ErrUserNotFound)
}
