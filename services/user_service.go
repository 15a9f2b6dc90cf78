package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
)

type SearchUsersInput struct {
	Term  string
	Page  int
	Limit int
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int, error)
	Search(ctx context.Context, input SearchUsersInput) ([]models.User, int, error)
	UpdateProfile(ctx context.Context, userID int, firstName, lastName string) (*models.User, error)
	Delete(ctx context.Context, userID int) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) List(ctx context.Context, page, limit int) ([]models.User, int, error) {
	pageLimit, offset := normalizePage(page, limit)
	users, total, err := s.userRepo.List(ctx, repositories.ListUsersFilter{Limit: pageLimit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *userService) Search(ctx context.Context, input SearchUsersInput) ([]models.User, int, error) {
	term := strings.TrimSpace(input.Term)
	if term == "" {
		return nil, 0, ErrSearchTermRequired
	}

	limit, offset := normalizePage(input.Page, input.Limit)
	users, total, err := s.userRepo.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, firstName, lastName string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if firstName = strings.TrimSpace(firstName); firstName != "" {
		user.FirstName = firstName
	}
	if lastName = strings.TrimSpace(lastName); lastName != "" {
		user.LastName = lastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) Delete(ctx context.Context, userID int) error {
	err := s.userRepo.Delete(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
