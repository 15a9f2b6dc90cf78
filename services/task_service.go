package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
)

type CreateTaskInput struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Points         int                   `json:"points"`
	Difficulty     models.TaskDifficulty `json:"difficulty"`
	RequiredAnswer *string               `json:"required_answer"`
}

type UpdateTaskInput struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Points         *int                   `json:"points"`
	Difficulty     *models.TaskDifficulty `json:"difficulty"`
	RequiredAnswer *string                `json:"required_answer"`
}

type TaskService interface {
	Create(ctx context.Context, contestID, creatorID int, input CreateTaskInput) (*models.Task, error)
	GetByID(ctx context.Context, taskID, contestID int) (*models.Task, error)
	List(ctx context.Context, filter repositories.ListTasksFilter) ([]models.Task, int, error)
	ListByContest(ctx context.Context, contestID, page, limit int) ([]models.Task, int, error)
	Update(ctx context.Context, taskID, contestID, actorID int, input UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, taskID, contestID, actorID int) error
}

type taskService struct {
	taskRepo    repositories.TaskRepository
	contestRepo repositories.ContestRepository
}

func NewTaskService(taskRepo repositories.TaskRepository, contestRepo repositories.ContestRepository) TaskService {
	return &taskService{taskRepo: taskRepo, contestRepo: contestRepo}
}

func (s *taskService) Create(ctx context.Context, contestID, creatorID int, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if input.Points < 0 {
		return nil, ErrNegativePoints
	}
	if input.Difficulty == "" {
		input.Difficulty = models.DifficultyMedium
	}
	if !input.Difficulty.Valid() {
		return nil, ErrInvalidDifficulty
	}

	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ContestID:      contestID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Points:         input.Points,
		Difficulty:     input.Difficulty,
		RequiredAnswer: input.RequiredAnswer,
		CreatedBy:      creatorID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrTaskInvalidContest) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetByID fetches a task and verifies it belongs to the stated contest; a
// task reached through the wrong contest is reported as not found.
func (s *taskService) GetByID(ctx context.Context, taskID, contestID int) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if contestID > 0 && task.ContestID != contestID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, filter repositories.ListTasksFilter) ([]models.Task, int, error) {
	if filter.ContestID != nil {
		if err := s.requireContest(ctx, *filter.ContestID); err != nil {
			return nil, 0, err
		}
	}
	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (s *taskService) ListByContest(ctx context.Context, contestID, page, limit int) ([]models.Task, int, error) {
	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, 0, err
	}
	pageLimit, offset := normalizePage(page, limit)
	tasks, total, err := s.taskRepo.List(ctx, repositories.ListTasksFilter{
		ContestID: &contestID,
		Limit:     pageLimit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contest tasks: %w", err)
	}
	return tasks, total, nil
}

func (s *taskService) Update(ctx context.Context, taskID, contestID, actorID int, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetByID(ctx, taskID, contestID)
	if err != nil {
		return nil, err
	}

	// Task mutation is creator-only; the contest creator holds no special
	// task privilege here (see DESIGN.md).
	if task.CreatedBy != actorID {
		return nil, ErrTaskCreatorOnly
	}

	if input.Difficulty != nil {
		if !input.Difficulty.Valid() {
			return nil, ErrInvalidDifficulty
		}
		task.Difficulty = *input.Difficulty
	}
	if input.Points != nil {
		if *input.Points < 0 {
			return nil, ErrNegativePoints
		}
		task.Points = *input.Points
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.RequiredAnswer != nil {
		task.RequiredAnswer = input.RequiredAnswer
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, taskID, contestID, actorID int) error {
	task, err := s.GetByID(ctx, taskID, contestID)
	if err != nil {
		return err
	}
	if task.CreatedBy != actorID {
		return ErrTaskCreatorOnly
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *taskService) requireContest(ctx context.Context, contestID int) error {
	if _, err := s.contestRepo.GetByID(ctx, contestID); err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return ErrContestNotFound
		}
		return err
	}
	return nil
}
