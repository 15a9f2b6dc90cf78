package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
)

// UserAnswerView is the read model for a user's own submission. The grading
// key is deliberately never part of it.
type UserAnswerView struct {
	UserID       int                   `json:"user_id"`
	TaskID       int                   `json:"task_id"`
	TaskTitle    string                `json:"task_title"`
	UserAnswer   *string               `json:"user_answer"`
	Score        int                   `json:"score"`
	MaxPoints    int                   `json:"max_points"`
	Status       models.UserTaskStatus `json:"status"`
	SubmittedAt  *time.Time            `json:"submitted_at,omitempty"`
	HasSubmitted bool                  `json:"has_submitted"`
}

type UpdateStatusInput struct {
	Status      models.UserTaskStatus `json:"status"`
	Score       *int                  `json:"score"`
	SubmittedAt *time.Time            `json:"submitted_at"`
}

type UserTaskService interface {
	BulkAssign(ctx context.Context, userID, contestID int) (*models.BulkAssignResult, error)
	AssignOne(ctx context.Context, userID, taskID int, status models.UserTaskStatus) (*models.UserTask, bool, error)
	Get(ctx context.Context, userID, taskID int) (*models.UserTask, error)
	ListByContest(ctx context.Context, userID, contestID int) ([]models.UserTask, error)
	ListAll(ctx context.Context, userID, page, limit int) ([]models.UserTask, int, error)
	UpdateStatus(ctx context.Context, userID, taskID int, input UpdateStatusInput) error
	SubmitAnswer(ctx context.Context, userID, taskID int, answer string) (*models.SubmissionResult, error)
	GetAnswer(ctx context.Context, userID, taskID int) (*UserAnswerView, error)
	Remove(ctx context.Context, userID, taskID int) error
	HasAccess(ctx context.Context, userID, taskID int) (bool, error)
}

type userTaskService struct {
	userTaskRepo repositories.UserTaskRepository
	taskRepo     repositories.TaskRepository
	contestRepo  repositories.ContestRepository
}

func NewUserTaskService(
	userTaskRepo repositories.UserTaskRepository,
	taskRepo repositories.TaskRepository,
	contestRepo repositories.ContestRepository,
) UserTaskService {
	return &userTaskService{
		userTaskRepo: userTaskRepo,
		taskRepo:     taskRepo,
		contestRepo:  contestRepo,
	}
}

// BulkAssign assigns every task of a contest to the user. Pairs that already
// exist are skipped, so repeating the call is harmless and reports zero new
// assignments.
func (s *userTaskService) BulkAssign(ctx context.Context, userID, contestID int) (*models.BulkAssignResult, error) {
	if _, err := s.contestRepo.GetByID(ctx, contestID); err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}

	taskIDs, err := s.taskRepo.ListIDsByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest tasks: %w", err)
	}
	if len(taskIDs) == 0 {
		return nil, ErrContestHasNoTasks
	}

	inserted, err := s.userTaskRepo.BulkAssign(ctx, userID, taskIDs, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk-assign tasks: %w", err)
	}

	return &models.BulkAssignResult{
		UserID:          userID,
		ContestID:       contestID,
		TasksInContest:  len(taskIDs),
		NewAssignments:  inserted,
		AlreadyAssigned: len(taskIDs) - inserted,
	}, nil
}

// AssignOne creates a single assignment. When the pair already exists the
// current row is returned unchanged with existing set.
func (s *userTaskService) AssignOne(ctx context.Context, userID, taskID int, status models.UserTaskStatus) (*models.UserTask, bool, error) {
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return nil, false, ErrInvalidStatus
	}

	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, false, ErrTaskNotFound
		}
		return nil, false, err
	}

	existing, err := s.userTaskRepo.GetByUserAndTask(ctx, userID, taskID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, repositories.ErrUserTaskNotFound) {
		return nil, false, err
	}

	assignment := &models.UserTask{
		UserID: userID,
		TaskID: taskID,
		Status: status,
	}
	if err := s.userTaskRepo.Create(ctx, assignment); err != nil {
		return nil, false, fmt.Errorf("failed to assign task: %w", err)
	}
	return assignment, false, nil
}

func (s *userTaskService) Get(ctx context.Context, userID, taskID int) (*models.UserTask, error) {
	assignment, err := s.userTaskRepo.GetByUserAndTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserTaskNotFound) {
			return nil, ErrUserTaskNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *userTaskService) ListByContest(ctx context.Context, userID, contestID int) ([]models.UserTask, error) {
	if _, err := s.contestRepo.GetByID(ctx, contestID); err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	assignments, err := s.userTaskRepo.ListByUserAndContest(ctx, userID, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest assignments: %w", err)
	}
	return assignments, nil
}

func (s *userTaskService) ListAll(ctx context.Context, userID, page, limit int) ([]models.UserTask, int, error) {
	pageLimit, offset := normalizePage(page, limit)
	assignments, total, err := s.userTaskRepo.ListByUser(ctx, userID, pageLimit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}

// UpdateStatus is the manual override path. It validates against the same
// status enumeration the grading path uses but allows setting any of the
// three states directly.
func (s *userTaskService) UpdateStatus(ctx context.Context, userID, taskID int, input UpdateStatusInput) error {
	if !input.Status.Valid() {
		return ErrInvalidStatus
	}

	if _, err := s.userTaskRepo.GetByUserAndTask(ctx, userID, taskID); err != nil {
		if errors.Is(err, repositories.ErrUserTaskNotFound) {
			return ErrUserTaskNotFound
		}
		return err
	}

	update := repositories.StatusUpdate{
		Status:      input.Status,
		Score:       input.Score,
		SubmittedAt: input.SubmittedAt,
	}
	if err := s.userTaskRepo.UpdateStatus(ctx, userID, taskID, update); err != nil {
		if errors.Is(err, repositories.ErrUserTaskNotFound) {
			return ErrUserTaskNotFound
		}
		return fmt.Errorf("failed to update assignment status: %w", err)
	}
	return nil
}

// SubmitAnswer grades an answer against the task's stored key. Matching is
// case-insensitive on trimmed strings; a task without a key never matches.
// A correct answer awards the full point value and completes the
// assignment; an incorrect one scores zero and moves a pending assignment
// to on_going.
func (s *userTaskService) SubmitAnswer(ctx context.Context, userID, taskID int, answer string) (*models.SubmissionResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrAnswerRequired
	}

	hasAccess, err := s.userTaskRepo.Exists(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, ErrForbiddenOperation
	}

	assignment, err := s.userTaskRepo.GetByUserAndTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserTaskNotFound) {
			return nil, ErrUserTaskNotFound
		}
		return nil, err
	}
	if assignment.Status == models.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	correct := gradeAnswer(answer, task.RequiredAnswer)
	score := 0
	if correct {
		score = task.Points
	}
	newStatus := assignment.Status.NextOnSubmission(correct)

	if err := s.userTaskRepo.SaveSubmission(ctx, userID, taskID, answer, score, newStatus, correct); err != nil {
		if errors.Is(err, repositories.ErrUserTaskNotFound) {
			return nil, ErrUserTaskNotFound
		}
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	return &models.SubmissionResult{
		UserID:     userID,
		TaskID:     taskID,
		TaskTitle:  task.Title,
		UserAnswer: answer,
		IsCorrect:  correct,
		Score:      score,
		MaxPoints:  task.Points,
		Status:     newStatus,
	}, nil
}

func (s *userTaskService) GetAnswer(ctx context.Context, userID, taskID int) (*UserAnswerView, error) {
	hasAccess, err := s.userTaskRepo.Exists(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, ErrForbiddenOperation
	}

	assignment, err := s.userTaskRepo.GetByUserAndTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserTaskNotFound) {
			return nil, ErrUserTaskNotFound
		}
		return nil, err
	}

	return &UserAnswerView{
		UserID:       userID,
		TaskID:       taskID,
		TaskTitle:    assignment.TaskTitle,
		UserAnswer:   assignment.UserAnswer,
		Score:        assignment.Score,
		MaxPoints:    assignment.TaskPoints,
		Status:       assignment.Status,
		SubmittedAt:  assignment.SubmittedAt,
		HasSubmitted: assignment.UserAnswer != nil && *assignment.UserAnswer != "",
	}, nil
}

func (s *userTaskService) Remove(ctx context.Context, userID, taskID int) error {
	err := s.userTaskRepo.Delete(ctx, userID, taskID)
	if errors.Is(err, repositories.ErrUserTaskNotFound) {
		return ErrUserTaskNotFound
	}
	return err
}

func (s *userTaskService) HasAccess(ctx context.Context, userID, taskID int) (bool, error) {
	return s.userTaskRepo.Exists(ctx, userID, taskID)
}

// gradeAnswer compares a submitted answer with the stored key: trimmed,
// case-insensitive equality. No key means nothing can match.
func gradeAnswer(answer string, requiredAnswer *string) bool {
	if requiredAnswer == nil {
		return false
	}
	required := strings.TrimSpace(*requiredAnswer)
	if required == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), required)
}
