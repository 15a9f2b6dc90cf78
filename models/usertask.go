package models

import "time"

// UserTaskStatus is the progress state of one (user, task) assignment,
// matching the status ENUM in the database.
type UserTaskStatus string

const (
	StatusPending   UserTaskStatus = "pending"
	StatusOnGoing   UserTaskStatus = "on_going"
	StatusCompleted UserTaskStatus = "completed"
)

func (s UserTaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusOnGoing, StatusCompleted:
		return true
	}
	return false
}

// NextOnSubmission is the single authority for status moves driven by
// grading. A correct answer completes the assignment from any non-completed
// state; an incorrect one moves pending to on_going and leaves anything else
// where it is. Submissions against a completed assignment must be rejected
// before this is consulted.
func (s UserTaskStatus) NextOnSubmission(correct bool) UserTaskStatus {
	if correct {
		return StatusCompleted
	}
	if s == StatusPending {
		return StatusOnGoing
	}
	return s
}

// UserTask is an assignment of one task to one user. At most one row per
// (user, task) pair exists.
type UserTask struct {
	ID          int            `json:"id"`
	UserID      int            `json:"user_id"`
	TaskID      int            `json:"task_id"`
	Status      UserTaskStatus `json:"status"`
	UserAnswer  *string        `json:"user_answer,omitempty"`
	Score       int            `json:"score"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`

	// Joined task columns, populated by the repository reads.
	TaskTitle      string         `json:"task_title,omitempty"`
	TaskPoints     int            `json:"task_points,omitempty"`
	TaskDifficulty TaskDifficulty `json:"task_difficulty,omitempty"`
	ContestID      int            `json:"contest_id,omitempty"`
	ContestTitle   string         `json:"contest_title,omitempty"`
}

// SubmissionResult is what an answer submission reports back. The stored
// grading key is deliberately absent.
type SubmissionResult struct {
	UserID     int            `json:"user_id"`
	TaskID     int            `json:"task_id"`
	TaskTitle  string         `json:"task_title"`
	UserAnswer string         `json:"user_answer"`
	IsCorrect  bool           `json:"is_correct"`
	Score      int            `json:"score"`
	MaxPoints  int            `json:"max_points"`
	Status     UserTaskStatus `json:"status"`
}

// BulkAssignResult reports the outcome of assigning every task of a contest
// to one user. The operation is idempotent: pairs that already exist are
// skipped and only counted.
type BulkAssignResult struct {
	UserID          int `json:"user_id"`
	ContestID       int `json:"contest_id"`
	TasksInContest  int `json:"tasks_in_contest"`
	NewAssignments  int `json:"new_assignments"`
	AlreadyAssigned int `json:"already_assigned"`
}
