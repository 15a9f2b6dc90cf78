package models

import "time"

// TaskDifficulty matches the difficulty ENUM in the database.
type TaskDifficulty string

const (
	DifficultyEasy   TaskDifficulty = "easy"
	DifficultyMedium TaskDifficulty = "medium"
	DifficultyHard   TaskDifficulty = "hard"
)

func (d TaskDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Task belongs to exactly one contest. RequiredAnswer is the grading key; a
// task without one can never be auto-graded. The key is never serialized.
type Task struct {
	ID             int            `json:"id"`
	ContestID      int            `json:"contest_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Points         int            `json:"points"`
	Difficulty     TaskDifficulty `json:"difficulty"`
	RequiredAnswer *string        `json:"-"`
	CreatedBy      int            `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
