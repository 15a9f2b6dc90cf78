package models

import "time"

// TaskStats aggregates assignment states for one task.
type TaskStats struct {
	TaskID               int            `json:"task_id"`
	Title                string         `json:"title"`
	Difficulty           TaskDifficulty `json:"difficulty"`
	Points               int            `json:"points"`
	TotalAssignments     int            `json:"total_assignments"`
	CompletedCount       int            `json:"completed_count"`
	OnGoingCount         int            `json:"on_going_count"`
	PendingCount         int            `json:"pending_count"`
	CompletionPercentage *float64       `json:"completion_percentage"`
}

// UserTaskProgress is one row of a user's per-task progress inside a
// contest. Tasks the user was never assigned still appear, with a nil
// status.
type UserTaskProgress struct {
	TaskID      int             `json:"task_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Difficulty  TaskDifficulty  `json:"difficulty"`
	Points      int             `json:"points"`
	Status      *UserTaskStatus `json:"status"`
	Score       *int            `json:"score"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	AssignedAt  *time.Time      `json:"assigned_at,omitempty"`
}

// ContestOverallStats aggregates every assignment in a contest.
type ContestOverallStats struct {
	TotalTasks           int      `json:"total_tasks"`
	TotalParticipants    int      `json:"total_participants"`
	TotalAssignments     int      `json:"total_assignments"`
	TotalCompleted       int      `json:"total_completed"`
	TotalOnGoing         int      `json:"total_on_going"`
	TotalPending         int      `json:"total_pending"`
	CompletionPercentage *float64 `json:"overall_completion_percentage"`
	TotalPointsEarned    int      `json:"total_points_earned"`
	TotalPossiblePoints  int      `json:"total_possible_points"`
}

// LeaderboardEntry is one ranked row of a contest leaderboard. Ordering is
// total points, then completed tasks, then completion percentage, all
// descending.
type LeaderboardEntry struct {
	UserID               int      `json:"user_id"`
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	Email                string   `json:"email"`
	CompletedTasks       int      `json:"completed_tasks"`
	TotalAssignedTasks   int      `json:"total_assigned_tasks"`
	TotalPoints          int      `json:"total_points"`
	AverageScore         float64  `json:"average_score"`
	CompletionPercentage *float64 `json:"completion_percentage"`
}

// RankedBefore reports whether e outranks other: total points, then
// completed tasks, then completion percentage, all descending.
func (e LeaderboardEntry) RankedBefore(other LeaderboardEntry) bool {
	if e.TotalPoints != other.TotalPoints {
		return e.TotalPoints > other.TotalPoints
	}
	if e.CompletedTasks != other.CompletedTasks {
		return e.CompletedTasks > other.CompletedTasks
	}
	return completionOrZero(e.CompletionPercentage) > completionOrZero(other.CompletionPercentage)
}

func completionOrZero(pct *float64) float64 {
	if pct == nil {
		return 0
	}
	return *pct
}

// UserContestStats is one user's aggregate standing inside a contest.
type UserContestStats struct {
	UserID               int      `json:"user_id"`
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	Email                string   `json:"email"`
	CompletedTasks       int      `json:"completed_tasks"`
	OnGoingTasks         int      `json:"on_going_tasks"`
	PendingTasks         int      `json:"pending_tasks"`
	TotalAssignedTasks   int      `json:"total_assigned_tasks"`
	TotalPoints          int      `json:"total_points"`
	AverageScore         float64  `json:"average_score"`
	CompletionPercentage *float64 `json:"completion_percentage"`
}
