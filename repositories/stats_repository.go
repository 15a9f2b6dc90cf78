package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tasknet/contest-system/models"
)

// StatsRepository exposes the read-only aggregates over user_task. Every
// query is scoped to one contest; existence of the contest is the caller's
// concern.
type StatsRepository interface {
	ContestTaskStats(ctx context.Context, contestID int) ([]models.TaskStats, error)
	UserTaskProgress(ctx context.Context, userID, contestID int) ([]models.UserTaskProgress, error)
	ContestOverallStats(ctx context.Context, contestID int) (*models.ContestOverallStats, error)
	Leaderboard(ctx context.Context, contestID, limit, offset int) ([]models.LeaderboardEntry, error)
	LeaderboardTotal(ctx context.Context, contestID int) (int, error)
	UserContestStats(ctx context.Context, userID, contestID int) (*models.UserContestStats, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) ContestTaskStats(ctx context.Context, contestID int) ([]models.TaskStats, error) {
	query := `
		SELECT
			t.id,
			t.title,
			t.difficulty,
			t.points,
			COUNT(ut.id) AS total_assignments,
			COUNT(*) FILTER (WHERE ut.status = 'completed') AS completed_count,
			COUNT(*) FILTER (WHERE ut.status = 'on_going') AS on_going_count,
			COUNT(*) FILTER (WHERE ut.status = 'pending') AS pending_count,
			ROUND(
				COUNT(*) FILTER (WHERE ut.status = 'completed') * 100.0 /
				NULLIF(COUNT(ut.id), 0), 2
			) AS completion_percentage
		FROM task t
		LEFT JOIN user_task ut ON ut.task_id = t.id
		WHERE t.contest_id = $1
		GROUP BY t.id, t.title, t.difficulty, t.points, t.created_at
		ORDER BY t.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.TaskStats, 0)
	for rows.Next() {
		var s models.TaskStats
		if scanErr := rows.Scan(
			&s.TaskID, &s.Title, &s.Difficulty, &s.Points,
			&s.TotalAssignments, &s.CompletedCount, &s.OnGoingCount, &s.PendingCount,
			&s.CompletionPercentage,
		); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresStatsRepository) UserTaskProgress(ctx context.Context, userID, contestID int) ([]models.UserTaskProgress, error) {
	query := `
		SELECT
			t.id, t.title, t.description, t.difficulty, t.points,
			ut.status, ut.score, ut.submitted_at, ut.created_at
		FROM task t
		LEFT JOIN user_task ut ON ut.task_id = t.id AND ut.user_id = $1
		WHERE t.contest_id = $2
		ORDER BY t.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make([]models.UserTaskProgress, 0)
	for rows.Next() {
		var p models.UserTaskProgress
		if scanErr := rows.Scan(
			&p.TaskID, &p.Title, &p.Description, &p.Difficulty, &p.Points,
			&p.Status, &p.Score, &p.SubmittedAt, &p.AssignedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

func (r *postgresStatsRepository) ContestOverallStats(ctx context.Context, contestID int) (*models.ContestOverallStats, error) {
	query := `
		SELECT
			COUNT(DISTINCT t.id) AS total_tasks,
			COUNT(DISTINCT ut.user_id) AS total_participants,
			COUNT(ut.id) AS total_assignments,
			COUNT(*) FILTER (WHERE ut.status = 'completed') AS total_completed,
			COUNT(*) FILTER (WHERE ut.status = 'on_going') AS total_on_going,
			COUNT(*) FILTER (WHERE ut.status = 'pending') AS total_pending,
			ROUND(
				COUNT(*) FILTER (WHERE ut.status = 'completed') * 100.0 /
				NULLIF(COUNT(ut.id), 0), 2
			) AS overall_completion_percentage,
			COALESCE(SUM(t.points) FILTER (WHERE ut.status = 'completed'), 0) AS total_points_earned,
			COALESCE(SUM(t.points) FILTER (WHERE ut.id IS NOT NULL), 0) AS total_possible_points
		FROM task t
		LEFT JOIN user_task ut ON ut.task_id = t.id
		WHERE t.contest_id = $1`

	s := &models.ContestOverallStats{}
	err := r.db.QueryRowContext(ctx, query, contestID).Scan(
		&s.TotalTasks, &s.TotalParticipants, &s.TotalAssignments,
		&s.TotalCompleted, &s.TotalOnGoing, &s.TotalPending,
		&s.CompletionPercentage, &s.TotalPointsEarned, &s.TotalPossiblePoints,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresStatsRepository) Leaderboard(ctx context.Context, contestID, limit, offset int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT
			u.id, u.first_name, u.last_name, u.email,
			COUNT(*) FILTER (WHERE ut.status = 'completed') AS completed_tasks,
			COUNT(ut.id) AS total_assigned_tasks,
			COALESCE(SUM(t.points) FILTER (WHERE ut.status = 'completed'), 0) AS total_points,
			COALESCE(AVG(ut.score), 0) AS average_score,
			ROUND(
				COUNT(*) FILTER (WHERE ut.status = 'completed') * 100.0 /
				NULLIF(COUNT(ut.id), 0), 2
			) AS completion_percentage
		FROM users u
		JOIN user_task ut ON ut.user_id = u.id
		JOIN task t ON t.id = ut.task_id
		WHERE t.contest_id = $1
		GROUP BY u.id, u.first_name, u.last_name, u.email
		ORDER BY total_points DESC, completed_tasks DESC, completion_percentage DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, contestID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		if scanErr := rows.Scan(
			&e.UserID, &e.FirstName, &e.LastName, &e.Email,
			&e.CompletedTasks, &e.TotalAssignedTasks, &e.TotalPoints,
			&e.AverageScore, &e.CompletionPercentage,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresStatsRepository) LeaderboardTotal(ctx context.Context, contestID int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ut.user_id)
		FROM user_task ut
		JOIN task t ON t.id = ut.task_id
		WHERE t.contest_id = $1`

	var total int
	if err := r.db.QueryRowContext(ctx, query, contestID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postgresStatsRepository) UserContestStats(ctx context.Context, userID, contestID int) (*models.UserContestStats, error) {
	query := `
		SELECT
			u.id, u.first_name, u.last_name, u.email,
			COUNT(*) FILTER (WHERE ut.status = 'completed') AS completed_tasks,
			COUNT(*) FILTER (WHERE ut.status = 'on_going') AS on_going_tasks,
			COUNT(*) FILTER (WHERE ut.status = 'pending') AS pending_tasks,
			COUNT(ut.id) AS total_assigned_tasks,
			COALESCE(SUM(t.points) FILTER (WHERE ut.status = 'completed'), 0) AS total_points,
			COALESCE(AVG(ut.score), 0) AS average_score,
			ROUND(
				COUNT(*) FILTER (WHERE ut.status = 'completed') * 100.0 /
				NULLIF(COUNT(ut.id), 0), 2
			) AS completion_percentage
		FROM users u
		LEFT JOIN user_task ut ON ut.user_id = u.id
		LEFT JOIN task t ON t.id = ut.task_id AND t.contest_id = $1
		WHERE u.id = $2
		GROUP BY u.id, u.first_name, u.last_name, u.email`

	s := &models.UserContestStats{}
	err := r.db.QueryRowContext(ctx, query, contestID, userID).Scan(
		&s.UserID, &s.FirstName, &s.LastName, &s.Email,
		&s.CompletedTasks, &s.OnGoingTasks, &s.PendingTasks, &s.TotalAssignedTasks,
		&s.TotalPoints, &s.AverageScore, &s.CompletionPercentage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s, nil
}
