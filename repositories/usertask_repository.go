package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/tasknet/contest-system/models"
)

var (
	ErrUserTaskNotFound = errors.New("user task assignment not found")
	ErrUserTaskConflict = errors.New("task is already assigned to this user")
	ErrUserTaskInvalid  = errors.New("invalid user or task reference")
)

// StatusUpdate carries the optional fields of a manual status override.
type StatusUpdate struct {
	Status      models.UserTaskStatus
	Score       *int
	SubmittedAt *time.Time
}

type UserTaskRepository interface {
	Create(ctx context.Context, assignment *models.UserTask) error
	BulkAssign(ctx context.Context, userID int, taskIDs []int, status models.UserTaskStatus) (int, error)
	GetByUserAndTask(ctx context.Context, userID, taskID int) (*models.UserTask, error)
	ListByUserAndContest(ctx context.Context, userID, contestID int) ([]models.UserTask, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]models.UserTask, int, error)
	UpdateStatus(ctx context.Context, userID, taskID int, update StatusUpdate) error
	SaveSubmission(ctx context.Context, userID, taskID int, answer string, score int, status models.UserTaskStatus, stampSubmittedAt bool) error
	Exists(ctx context.Context, userID, taskID int) (bool, error)
	Delete(ctx context.Context, userID, taskID int) error
}

type postgresUserTaskRepository struct {
	db *sql.DB
}

func NewPostgresUserTaskRepository(db *sql.DB) UserTaskRepository {
	return &postgresUserTaskRepository{db: db}
}

func (r *postgresUserTaskRepository) Create(ctx context.Context, ut *models.UserTask) error {
	query := `
		INSERT INTO user_task (user_id, task_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, score, created_at`

	err := r.db.QueryRowContext(ctx, query, ut.UserID, ut.TaskID, ut.Status).
		Scan(&ut.ID, &ut.Score, &ut.CreatedAt)

	return handleUserTaskError(err)
}

// BulkAssign inserts one assignment per task id, skipping pairs that already
// exist, and reports how many rows were actually inserted.
func (r *postgresUserTaskRepository) BulkAssign(ctx context.Context, userID int, taskIDs []int, status models.UserTaskStatus) (int, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO user_task (user_id, task_id, status)
		SELECT $1, unnest($2::int[]), $3
		ON CONFLICT (user_id, task_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, userID, pq.Array(taskIDs), status)
	if err != nil {
		return 0, handleUserTaskError(err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count bulk-assigned rows: %w", err)
	}
	return int(inserted), nil
}

const userTaskJoinColumns = `ut.id, ut.user_id, ut.task_id, ut.status, ut.user_answer, ut.score,
	ut.submitted_at, ut.created_at,
	t.title, t.points, t.difficulty, t.contest_id`

func scanUserTaskJoin(row interface{ Scan(...any) error }, ut *models.UserTask) error {
	return row.Scan(
		&ut.ID, &ut.UserID, &ut.TaskID, &ut.Status, &ut.UserAnswer, &ut.Score,
		&ut.SubmittedAt, &ut.CreatedAt,
		&ut.TaskTitle, &ut.TaskPoints, &ut.TaskDifficulty, &ut.ContestID,
	)
}

func (r *postgresUserTaskRepository) GetByUserAndTask(ctx context.Context, userID, taskID int) (*models.UserTask, error) {
	query := `
		SELECT ` + userTaskJoinColumns + `
		FROM user_task ut
		JOIN task t ON t.id = ut.task_id
		WHERE ut.user_id = $1 AND ut.task_id = $2`

	ut := &models.UserTask{}
	err := scanUserTaskJoin(r.db.QueryRowContext(ctx, query, userID, taskID), ut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserTaskNotFound
		}
		return nil, err
	}
	return ut, nil
}

func (r *postgresUserTaskRepository) ListByUserAndContest(ctx context.Context, userID, contestID int) ([]models.UserTask, error) {
	query := `
		SELECT ` + userTaskJoinColumns + `
		FROM user_task ut
		JOIN task t ON t.id = ut.task_id
		WHERE ut.user_id = $1 AND t.contest_id = $2
		ORDER BY ut.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.UserTask, 0)
	for rows.Next() {
		var ut models.UserTask
		if scanErr := scanUserTaskJoin(rows, &ut); scanErr != nil {
			return nil, scanErr
		}
		assignments = append(assignments, ut)
	}
	return assignments, rows.Err()
}

func (r *postgresUserTaskRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]models.UserTask, int, error) {
	query := `
		SELECT ` + userTaskJoinColumns + `, c.title
		FROM user_task ut
		JOIN task t ON t.id = ut.task_id
		JOIN contests c ON c.id = t.contest_id
		WHERE ut.user_id = $1
		ORDER BY ut.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assignments := make([]models.UserTask, 0)
	for rows.Next() {
		var ut models.UserTask
		if scanErr := rows.Scan(
			&ut.ID, &ut.UserID, &ut.TaskID, &ut.Status, &ut.UserAnswer, &ut.Score,
			&ut.SubmittedAt, &ut.CreatedAt,
			&ut.TaskTitle, &ut.TaskPoints, &ut.TaskDifficulty, &ut.ContestID,
			&ut.ContestTitle,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		assignments = append(assignments, ut)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_task WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (r *postgresUserTaskRepository) UpdateStatus(ctx context.Context, userID, taskID int, update StatusUpdate) error {
	query := `UPDATE user_task SET status = $1`
	args := []interface{}{update.Status}
	argID := 2

	if update.Score != nil {
		query += fmt.Sprintf(", score = $%d", argID)
		args = append(args, *update.Score)
		argID++
	}
	if update.SubmittedAt != nil {
		query += fmt.Sprintf(", submitted_at = $%d", argID)
		args = append(args, *update.SubmittedAt)
		argID++
	}

	query += fmt.Sprintf(" WHERE user_id = $%d AND task_id = $%d", argID, argID+1)
	args = append(args, userID, taskID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserTaskNotFound)
}

func (r *postgresUserTaskRepository) SaveSubmission(ctx context.Context, userID, taskID int, answer string, score int, status models.UserTaskStatus, stampSubmittedAt bool) error {
	query := `
		UPDATE user_task SET
			user_answer = $1,
			score = $2,
			status = $3`
	if stampSubmittedAt {
		query += `, submitted_at = NOW()`
	}
	query += ` WHERE user_id = $4 AND task_id = $5`

	result, err := r.db.ExecContext(ctx, query, answer, score, status, userID, taskID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserTaskNotFound)
}

func (r *postgresUserTaskRepository) Exists(ctx context.Context, userID, taskID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_task WHERE user_id = $1 AND task_id = $2)`,
		userID, taskID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check task access: %w", err)
	}
	return exists, nil
}

func (r *postgresUserTaskRepository) Delete(ctx context.Context, userID, taskID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_task WHERE user_id = $1 AND task_id = $2`, userID, taskID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserTaskNotFound)
}

func handleUserTaskError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrUserTaskConflict
		case "23503":
			return ErrUserTaskInvalid
		}
	}
	return err
}
