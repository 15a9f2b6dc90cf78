package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tasknet/contest-system/models"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskInvalidContest = errors.New("invalid contest reference")
	ErrTaskInvalidCreator = errors.New("invalid task creator reference")
)

type ListTasksFilter struct {
	ContestID *int
	Limit     int
	Offset    int
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]models.Task, int, error)
	ListIDsByContest(ctx context.Context, contestID int) ([]int, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int) error
}

type postgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) TaskRepository {
	return &postgresTaskRepository{db: db}
}

const taskColumns = `id, contest_id, title, description, points, difficulty, required_answer,
	created_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.ContestID, &t.Title, &t.Description, &t.Points, &t.Difficulty,
		&t.RequiredAnswer, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *postgresTaskRepository) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO task (contest_id, title, description, points, difficulty, required_answer, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ContestID, t.Title, t.Description, t.Points, t.Difficulty, t.RequiredAnswer, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return handleTaskError(err)
}

func (r *postgresTaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = $1`

	t := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTaskRepository) List(ctx context.Context, filter ListTasksFilter) ([]models.Task, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.ContestID != nil {
		where += fmt.Sprintf(" AND contest_id = $%d", argID)
		args = append(args, *filter.ContestID)
		argID++
	}

	query := `SELECT ` + taskColumns + ` FROM task` + where + ` ORDER BY created_at ASC`
	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if scanErr := scanTask(rows, &t); scanErr != nil {
			return nil, 0, scanErr
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *postgresTaskRepository) ListIDsByContest(ctx context.Context, contestID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM task WHERE contest_id = $1 ORDER BY created_at ASC`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTaskRepository) Update(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE task SET
			title = $1,
			description = $2,
			points = $3,
			difficulty = $4,
			required_answer = $5,
			updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.Points, t.Difficulty, t.RequiredAnswer, t.ID,
	)
	if err != nil {
		return handleTaskError(err)
	}
	return checkAffectedRows(result, ErrTaskNotFound)
}

func (r *postgresTaskRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTaskNotFound)
}

func handleTaskError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "task_contest_id_fkey":
				return ErrTaskInvalidContest
			case "task_created_by_fkey":
				return ErrTaskInvalidCreator
			}
		}
	}
	return err
}
