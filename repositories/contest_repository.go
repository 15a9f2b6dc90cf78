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
	ErrContestNotFound     = errors.New("contest not found")
	ErrContestSlugConflict = errors.New("contest slug already exists")
	ErrContestInvalidUser  = errors.New("invalid contest creator reference")
)

type ListContestsFilter struct {
	IsPublic  *bool
	CreatedBy *int
	Limit     int
	Offset    int
}

type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id int) (*models.Contest, error)
	GetBySlug(ctx context.Context, slug string) (*models.Contest, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter ListContestsFilter) ([]models.Contest, int, error)
	ListJoined(ctx context.Context, userID int) ([]models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
	UpdateProfileImgKey(ctx context.Context, contestID int, key *string) error
	Delete(ctx context.Context, id int) error
}

type postgresContestRepository struct {
	db *sql.DB
}

func NewPostgresContestRepository(db *sql.DB) ContestRepository {
	return &postgresContestRepository{db: db}
}

const contestColumns = `c.id, c.title, c.slug, c.is_public, c.created_by, c.starts_at, c.ends_at,
	c.profile_img_key, c.created_at, c.updated_at`

func scanContest(row interface{ Scan(...any) error }, c *models.Contest) error {
	return row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.IsPublic, &c.CreatedBy, &c.StartsAt, &c.EndsAt,
		&c.ProfileImgKey, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *postgresContestRepository) Create(ctx context.Context, c *models.Contest) error {
	query := `
		INSERT INTO contests (title, slug, is_public, created_by, starts_at, ends_at, profile_img_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Title, c.Slug, c.IsPublic, c.CreatedBy, c.StartsAt, c.EndsAt, c.ProfileImgKey,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return handleContestError(err)
}

func (r *postgresContestRepository) GetByID(ctx context.Context, id int) (*models.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests c WHERE c.id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresContestRepository) GetBySlug(ctx context.Context, slug string) (*models.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests c WHERE c.slug = $1`
	return r.getOne(ctx, query, slug)
}

func (r *postgresContestRepository) getOne(ctx context.Context, query string, arg any) (*models.Contest, error) {
	c := &models.Contest{}
	err := scanContest(r.db.QueryRowContext(ctx, query, arg), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresContestRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contests WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}
	return exists, nil
}

func (r *postgresContestRepository) List(ctx context.Context, filter ListContestsFilter) ([]models.Contest, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.IsPublic != nil {
		where += fmt.Sprintf(" AND c.is_public = $%d", argID)
		args = append(args, *filter.IsPublic)
		argID++
	}
	if filter.CreatedBy != nil {
		where += fmt.Sprintf(" AND c.created_by = $%d", argID)
		args = append(args, *filter.CreatedBy)
		argID++
	}

	query := `SELECT ` + contestColumns + ` FROM contests c` + where + ` ORDER BY c.created_at DESC`
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

	contests := make([]models.Contest, 0)
	for rows.Next() {
		var c models.Contest
		if scanErr := scanContest(rows, &c); scanErr != nil {
			return nil, 0, scanErr
		}
		contests = append(contests, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM contests c` + where
	if err = r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return contests, total, nil
}

func (r *postgresContestRepository) ListJoined(ctx context.Context, userID int) ([]models.Contest, error) {
	query := `
		SELECT ` + contestColumns + `
		FROM contests c
		JOIN user_contest uc ON uc.contest_id = c.id
		WHERE uc.user_id = $1
		ORDER BY uc.joined_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contests := make([]models.Contest, 0)
	for rows.Next() {
		var c models.Contest
		if scanErr := scanContest(rows, &c); scanErr != nil {
			return nil, scanErr
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

func (r *postgresContestRepository) Update(ctx context.Context, c *models.Contest) error {
	query := `
		UPDATE contests SET
			title = $1,
			slug = $2,
			is_public = $3,
			starts_at = $4,
			ends_at = $5,
			updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		c.Title, c.Slug, c.IsPublic, c.StartsAt, c.EndsAt, c.ID,
	)
	if err != nil {
		return handleContestError(err)
	}
	return checkAffectedRows(result, ErrContestNotFound)
}

func (r *postgresContestRepository) UpdateProfileImgKey(ctx context.Context, contestID int, key *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contests SET profile_img_key = $1, updated_at = NOW() WHERE id = $2`,
		key, contestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest profile image key: %w", err)
	}
	return checkAffectedRows(result, ErrContestNotFound)
}

func (r *postgresContestRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrContestNotFound)
}

func handleContestError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "contests_slug_key" {
				return ErrContestSlugConflict
			}
		case "23503":
			if pqErr.Constraint == "contests_created_by_fkey" {
				return ErrContestInvalidUser
			}
		}
	}
	return err
}
