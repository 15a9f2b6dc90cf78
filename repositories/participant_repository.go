package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/tasknet/contest-system/models"
)

var (
	ErrParticipantNotFound = errors.New("participation link not found")
	ErrParticipantConflict = errors.New("user is already a participant of this contest")
	ErrParticipantInvalid  = errors.New("invalid user or contest reference")
)

type ParticipantRepository interface {
	Add(ctx context.Context, participant *models.Participant) error
	Get(ctx context.Context, contestID, userID int) (*models.Participant, error)
	ListByContest(ctx context.Context, contestID int) ([]models.Participant, error)
	UpdateRole(ctx context.Context, contestID, userID int, role models.ContestRole) error
	Remove(ctx context.Context, contestID, userID int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Add(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO user_contest (user_id, contest_id, role_in_contest)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.ContestID, p.Role).
		Scan(&p.ID, &p.JoinedAt)

	return handleParticipantError(err)
}

func (r *postgresParticipantRepository) Get(ctx context.Context, contestID, userID int) (*models.Participant, error) {
	query := `
		SELECT id, user_id, contest_id, role_in_contest, joined_at
		FROM user_contest
		WHERE contest_id = $1 AND user_id = $2`

	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, contestID, userID).
		Scan(&p.ID, &p.UserID, &p.ContestID, &p.Role, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByContest(ctx context.Context, contestID int) ([]models.Participant, error) {
	query := `
		SELECT uc.id, uc.user_id, uc.contest_id, uc.role_in_contest, uc.joined_at,
			u.id, u.first_name, u.last_name, u.email, u.created_at, u.updated_at
		FROM user_contest uc
		JOIN users u ON u.id = uc.user_id
		WHERE uc.contest_id = $1
		ORDER BY uc.joined_at DESC`

	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if scanErr := rows.Scan(
			&p.ID, &p.UserID, &p.ContestID, &p.Role, &p.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		p.User = &u
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) UpdateRole(ctx context.Context, contestID, userID int, role models.ContestRole) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_contest SET role_in_contest = $1 WHERE contest_id = $2 AND user_id = $3`,
		role, contestID, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Remove(ctx context.Context, contestID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_contest WHERE contest_id = $1 AND user_id = $2`,
		contestID, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrParticipantConflict
		case "23503":
			return ErrParticipantInvalid
		}
	}
	return err
}
