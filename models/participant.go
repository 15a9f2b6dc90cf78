package models

import "time"

// ContestRole is the role a user holds inside one contest, matching the
// role_in_contest ENUM in the database.
type ContestRole string

const (
	RoleParticipant ContestRole = "participant"
	RoleMentor      ContestRole = "mentor"
	RoleOrganizer   ContestRole = "organizer"
)

func (r ContestRole) Valid() bool {
	switch r {
	case RoleParticipant, RoleMentor, RoleOrganizer:
		return true
	}
	return false
}

// Participant is a (contest, user) participation link. At most one row per
// pair exists.
type Participant struct {
	ID        int         `json:"id"`
	UserID    int         `json:"user_id"`
	ContestID int         `json:"contest_id"`
	Role      ContestRole `json:"role_in_contest"`
	JoinedAt  time.Time   `json:"joined_at"`

	User *User `json:"user,omitempty"`
}
