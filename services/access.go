package services

import (
	"context"
	"errors"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
)

// Capability names one action an actor may take on a contest. Every mutating
// contest operation consults the same capability set instead of re-deriving
// creator/organizer status inline.
type Capability int

const (
	CapView Capability = iota
	CapUpdate
	CapDelete
	CapManageMembers
	CapRemoveOrganizer
)

// CapabilitySet is what one actor may do to one contest.
type CapabilitySet struct {
	IsCreator bool
	Role      *models.ContestRole // nil when the actor holds no participation link

	caps map[Capability]bool
}

func (s CapabilitySet) Can(c Capability) bool {
	return s.caps[c]
}

// ContestAuthorizer derives capability sets from a contest and its
// participation links.
type ContestAuthorizer struct {
	participantRepo repositories.ParticipantRepository
}

func NewContestAuthorizer(participantRepo repositories.ParticipantRepository) *ContestAuthorizer {
	return &ContestAuthorizer{participantRepo: participantRepo}
}

// CapabilitiesFor resolves what userID may do to contest. userID == 0 means
// an anonymous actor.
func (a *ContestAuthorizer) CapabilitiesFor(ctx context.Context, contest *models.Contest, userID int) (CapabilitySet, error) {
	set := CapabilitySet{caps: map[Capability]bool{}}
	if contest == nil {
		return set, ErrContestNotFound
	}

	if userID > 0 {
		set.IsCreator = contest.CreatedBy == userID
		participant, err := a.participantRepo.Get(ctx, contest.ID, userID)
		if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
			return set, err
		}
		if participant != nil {
			role := participant.Role
			set.Role = &role
		}
	}

	isOrganizer := set.Role != nil && *set.Role == models.RoleOrganizer

	// A private contest is visible only to its creator and participants.
	set.caps[CapView] = contest.IsPublic || set.IsCreator || set.Role != nil
	set.caps[CapUpdate] = set.IsCreator || isOrganizer
	set.caps[CapManageMembers] = set.IsCreator || isOrganizer
	// Deletion and demoting another organizer stay with the creator.
	set.caps[CapDelete] = set.IsCreator
	set.caps[CapRemoveOrganizer] = set.IsCreator

	return set, nil
}
