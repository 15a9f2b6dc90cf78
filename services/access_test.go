package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknet/contest-system/models"
)

func TestContestAuthorizerCapabilities(t *testing.T) {
	const (
		creatorID     = 1
		organizerID   = 2
		mentorID      = 3
		participantID = 4
		outsiderID    = 5
	)

	participantRepo := newFakeParticipantRepo()
	authorizer := NewContestAuthorizer(participantRepo)

	contest := &models.Contest{ID: 10, Title: "Private Cup", IsPublic: false, CreatedBy: creatorID}
	seed := map[int]models.ContestRole{
		organizerID:   models.RoleOrganizer,
		mentorID:      models.RoleMentor,
		participantID: models.RoleParticipant,
	}
	for userID, role := range seed {
		require.NoError(t, participantRepo.Add(context.Background(), &models.Participant{
			UserID:    userID,
			ContestID: contest.ID,
			Role:      role,
		}))
	}

	testCases := []struct {
		name                string
		userID              int
		wantView            bool
		wantUpdate          bool
		wantDelete          bool
		wantManageMembers   bool
		wantRemoveOrganizer bool
	}{
		{
			name:   "creator holds everything",
			userID: creatorID,
			wantView: true, wantUpdate: true, wantDelete: true,
			wantManageMembers: true, wantRemoveOrganizer: true,
		},
		{
			name:   "organizer manages but cannot delete",
			userID: organizerID,
			wantView: true, wantUpdate: true, wantManageMembers: true,
		},
		{
			name:     "mentor only views",
			userID:   mentorID,
			wantView: true,
		},
		{
			name:     "participant only views",
			userID:   participantID,
			wantView: true,
		},
		{
			name:   "outsider sees nothing on a private contest",
			userID: outsiderID,
		},
		{
			name:   "anonymous sees nothing on a private contest",
			userID: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caps, err := authorizer.CapabilitiesFor(context.Background(), contest, tc.userID)
			require.NoError(t, err)

			assert.Equal(t, tc.wantView, caps.Can(CapView), "view")
			assert.Equal(t, tc.wantUpdate, caps.Can(CapUpdate), "update")
			assert.Equal(t, tc.wantDelete, caps.Can(CapDelete), "delete")
			assert.Equal(t, tc.wantManageMembers, caps.Can(CapManageMembers), "manage members")
			assert.Equal(t, tc.wantRemoveOrganizer, caps.Can(CapRemoveOrganizer), "remove organizer")
		})
	}
}

func TestContestAuthorizerPublicContestVisibleToAnyone(t *testing.T) {
	authorizer := NewContestAuthorizer(newFakeParticipantRepo())
	contest := &models.Contest{ID: 11, Title: "Open Cup", IsPublic: true, CreatedBy: 1}

	caps, err := authorizer.CapabilitiesFor(context.Background(), contest, 0)
	require.NoError(t, err)
	assert.True(t, caps.Can(CapView))
	assert.False(t, caps.Can(CapUpdate))
}
