package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknet/contest-system/models"
)

type contestServiceFixture struct {
	contestRepo     *fakeContestRepo
	participantRepo *fakeParticipantRepo
	userRepo        *fakeUserRepo
	uploader        *fakeUploader
	service         ContestService
}

func newContestServiceFixture(t *testing.T) *contestServiceFixture {
	t.Helper()

	contestRepo := newFakeContestRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	uploader := &fakeUploader{}

	service := NewContestService(
		contestRepo,
		participantRepo,
		userRepo,
		NewContestAuthorizer(participantRepo),
		uploader,
		slog.Default(),
	)

	return &contestServiceFixture{
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		uploader:        uploader,
		service:         service,
	}
}

func (f *contestServiceFixture) seedUser(t *testing.T, firstName string) *models.User {
	t.Helper()
	user := &models.User{FirstName: firstName, LastName: "Test", Email: firstName + "@example.com"}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *contestServiceFixture) seedContest(t *testing.T, creatorID int, public bool) *models.Contest {
	t.Helper()
	isPublic := public
	contest, err := f.service.Create(context.Background(), creatorID, CreateContestInput{
		Title:    "Seeded Contest",
		IsPublic: &isPublic,
	}, nil)
	require.NoError(t, err)
	return contest
}

func TestContestServiceCreate(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()

	contest, err := f.service.Create(ctx, 1, CreateContestInput{Title: "  Winter Marathon  "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Winter Marathon", contest.Title)
	assert.Equal(t, "winter-marathon", contest.Slug)
	assert.True(t, contest.IsPublic, "contests default to public")
	assert.Equal(t, 1, contest.CreatedBy)

	// Same title gets a suffixed slug.
	second, err := f.service.Create(ctx, 2, CreateContestInput{Title: "Winter Marathon"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "winter-marathon-1", second.Slug)

	_, err = f.service.Create(ctx, 1, CreateContestInput{Title: "   "}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestContestServicePrivateVisibility(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()
	contest := f.seedContest(t, 1, false)

	_, err := f.service.GetByID(ctx, contest.ID, 0)
	assert.ErrorIs(t, err, ErrForbiddenOperation, "anonymous cannot see a private contest")

	_, err = f.service.GetByID(ctx, contest.ID, 99)
	assert.ErrorIs(t, err, ErrForbiddenOperation, "outsider cannot see a private contest")

	_, err = f.service.GetByID(ctx, contest.ID, 1)
	assert.NoError(t, err, "creator always sees their contest")

	require.NoError(t, f.participantRepo.Add(ctx, &models.Participant{
		UserID: 5, ContestID: contest.ID, Role: models.RoleParticipant,
	}))
	_, err = f.service.GetBySlug(ctx, contest.Slug, 5)
	assert.NoError(t, err, "member sees the private contest")
}

func TestContestServiceUpdateAuthorization(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()
	contest := f.seedContest(t, 1, true)

	require.NoError(t, f.participantRepo.Add(ctx, &models.Participant{
		UserID: 2, ContestID: contest.ID, Role: models.RoleOrganizer,
	}))
	require.NoError(t, f.participantRepo.Add(ctx, &models.Participant{
		UserID: 3, ContestID: contest.ID, Role: models.RoleParticipant,
	}))

	newTitle := "Renamed Contest"
	updated, err := f.service.Update(ctx, contest.ID, 2, UpdateContestInput{Title: &newTitle}, nil)
	require.NoError(t, err, "organizer may update")
	assert.Equal(t, "Renamed Contest", updated.Title)
	assert.Equal(t, "renamed-contest", updated.Slug, "title change re-derives the slug")

	_, err = f.service.Update(ctx, contest.ID, 3, UpdateContestInput{Title: &newTitle}, nil)
	assert.ErrorIs(t, err, ErrForbiddenOperation, "participant may not update")
}

func TestContestServiceDeleteCreatorOnly(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()
	contest := f.seedContest(t, 1, true)

	require.NoError(t, f.participantRepo.Add(ctx, &models.Participant{
		UserID: 2, ContestID: contest.ID, Role: models.RoleOrganizer,
	}))

	err := f.service.Delete(ctx, contest.ID, 2)
	assert.ErrorIs(t, err, ErrForbiddenOperation, "organizer may not delete")

	require.NoError(t, f.service.Delete(ctx, contest.ID, 1))

	_, err = f.service.GetByID(ctx, contest.ID, 1)
	assert.ErrorIs(t, err, ErrContestNotFound)
}

func TestContestServiceJoin(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()
	public := f.seedContest(t, 1, true)
	private := f.seedContest(t, 1, false)

	participant, err := f.service.Join(ctx, public.ID, 7, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParticipant, participant.Role, "empty role defaults to participant")

	_, err = f.service.Join(ctx, public.ID, 7, models.RoleParticipant)
	assert.ErrorIs(t, err, ErrAlreadyParticipant)

	_, err = f.service.Join(ctx, private.ID, 8, models.RoleParticipant)
	assert.ErrorIs(t, err, ErrContestPrivate)

	_, err = f.service.Join(ctx, private.ID, 8, models.RoleMentor)
	assert.NoError(t, err, "mentor join is not gated on visibility")

	_, err = f.service.Join(ctx, public.ID, 9, "judge")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestContestServiceLeave(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()
	contest := f.seedContest(t, 1, true)

	_, err := f.service.Join(ctx, contest.ID, 7, models.RoleParticipant)
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Leave(ctx, contest.ID, 1), ErrCreatorCannotLeave)
	assert.ErrorIs(t, f.service.Leave(ctx, contest.ID, 99), ErrNotParticipant)
	assert.NoError(t, f.service.Leave(ctx, contest.ID, 7))
	assert.ErrorIs(t, f.service.Leave(ctx, contest.ID, 7), ErrNotParticipant)
}

func TestContestServiceMemberManagement(t *testing.T) {
	f := newContestServiceFixture(t)
	ctx := context.Background()

	creator := f.seedUser(t, "creator")
	organizer := f.seedUser(t, "organizer")
	target := f.seedUser(t, "target")
	contest := f.seedContest(t, creator.ID, false)

	require.NoError(t, f.participantRepo.Add(ctx, &models.Participant{
		UserID: organizer.ID, ContestID: contest.ID, Role: models.RoleOrganizer,
	}))

	_, err := f.service.AddMember(ctx, contest.ID, target.ID, models.RoleParticipant, organizer.ID)
	require.NoError(t, err, "organizer may add members")

	_, err = f.service.AddMember(ctx, contest.ID, 12345, models.RoleParticipant, creator.ID)
	assert.ErrorIs(t, err, ErrUserNotFound, "target must exist")

	_, err = f.service.AddMember(ctx, contest.ID, creator.ID, models.RoleParticipant, target.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation, "plain member may not add others")

	// Role change by the creator.
	require.NoError(t, f.service.UpdateParticipantRole(ctx, contest.ID, target.ID, models.RoleMentor, creator.ID))
	link, err := f.participantRepo.Get(ctx, contest.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, link.Role)

	err = f.service.UpdateParticipantRole(ctx, contest.ID, target.ID, models.RoleMentor, target.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// Removal rules.
	assert.ErrorIs(t, f.service.RemoveMember(ctx, contest.ID, creator.ID, creator.ID), ErrCreatorCannotBeRemoved)
	assert.ErrorIs(t, f.service.RemoveMember(ctx, contest.ID, organizer.ID, organizer.ID), ErrOnlyCreatorRemovesOrg,
		"only the creator may remove an organizer")
	assert.NoError(t, f.service.RemoveMember(ctx, contest.ID, organizer.ID, creator.ID))
	assert.NoError(t, f.service.RemoveMember(ctx, contest.ID, target.ID, creator.ID))
	assert.ErrorIs(t, f.service.RemoveMember(ctx, contest.ID, target.ID, creator.ID), ErrNotParticipant)
}
