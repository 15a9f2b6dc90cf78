package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
	"github.com/tasknet/contest-system/storage"
)

type CreateContestInput struct {
	Title    string     `json:"title"`
	IsPublic *bool      `json:"is_public"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type UpdateContestInput struct {
	Title    *string    `json:"title"`
	IsPublic *bool      `json:"is_public"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// ImageUpload is an uploaded profile image as received by the HTTP layer.
type ImageUpload struct {
	ContentType string
	Reader      io.Reader
}

type ContestService interface {
	Create(ctx context.Context, creatorID int, input CreateContestInput, image *ImageUpload) (*models.Contest, error)
	GetByID(ctx context.Context, id, actorID int) (*models.Contest, error)
	GetBySlug(ctx context.Context, slug string, actorID int) (*models.Contest, error)
	List(ctx context.Context, filter repositories.ListContestsFilter) ([]models.Contest, int, error)
	ListCreated(ctx context.Context, userID int) ([]models.Contest, error)
	ListJoined(ctx context.Context, userID int) ([]models.Contest, error)
	Update(ctx context.Context, id, actorID int, input UpdateContestInput, image *ImageUpload) (*models.Contest, error)
	Delete(ctx context.Context, id, actorID int) error
	Participants(ctx context.Context, contestID, actorID int) ([]models.Participant, error)
	Join(ctx context.Context, contestID, userID int, role models.ContestRole) (*models.Participant, error)
	Leave(ctx context.Context, contestID, userID int) error
	UpdateParticipantRole(ctx context.Context, contestID, targetUserID int, role models.ContestRole, actorID int) error
	AddMember(ctx context.Context, contestID, targetUserID int, role models.ContestRole, actorID int) (*models.Participant, error)
	RemoveMember(ctx context.Context, contestID, targetUserID, actorID int) error
}

type contestService struct {
	contestRepo     repositories.ContestRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	authorizer      *ContestAuthorizer
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewContestService(
	contestRepo repositories.ContestRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	authorizer *ContestAuthorizer,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ContestService {
	return &contestService{
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		authorizer:      authorizer,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *contestService) Create(ctx context.Context, creatorID int, input CreateContestInput, image *ImageUpload) (*models.Contest, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.StartsAt.Before(*input.EndsAt) {
		return nil, ErrContestDatesInvalid
	}

	contestSlug, err := generateUniqueSlug(ctx, s.contestRepo, title)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	contest := &models.Contest{
		Title:     title,
		Slug:      contestSlug,
		IsPublic:  isPublic,
		CreatedBy: creatorID,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
	}

	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}

	if image != nil {
		if err := s.uploadProfileImage(ctx, contest, image); err != nil {
			return nil, err
		}
	}

	populateContestImageURL(contest, s.uploader)
	return contest, nil
}

func (s *contestService) GetByID(ctx context.Context, id, actorID int) (*models.Contest, error) {
	contest, err := s.getContest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, contest, actorID); err != nil {
		return nil, err
	}
	populateContestImageURL(contest, s.uploader)
	return contest, nil
}

func (s *contestService) GetBySlug(ctx context.Context, slug string, actorID int) (*models.Contest, error) {
	contest, err := s.contestRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	if err := s.requireView(ctx, contest, actorID); err != nil {
		return nil, err
	}
	populateContestImageURL(contest, s.uploader)
	return contest, nil
}

func (s *contestService) List(ctx context.Context, filter repositories.ListContestsFilter) ([]models.Contest, int, error) {
	contests, total, err := s.contestRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contests: %w", err)
	}
	for i := range contests {
		populateContestImageURL(&contests[i], s.uploader)
	}
	return contests, total, nil
}

func (s *contestService) ListCreated(ctx context.Context, userID int) ([]models.Contest, error) {
	contests, _, err := s.contestRepo.List(ctx, repositories.ListContestsFilter{CreatedBy: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list created contests: %w", err)
	}
	for i := range contests {
		populateContestImageURL(&contests[i], s.uploader)
	}
	return contests, nil
}

func (s *contestService) ListJoined(ctx context.Context, userID int) ([]models.Contest, error) {
	contests, err := s.contestRepo.ListJoined(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined contests: %w", err)
	}
	for i := range contests {
		populateContestImageURL(&contests[i], s.uploader)
	}
	return contests, nil
}

func (s *contestService) Update(ctx context.Context, id, actorID int, input UpdateContestInput, image *ImageUpload) (*models.Contest, error) {
	contest, err := s.getContest(ctx, id)
	if err != nil {
		return nil, err
	}

	caps, err := s.authorizer.CapabilitiesFor(ctx, contest, actorID)
	if err != nil {
		return nil, err
	}
	if !caps.Can(CapUpdate) {
		return nil, ErrForbiddenOperation
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
		}
		// A new title means a new slug, re-uniquified against current rows.
		if title != contest.Title {
			newSlug, slugErr := generateUniqueSlug(ctx, s.contestRepo, title)
			if slugErr != nil {
				return nil, slugErr
			}
			contest.Slug = newSlug
		}
		contest.Title = title
	}
	if input.IsPublic != nil {
		contest.IsPublic = *input.IsPublic
	}
	if input.StartsAt != nil {
		contest.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		contest.EndsAt = input.EndsAt
	}
	if contest.StartsAt != nil && contest.EndsAt != nil && !contest.StartsAt.Before(*contest.EndsAt) {
		return nil, ErrContestDatesInvalid
	}

	if err := s.contestRepo.Update(ctx, contest); err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}

	if image != nil {
		if err := s.uploadProfileImage(ctx, contest, image); err != nil {
			return nil, err
		}
	}

	populateContestImageURL(contest, s.uploader)
	return contest, nil
}

func (s *contestService) Delete(ctx context.Context, id, actorID int) error {
	contest, err := s.getContest(ctx, id)
	if err != nil {
		return err
	}

	caps, err := s.authorizer.CapabilitiesFor(ctx, contest, actorID)
	if err != nil {
		return err
	}
	if !caps.Can(CapDelete) {
		return ErrForbiddenOperation
	}

	if err := s.contestRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return ErrContestNotFound
		}
		return fmt.Errorf("failed to delete contest: %w", err)
	}

	// Stored image cleanup is best-effort; the contest row is already gone.
	if contest.ProfileImgKey != nil && *contest.ProfileImgKey != "" {
		if delErr := s.uploader.Delete(ctx, *contest.ProfileImgKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete contest profile image",
				slog.Int("contest_id", id), slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *contestService) Participants(ctx context.Context, contestID, actorID int) ([]models.Participant, error) {
	contest, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, contest, actorID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (s *contestService) Join(ctx context.Context, contestID, userID int, role models.ContestRole) (*models.Participant, error) {
	if role == "" {
		role = models.RoleParticipant
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	contest, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	// Joining as a plain participant requires a public contest. Mentor and
	// organizer joins skip the visibility gate (kept from the original
	// behavior, see DESIGN.md).
	if !contest.IsPublic && role == models.RoleParticipant {
		return nil, ErrContestPrivate
	}

	participant := &models.Participant{
		UserID:    userID,
		ContestID: contestID,
		Role:      role,
	}
	if err := s.participantRepo.Add(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("failed to join contest: %w", err)
	}
	return participant, nil
}

func (s *contestService) Leave(ctx context.Context, contestID, userID int) error {
	contest, err := s.getContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.CreatedBy == userID {
		return ErrCreatorCannotLeave
	}

	if err := s.participantRepo.Remove(ctx, contestID, userID); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrNotParticipant
		}
		return fmt.Errorf("failed to leave contest: %w", err)
	}
	return nil
}

func (s *contestService) UpdateParticipantRole(ctx context.Context, contestID, targetUserID int, role models.ContestRole, actorID int) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	contest, err := s.getContest(ctx, contestID)
	if err != nil {
		return err
	}

	caps, err := s.authorizer.CapabilitiesFor(ctx, contest, actorID)
	if err != nil {
		return err
	}
	if !caps.Can(CapManageMembers) {
		return ErrForbiddenOperation
	}

	if err := s.participantRepo.UpdateRole(ctx, contestID, targetUserID, role); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrNotParticipant
		}
		return fmt.Errorf("failed to update participant role: %w", err)
	}
	return nil
}

func (s *contestService) AddMember(ctx context.Context, contestID, targetUserID int, role models.ContestRole, actorID int) (*models.Participant, error) {
	if role == "" {
		role = models.RoleParticipant
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	contest, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	caps, err := s.authorizer.CapabilitiesFor(ctx, contest, actorID)
	if err != nil {
		return nil, err
	}
	if !caps.Can(CapManageMembers) {
		return nil, ErrForbiddenOperation
	}

	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	participant := &models.Participant{
		UserID:    targetUserID,
		ContestID: contestID,
		Role:      role,
	}
	if err := s.participantRepo.Add(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return participant, nil
}

func (s *contestService) RemoveMember(ctx context.Context, contestID, targetUserID, actorID int) error {
	contest, err := s.getContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.CreatedBy == targetUserID {
		return ErrCreatorCannotBeRemoved
	}

	caps, err := s.authorizer.CapabilitiesFor(ctx, contest, actorID)
	if err != nil {
		return err
	}
	if !caps.Can(CapManageMembers) {
		return ErrForbiddenOperation
	}

	target, err := s.participantRepo.Get(ctx, contestID, targetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrNotParticipant
		}
		return err
	}
	if target.Role == models.RoleOrganizer && !caps.Can(CapRemoveOrganizer) {
		return ErrOnlyCreatorRemovesOrg
	}

	if err := s.participantRepo.Remove(ctx, contestID, targetUserID); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrNotParticipant
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (s *contestService) getContest(ctx context.Context, id int) (*models.Contest, error) {
	contest, err := s.contestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	return contest, nil
}

func (s *contestService) requireView(ctx context.Context, contest *models.Contest, actorID int) error {
	caps, err := s.authorizer.CapabilitiesFor(ctx, contest, actorID)
	if err != nil {
		return err
	}
	if !caps.Can(CapView) {
		return ErrForbiddenOperation
	}
	return nil
}

func (s *contestService) uploadProfileImage(ctx context.Context, contest *models.Contest, image *ImageUpload) error {
	if !strings.HasPrefix(image.ContentType, "image/") {
		return ErrInvalidImageUpload
	}
	ext, err := extensionFromContentType(image.ContentType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImageUpload, err)
	}

	oldKey := contest.ProfileImgKey
	key := fmt.Sprintf("contests/%d/profile%s", contest.ID, ext)

	if _, err := s.uploader.Upload(ctx, key, image.ContentType, image.Reader); err != nil {
		return fmt.Errorf("failed to upload contest profile image: %w", err)
	}
	if err := s.contestRepo.UpdateProfileImgKey(ctx, contest.ID, &key); err != nil {
		return err
	}
	contest.ProfileImgKey = &key

	if oldKey != nil && *oldKey != "" && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced contest image",
				slog.Int("contest_id", contest.ID), slog.Any("error", delErr))
		}
	}
	return nil
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type %q", contentType)
	}
}
