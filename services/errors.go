package services

import "errors"

// Shared sentinels for the service layer and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrSearchTermRequired  = errors.New("search term is required")
	ErrInvalidRole         = errors.New("invalid contest role")
	ErrInvalidDifficulty   = errors.New("invalid difficulty level, must be: easy, medium, or hard")
	ErrNegativePoints      = errors.New("points must be a non-negative number")
	ErrInvalidStatus       = errors.New("invalid status, must be one of: pending, on_going, completed")
	ErrAnswerRequired      = errors.New("answer is required and must be a non-empty string")
	ErrAlreadyCompleted    = errors.New("task has already been completed successfully")
	ErrAlreadyParticipant  = errors.New("user is already a participant in this contest")
	ErrNotParticipant      = errors.New("user is not a participant in this contest")
	ErrContestHasNoTasks   = errors.New("no tasks found for this contest")
	ErrInvalidImageUpload  = errors.New("profile image must be an image file")
	ErrContestDatesInvalid = errors.New("contest end date must be after start date")

	// Conflicts
	ErrUserEmailConflict = errors.New("email address is already in use")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrContestPrivate         = errors.New("this contest is private")
	ErrCreatorCannotLeave     = errors.New("contest creator cannot leave their own contest")
	ErrCreatorCannotBeRemoved = errors.New("contest creator cannot be removed")
	ErrOnlyCreatorRemovesOrg  = errors.New("only the contest creator can remove an organizer")
	ErrTaskCreatorOnly        = errors.New("only the task creator can modify this task")

	// Entity-specific not-found (more context than the generic ErrNotFound)
	ErrUserNotFound     = errors.New("user not found")
	ErrContestNotFound  = errors.New("contest not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrUserTaskNotFound = errors.New("user task assignment not found")
)
