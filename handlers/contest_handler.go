package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tasknet/contest-system/middleware"
	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
	"github.com/tasknet/contest-system/services"
)

const maxUploadSize = 10 << 20 // 10MB

type ContestHandler struct {
	contestService services.ContestService
}

func NewContestHandler(contestService services.ContestService) *ContestHandler {
	return &ContestHandler{contestService: contestService}
}

func (h *ContestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateContestInput
	image, cleanup, err := h.decodePayload(w, r, func() error {
		input.Title = r.FormValue("title")
		if v := r.FormValue("is_public"); v != "" {
			isPublic, parseErr := strconv.ParseBool(v)
			if parseErr != nil {
				return fmt.Errorf("invalid is_public value %q", v)
			}
			input.IsPublic = &isPublic
		}
		var parseErr error
		if input.StartsAt, parseErr = parseFormTime(r, "starts_at"); parseErr != nil {
			return parseErr
		}
		if input.EndsAt, parseErr = parseFormTime(r, "ends_at"); parseErr != nil {
			return parseErr
		}
		return nil
	}, &input)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	defer cleanup()

	contest, err := h.contestService.Create(r.Context(), userID, input, image)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusCreated, contest, "contest created successfully")
}

func (h *ContestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID := middleware.OptionalUserID(r.Context())

	contest, err := h.contestService.GetByID(r.Context(), contestID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, contest, "")
}

func (h *ContestHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	contestSlug := chi.URLParam(r, "slug")
	if contestSlug == "" {
		badRequestResponse(w, errors.New("invalid slug parameter"))
		return
	}
	actorID := middleware.OptionalUserID(r.Context())

	contest, err := h.contestService.GetBySlug(r.Context(), contestSlug, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, contest, "")
}

// List returns contests filtered by is_public and created_by query
// parameters. Anonymous callers are always restricted to public rows.
func (h *ContestHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, middleware.OptionalUserID(r.Context()) == 0)
}

// ListPublic serves the public listing regardless of any visibility filter.
func (h *ContestHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ContestHandler) list(w http.ResponseWriter, r *http.Request, forcePublic bool) {
	limit := readIntQuery(r, "limit", 10)
	page := readIntQuery(r, "page", 1)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	filter := repositories.ListContestsFilter{
		IsPublic: readBoolQuery(r, "is_public"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if createdBy := readIntQuery(r, "created_by", 0); createdBy > 0 {
		filter.CreatedBy = &createdBy
	}
	if forcePublic {
		isPublic := true
		filter.IsPublic = &isPublic
	}

	contests, total, err := h.contestService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"contests": contests,
		"total":    total,
		"page":     page,
		"limit":    limit,
	}, "")
}

func (h *ContestHandler) ListCreated(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	contests, err := h.contestService.ListCreated(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, contests, "")
}

func (h *ContestHandler) ListJoined(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	contests, err := h.contestService.ListJoined(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, contests, "")
}

func (h *ContestHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateContestInput
	image, cleanup, err := h.decodePayload(w, r, func() error {
		if v := r.FormValue("title"); v != "" {
			input.Title = &v
		}
		if v := r.FormValue("is_public"); v != "" {
			isPublic, parseErr := strconv.ParseBool(v)
			if parseErr != nil {
				return fmt.Errorf("invalid is_public value %q", v)
			}
			input.IsPublic = &isPublic
		}
		var parseErr error
		if input.StartsAt, parseErr = parseFormTime(r, "starts_at"); parseErr != nil {
			return parseErr
		}
		if input.EndsAt, parseErr = parseFormTime(r, "ends_at"); parseErr != nil {
			return parseErr
		}
		return nil
	}, &input)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	defer cleanup()

	contest, err := h.contestService.Update(r.Context(), contestID, userID, input, image)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, contest, "contest updated successfully")
}

func (h *ContestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.contestService.Delete(r.Context(), contestID, userID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "contest deleted successfully")
}

func (h *ContestHandler) Participants(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID := middleware.OptionalUserID(r.Context())

	participants, err := h.contestService.Participants(r.Context(), contestID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, participants, "")
}

func (h *ContestHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Role models.ContestRole `json:"role"`
	}
	// An empty body means joining as a plain participant.
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, err)
			return
		}
	}

	participant, err := h.contestService.Join(r.Context(), contestID, userID, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusCreated, participant, "joined contest successfully")
}

func (h *ContestHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.contestService.Leave(r.Context(), contestID, userID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "left contest successfully")
}

func (h *ContestHandler) UpdateParticipantRole(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	targetUserID, err := readIntParam(r, "user_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Role models.ContestRole `json:"role"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.contestService.UpdateParticipantRole(r.Context(), contestID, targetUserID, input.Role, actorID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "participant role updated successfully")
}

func (h *ContestHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		UserID int                `json:"user_id"`
		Role   models.ContestRole `json:"role"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.UserID < 1 {
		badRequestResponse(w, errors.New("user_id is required"))
		return
	}

	participant, err := h.contestService.AddMember(r.Context(), contestID, input.UserID, input.Role, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusCreated, participant, "member added successfully")
}

func (h *ContestHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	targetUserID, err := readIntParam(r, "user_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.contestService.RemoveMember(r.Context(), contestID, targetUserID, actorID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "member removed successfully")
}

// decodePayload reads either a JSON body into dst or a multipart form through
// formFields, returning the attached profile image when one was sent. The
// returned cleanup closes the uploaded file and is safe to call always.
func (h *ContestHandler) decodePayload(w http.ResponseWriter, r *http.Request, formFields func() error, dst interface{}) (*services.ImageUpload, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if r.ContentLength == 0 {
			return nil, noop, nil
		}
		if err := readJSON(w, r, dst); err != nil {
			return nil, noop, err
		}
		return nil, noop, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, noop, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	if err := formFields(); err != nil {
		return nil, noop, err
	}

	file, header, err := r.FormFile("profile_img")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("failed to read profile_img: %w", err)
	}

	image := &services.ImageUpload{
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return image, func() { _ = file.Close() }, nil
}

func parseFormTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q, expected RFC3339", name, raw)
	}
	return &t, nil
}
