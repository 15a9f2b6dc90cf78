package handlers

import (
	"net/http"

	"github.com/tasknet/contest-system/middleware"
	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/services"
)

type UserTaskHandler struct {
	userTaskService services.UserTaskService
}

func NewUserTaskHandler(userTaskService services.UserTaskService) *UserTaskHandler {
	return &UserTaskHandler{userTaskService: userTaskService}
}

// BulkAssign gives the authenticated user every task of the contest.
func (h *UserTaskHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.userTaskService.BulkAssign(r.Context(), userID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusCreated, result, "tasks assigned successfully")
}

func (h *UserTaskHandler) AssignOne(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Status models.UserTaskStatus `json:"status"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, err)
			return
		}
	}

	assignment, existing, err := h.userTaskService.AssignOne(r.Context(), userID, taskID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if existing {
		successResponse(w, http.StatusOK, assignment, "task already assigned")
		return
	}
	successResponse(w, http.StatusCreated, assignment, "task assigned successfully")
}

func (h *UserTaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	assignment, err := h.userTaskService.Get(r.Context(), userID, taskID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, assignment, "")
}

func (h *UserTaskHandler) ListByContest(w http.ResponseWriter, r *http.Request) {
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

	assignments, err := h.userTaskService.ListByContest(r.Context(), userID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, assignments, "")
}

// ListAll returns every assignment of the authenticated user across contests.
func (h *UserTaskHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	page := readIntQuery(r, "page", 1)
	limit := readIntQuery(r, "limit", 10)

	assignments, total, err := h.userTaskService.ListAll(r.Context(), userID, page, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"user_tasks": assignments,
		"total":      total,
	}, "")
}

func (h *UserTaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateStatusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.userTaskService.UpdateStatus(r.Context(), userID, taskID, input); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "status updated successfully")
}

func (h *UserTaskHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Answer string `json:"answer"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.userTaskService.SubmitAnswer(r.Context(), userID, taskID, input.Answer)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	message := "incorrect answer, try again"
	if result.IsCorrect {
		message = "correct answer, task completed"
	}
	successResponse(w, http.StatusOK, result, message)
}

func (h *UserTaskHandler) GetAnswer(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	answer, err := h.userTaskService.GetAnswer(r.Context(), userID, taskID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, answer, "")
}

func (h *UserTaskHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	hasAccess, err := h.userTaskService.HasAccess(r.Context(), userID, taskID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"user_id":    userID,
		"task_id":    taskID,
		"has_access": hasAccess,
	}, "")
}

func (h *UserTaskHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.userTaskService.Remove(r.Context(), userID, taskID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "assignment removed successfully")
}
