package handlers

import (
	"net/http"

	"github.com/tasknet/contest-system/middleware"
	"github.com/tasknet/contest-system/repositories"
	"github.com/tasknet/contest-system/services"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var input services.CreateTaskInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), contestID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusCreated, task, "task created successfully")
}

func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	task, err := h.taskService.GetByID(r.Context(), taskID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, task, "")
}

func (h *TaskHandler) ListByContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	page := readIntQuery(r, "page", 1)
	limit := readIntQuery(r, "limit", 10)

	tasks, total, err := h.taskService.ListByContest(r.Context(), contestID, page, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"tasks": tasks,
		"total": total,
	}, "")
}

// List is the flat task listing with an optional contest_id filter.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTasksFilter{
		Limit:  readIntQuery(r, "limit", 10),
		Offset: 0,
	}
	if page := readIntQuery(r, "page", 1); page > 1 {
		filter.Offset = (page - 1) * filter.Limit
	}
	if contestID := readIntQuery(r, "contest_id", 0); contestID > 0 {
		filter.ContestID = &contestID
	}

	tasks, total, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"tasks": tasks,
		"total": total,
	}, "")
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateTaskInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), taskID, contestID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, task, "task updated successfully")
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	taskID, err := readIntParam(r, "task_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, contestID, userID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "task deleted successfully")
}
