package handlers

import (
	"net/http"

	"github.com/tasknet/contest-system/middleware"
	"github.com/tasknet/contest-system/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) ContestOverall(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	stats, err := h.statsService.ContestOverallStats(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, stats, "")
}

func (h *StatsHandler) ContestTasks(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	stats, err := h.statsService.ContestTaskStats(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, stats, "")
}

func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	contestID, err := readIntParam(r, "contest_id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	page := readIntQuery(r, "page", 1)
	limit := readIntQuery(r, "limit", 10)

	leaderboard, err := h.statsService.Leaderboard(r.Context(), contestID, page, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, leaderboard, "")
}

// MyTaskProgress returns the authenticated user's per-task progress within a
// contest, including unassigned tasks with empty progress.
func (h *StatsHandler) MyTaskProgress(w http.ResponseWriter, r *http.Request) {
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

	progress, err := h.statsService.UserTaskProgress(r.Context(), userID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, progress, "")
}

func (h *StatsHandler) MyContestStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.statsService.UserContestStats(r.Context(), userID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, stats, "")
}

func (h *StatsHandler) UserTaskProgress(w http.ResponseWriter, r *http.Request) {
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

	progress, err := h.statsService.UserTaskProgress(r.Context(), targetUserID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, progress, "")
}

func (h *StatsHandler) UserContestStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.statsService.UserContestStats(r.Context(), targetUserID, contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, stats, "")
}
