package handlers

import (
	"net/http"

	"github.com/tasknet/contest-system/middleware"
	"github.com/tasknet/contest-system/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, user, "")
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := readIntQuery(r, "page", 1)
	limit := readIntQuery(r, "limit", 10)

	users, total, err := h.userService.List(r.Context(), page, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	}, "")
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	input := services.SearchUsersInput{
		Term:  r.URL.Query().Get("q"),
		Page:  readIntQuery(r, "page", 1),
		Limit: readIntQuery(r, "limit", 10),
	}

	users, total, err := h.userService.Search(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, jsonResponse{
		"users": users,
		"total": total,
	}, "")
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input.FirstName, input.LastName)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, user, "profile updated successfully")
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	successResponse(w, http.StatusOK, nil, "account deleted successfully")
}
