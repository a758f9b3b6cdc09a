package handler

import (
	"encoding/json"
	"net/http"

	"codeprep/internal/api/middleware"
	"codeprep/internal/app/service"
	"codeprep/internal/common"
	"codeprep/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
	guard       *middleware.AuthGuard
}

func NewUserHandler(us *service.UserService, guard *middleware.AuthGuard) *UserHandler {
	return &UserHandler{userService: us, guard: guard}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.Use(h.guard.RequireRole(model.AdminRoles...))
	r.Get("/", h.listUsers)
	r.Put("/{userID}", h.updateUserRole)
	r.Delete("/{userID}", h.deleteUser)
}

type userListResponse struct {
	Users      []model.User      `json:"users"`
	Pagination common.Pagination `json:"pagination"`
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	role := r.URL.Query().Get("role")
	search := r.URL.Query().Get("search")

	users, total, err := h.userService.List(r.Context(), page, limit, role, search)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, userListResponse{
		Users:      users,
		Pagination: common.NewPagination(page, limit, total),
	})
}

func (h *UserHandler) updateUserRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req struct {
		Role model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	updated, err := h.userService.UpdateRole(r.Context(), caller, chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.userService.Delete(r.Context(), caller, chi.URLParam(r, "userID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
