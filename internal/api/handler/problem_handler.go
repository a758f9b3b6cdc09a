package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codeprep/internal/api/middleware"
	"codeprep/internal/app/service"
	"codeprep/internal/common"
	"codeprep/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
	guard          *middleware.AuthGuard
}

func NewProblemHandler(ps *service.ProblemService, guard *middleware.AuthGuard) *ProblemHandler {
	return &ProblemHandler{problemService: ps, guard: guard}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)
	r.Get("/{problemID}", h.getProblem)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(h.guard.Authenticate)
		adminRouter.Use(h.guard.RequireRole(model.AdminRoles...))
		adminRouter.Post("/", h.createProblem)
		adminRouter.Put("/{problemID}", h.updateProblem)
		adminRouter.Delete("/{problemID}", h.deleteProblem)
		adminRouter.Post("/batch-delete", h.batchDeleteProblems)
	})
}

type problemListResponse struct {
	Problems   []model.ProblemSummary `json:"problems"`
	Pagination common.Pagination      `json:"pagination"`
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	difficulty := r.URL.Query().Get("difficulty")
	search := r.URL.Query().Get("search")

	problems, total, err := h.problemService.List(r.Context(), page, limit, difficulty, search)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problemListResponse{
		Problems:   problems,
		Pagination: common.NewPagination(page, limit, total),
	})
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problemService.Get(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	problem, err := h.problemService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	var req service.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	problem, err := h.problemService.Update(r.Context(), chi.URLParam(r, "problemID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	if err := h.problemService.Delete(r.Context(), chi.URLParam(r, "problemID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Problem deleted successfully"})
}

func (h *ProblemHandler) batchDeleteProblems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		common.RespondWithError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	results := h.problemService.BatchDelete(r.Context(), req.IDs)
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"results": results})
}

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return page, limit
}
