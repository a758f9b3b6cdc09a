package handler

import (
	"net/http"

	"codeprep/internal/api/middleware"
	"codeprep/internal/app/service"
	"codeprep/internal/common"
	"codeprep/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	guard            *middleware.AuthGuard
}

func NewAnalyticsHandler(as *service.AnalyticsService, guard *middleware.AuthGuard) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as, guard: guard}
}

func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.Use(h.guard.RequireRole(model.AdminRoles...))
	r.Get("/", h.getAnalytics)
}

func (h *AnalyticsHandler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analyticsService.Get(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snapshot)
}
