package handler

import (
	"net/http"

	"codeprep/internal/api/middleware"
	"codeprep/internal/app/service"
	"codeprep/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	guard       *middleware.AuthGuard
}

func NewAuthHandler(as *service.AuthService, guard *middleware.AuthGuard) *AuthHandler {
	return &AuthHandler{authService: as, guard: guard}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.guard.Authenticate)
	r.Get("/me", h.me)
}

// me returns the mirrored account for the verified identity. It is a
// 404 until the provider webhook has delivered the user.
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), providerID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
