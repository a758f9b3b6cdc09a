package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"codeprep/internal/app/service"
	"codeprep/internal/common"
	"codeprep/internal/common/security"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	webhookService *service.WebhookService
	verifier       *security.WebhookVerifier
}

func NewWebhookHandler(ws *service.WebhookService, verifier *security.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{webhookService: ws, verifier: verifier}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/identity", h.handleIdentityEvent)
}

func (h *WebhookHandler) handleIdentityEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Unreadable webhook body")
		return
	}
	defer r.Body.Close()

	err = h.verifier.Verify(
		r.Header.Get("webhook-id"),
		r.Header.Get("webhook-timestamp"),
		r.Header.Get("webhook-signature"),
		body,
		time.Now(),
	)
	if err != nil {
		zap.S().Warnw("identity webhook signature verification failed", "error", err)
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	var event service.IdentityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if err := h.webhookService.ProcessEvent(r.Context(), event); err != nil {
		zap.S().Errorw("identity webhook processing failed",
			"type", event.Type, "provider_id", event.Data.ID, "error", err)
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{})
}
