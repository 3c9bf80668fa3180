package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

// SubscribeHandler handles mailing-list signups.
type SubscribeHandler struct {
	service *service.SubscribeService
	logger  *logger.Logger
}

// NewSubscribeHandler creates a new subscribe handler.
func NewSubscribeHandler(svc *service.SubscribeService, log *logger.Logger) *SubscribeHandler {
	return &SubscribeHandler{
		service: svc,
		logger:  log,
	}
}

// Subscribe handles POST /api/v1/subscribe
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	if err := h.service.Subscribe(r.Context(), req.Email); err != nil {
		h.logger.Error("subscription failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
