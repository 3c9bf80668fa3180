package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

// FeedbackHandler handles the line-by-line rehearsal feedback endpoint.
type FeedbackHandler struct {
	service *service.FeedbackService
	logger  *logger.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(svc *service.FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: svc,
		logger:  log,
	}
}

// Feedback handles POST /api/v1/rehearsal/feedback
func (h *FeedbackHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req model.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Line == nil {
		writeError(w, http.StatusBadRequest, "Line is required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid practice mode")
		return
	}

	writeJSON(w, http.StatusOK, model.FeedbackResponse{
		Feedback: h.service.Feedback(r.Context(), req),
	})
}
