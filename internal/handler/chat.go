// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

// apologyResponse is returned when even the fallback path blows up. The show
// must go on.
const apologyResponse = "I'm having a moment of stage fright! Let's try that scene again."

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: log,
	}
}

// Send handles POST /api/v1/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "message exceeds maximum length")
		return
	}

	resp, err := h.chat.Respond(r.Context(), req)
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ChatResponse{
			Response: apologyResponse,
			Source:   model.SourceError,
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
