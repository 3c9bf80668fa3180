package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
	"github.com/cued-ai/rehearsal-platform/pkg/metrics"
)

// DocumentHandler handles script upload endpoints.
type DocumentHandler struct {
	service        *service.DocumentService
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc *service.DocumentService, maxUploadBytes int64, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		logger:         log,
	}
}

// Parse handles POST /api/v1/documents/parse
func (h *DocumentHandler) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+4096) // headroom for multipart framing

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		metrics.UploadsTotal.WithLabelValues("too_large").Inc()
		writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("missing").Inc()
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		metrics.UploadsTotal.WithLabelValues("too_large").Inc()
		writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	text, err := h.service.Extract(r.Context(), contentType, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPDFUnsupported),
			errors.Is(err, service.ErrDOCXUnsupported),
			errors.Is(err, service.ErrUnsupportedType):
			metrics.UploadsTotal.WithLabelValues("unsupported").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("document parsing failed", zap.Error(err))
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, "Failed to parse document")
		}
		return
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, model.ParseDocumentResponse{
		Text:     text,
		Filename: header.Filename,
	})
}
