package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/llm"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

// Typed rejections for unsupported uploads. The handler turns these into 400s
// with the guidance text intact.
var (
	ErrPDFUnsupported  = errors.New("PDF parsing requires additional setup. Please convert to .txt format or paste the text directly.")
	ErrDOCXUnsupported = errors.New("DOCX parsing requires additional setup. Please convert to .txt format or paste the text directly.")
	ErrUnsupportedType = errors.New("Unsupported file type")
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocumentService extracts rehearsal-ready text from uploaded scripts. Only
// plain text is supported; PDF and DOCX are rejected with guidance.
type DocumentService struct {
	llmClient llm.Client // nil when no provider is configured
	maxTokens int
	logger    *logger.Logger
}

// NewDocumentService creates a document service. llmClient may be nil.
func NewDocumentService(llmClient llm.Client, maxTokens int, log *logger.Logger) *DocumentService {
	return &DocumentService{
		llmClient: llmClient,
		maxTokens: maxTokens,
		logger:    log,
	}
}

// Extract reads a plain-text script and, when a model is configured, runs a
// formatting cleanup pass over it. Cleanup failure is not an error; the raw
// text is returned instead.
func (s *DocumentService) Extract(ctx context.Context, contentType string, r io.Reader) (string, error) {
	switch contentType {
	case "application/pdf":
		return "", ErrPDFUnsupported
	case docxContentType:
		return "", ErrDOCXUnsupported
	case "text/plain":
	default:
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	text := string(data)

	if s.llmClient != nil && text != "" {
		if cleaned, err := s.formatScript(ctx, text); err == nil {
			return cleaned, nil
		} else {
			s.logger.Warn("script formatting failed, using original text", zap.Error(err))
		}
	}

	return text, nil
}

func (s *DocumentService) formatScript(ctx context.Context, text string) (string, error) {
	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		System: llm.ScriptFormatPrompt(),
		Messages: []llm.ChatMessage{{
			Role:    "user",
			Content: "Please clean and format this script/text for rehearsal:\n\n" + text,
		}},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
