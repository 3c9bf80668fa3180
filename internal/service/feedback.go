package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/dispatch"
	"github.com/cued-ai/rehearsal-platform/internal/llm"
	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

// Canned coaching notes used when the remote model is unavailable, keyed by
// the kind of note the line calls for.
var feedbackResponses = map[string][]string{
	"delivery": {
		"Great delivery! Try varying your pace to add more emotional depth to this line.",
		"Nice work! Consider where you might add pauses for dramatic effect.",
		"Excellent! Think about the subtext - what is your character really trying to say?",
		"Good job! Try experimenting with different vocal tones to match your character's emotion.",
	},
	"character": {
		"Think about your character's motivation in this moment. What do they want?",
		"Consider your character's relationship with the other person in this scene.",
		"What happened to your character right before this line? How does that affect their delivery?",
		"Great! Try to embody your character's physicality as you speak this line.",
	},
	"technique": {
		"Remember to breathe and support your voice from your diaphragm.",
		"Try to connect with the emotional truth of the line.",
		"Consider the rhythm and musicality of the language.",
		"Think about your character's objective - what are they trying to achieve?",
	},
	"memory": {
		"Good effort! The more you practice, the more natural it will become.",
		"You're getting there! Try breaking the line into smaller chunks to memorize.",
		"Nice work! Consider the logical flow of the dialogue to help with memorization.",
		"Keep practicing! Try to understand the meaning behind each word.",
	},
}

// FeedbackService produces per-line coaching notes during line-by-line
// rehearsal.
type FeedbackService struct {
	llmClient llm.Client // nil when no provider is configured
	picker    dispatch.Picker
	maxTokens int
	logger    *logger.Logger
}

// NewFeedbackService creates a feedback service. llmClient may be nil.
func NewFeedbackService(llmClient llm.Client, picker dispatch.Picker, maxTokens int, log *logger.Logger) *FeedbackService {
	return &FeedbackService{
		llmClient: llmClient,
		picker:    picker,
		maxTokens: maxTokens,
		logger:    log,
	}
}

// Feedback returns a coaching note for the delivered line. The remote model
// is tried once when configured; any failure degrades to a canned note keyed
// by the line's characteristics. This never fails.
func (s *FeedbackService) Feedback(ctx context.Context, req model.FeedbackRequest) string {
	if s.llmClient != nil {
		if text, err := s.remoteFeedback(ctx, req); err == nil {
			return text
		} else {
			s.logger.Warn("remote feedback failed, using canned note", zap.Error(err))
		}
	}
	return s.cannedFeedback(req)
}

func (s *FeedbackService) remoteFeedback(ctx context.Context, req model.FeedbackRequest) (string, error) {
	var contextLines []string
	for _, l := range req.Context {
		contextLines = append(contextLines, fmt.Sprintf("%s: %s", l.Speaker, l.Text))
	}
	contextBlock := "No additional context"
	if len(contextLines) > 0 {
		contextBlock = strings.Join(contextLines, "\n")
	}

	prompt := fmt.Sprintf(`Please provide acting feedback for this line:

Speaker: %s
Line: %q
Practice Mode: %s
Context: %s

Give specific, helpful feedback for the actor.`, req.Line.Speaker, req.Line.Text, req.Mode, contextBlock)

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		System:    llm.FeedbackSystemPrompt(),
		Messages:  []llm.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *FeedbackService) cannedFeedback(req model.FeedbackRequest) string {
	category := "delivery"
	switch {
	case req.Mode == "prompt":
		category = "memory"
	case strings.Contains(req.Line.Text, "?"):
		category = "character"
	case len(req.Line.Text) > 50:
		category = "technique"
	}

	options := feedbackResponses[category]
	note := options[s.picker.Intn(len(options))]

	return fmt.Sprintf("%s Remember, you're playing %s - think about what drives them in this moment.", note, req.Line.Speaker)
}
