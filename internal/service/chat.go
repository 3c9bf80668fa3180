package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/dispatch"
	"github.com/cued-ai/rehearsal-platform/internal/llm"
	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
	"github.com/cued-ai/rehearsal-platform/pkg/metrics"
)

// historyLimit caps how many prior messages are forwarded to the remote model.
const historyLimit = 50

// ChatService orchestrates a chat turn: append the user message, produce a
// reply (remote model when configured, local dispatcher otherwise or on
// failure), append the reply, and surface any memory updates.
type ChatService struct {
	conversations *ConversationService
	dispatcher    *dispatch.Dispatcher
	llmClient     llm.Client // nil when no provider is configured
	maxTokens     int
	logger        *logger.Logger
}

// NewChatService creates a chat service. llmClient may be nil.
func NewChatService(
	conversations *ConversationService,
	dispatcher *dispatch.Dispatcher,
	llmClient llm.Client,
	maxTokens int,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		dispatcher:    dispatcher,
		llmClient:     llmClient,
		maxTokens:     maxTokens,
		logger:        log,
	}
}

// Respond handles one user message end to end. It never returns an upstream
// error: any remote failure degrades to the local dispatcher. The returned
// response always carries some reply text.
func (s *ChatService) Respond(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	userMsg := model.Message{
		Role:    model.RoleUser,
		Content: req.Message,
	}

	conv, err := s.targetConversation(ctx, req.ConversationID, userMsg)
	if err != nil {
		return model.ChatResponse{}, err
	}

	text, source, updates := s.generateReply(ctx, conv)

	if !updates.IsEmpty() {
		s.conversations.MergeMemory(ctx, updates)
	}

	reply := model.Message{
		Role:    model.RoleAssistant,
		Content: text,
		Source:  source,
	}
	// The reply is appended only if its conversation still exists; a
	// completion resolving after the user deleted the conversation is
	// discarded rather than resurrecting it.
	if _, err := s.conversations.AddMessage(ctx, conv.ID, reply); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			s.logger.Info("discarding reply for deleted conversation",
				zap.String("conversation_id", conv.ID),
			)
		} else {
			s.logger.Warn("failed to append reply", zap.Error(err))
		}
	}

	resp := model.ChatResponse{
		Response:       text,
		Source:         source,
		ConversationID: conv.ID,
	}
	if !updates.IsEmpty() {
		resp.MemoryUpdates = &updates
	}
	return resp, nil
}

// targetConversation appends the user message to the requested conversation,
// falling back to the current one, creating a new conversation when neither
// exists.
func (s *ChatService) targetConversation(ctx context.Context, conversationID string, userMsg model.Message) (*model.Conversation, error) {
	if conversationID == "" {
		conversationID = s.conversations.CurrentID()
	}

	if conversationID != "" {
		if _, err := s.conversations.AddMessage(ctx, conversationID, userMsg); err == nil {
			return s.conversations.Get(ctx, conversationID)
		}
	}

	return s.conversations.Create(ctx, userMsg)
}

// generateReply tries the remote model first when one is configured. A single
// attempt, no retry: on any error it falls through to the dispatcher and tags
// the reply as a fallback so the UI can indicate degraded mode.
func (s *ChatService) generateReply(ctx context.Context, conv *model.Conversation) (string, string, model.MemoryUpdates) {
	mem := s.conversations.Memory()
	lastUser := lastUserContent(conv)

	if s.llmClient != nil {
		start := time.Now()
		resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
			System:    llm.BuildSystemPrompt(mem),
			Messages:  historyFor(conv),
			MaxTokens: s.maxTokens,
		})
		if err == nil {
			metrics.RecordCompletion(s.llmClient.Name(), "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
			return resp.Content, model.SourceRemote, memoryHints(conv)
		}

		metrics.RecordCompletion(s.llmClient.Name(), "error", time.Since(start).Seconds(), 0, 0)
		metrics.CompletionFallbacks.Inc()
		s.logger.Warn("remote completion failed, falling back to dispatcher",
			zap.String("provider", s.llmClient.Name()),
			zap.Error(err),
		)

		result := s.dispatcher.Dispatch(lastUser, mem)
		metrics.DispatchTotal.WithLabelValues(result.Source).Inc()
		return result.Text, model.SourceFallback, result.MemoryUpdates
	}

	result := s.dispatcher.Dispatch(lastUser, mem)
	metrics.DispatchTotal.WithLabelValues(result.Source).Inc()
	return result.Text, result.Source, result.MemoryUpdates
}

// historyFor converts the conversation tail into the LLM wire shape.
func historyFor(conv *model.Conversation) []llm.ChatMessage {
	msgs := conv.Messages
	if len(msgs) > historyLimit {
		msgs = msgs[len(msgs)-historyLimit:]
	}

	out := make([]llm.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = llm.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

func lastUserContent(conv *model.Conversation) string {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].IsFromUser() {
			return conv.Messages[i].Content
		}
	}
	return ""
}

// memoryHints lifts the conversation's freshly inferred fields into a memory
// update so the remote path personalizes future sessions too.
func memoryHints(conv *model.Conversation) model.MemoryUpdates {
	return model.MemoryUpdates{
		Character:     conv.LastCharacter,
		Play:          conv.LastPlay,
		Genre:         conv.LastGenre,
		RehearsalType: conv.RehearsalType,
	}
}
