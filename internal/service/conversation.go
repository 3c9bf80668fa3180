// Package service provides the business logic for the rehearsal platform.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/memory"
	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/storage"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
	"github.com/cued-ai/rehearsal-platform/pkg/metrics"
)

// ErrConversationNotFound is returned for lookups of unknown or deleted
// conversations.
var ErrConversationNotFound = errors.New("conversation not found")

// conversationState is the document persisted under the conversations key.
type conversationState struct {
	Conversations []*model.Conversation `json:"conversations"`
	CurrentID     string                `json:"current_id,omitempty"`
}

// ConversationService owns the conversation list, the notion of a "current"
// conversation, and the user memory. Every mutation persists the full state
// to the KV store; writes are whole-document and last-write-wins.
type ConversationService struct {
	kv     storage.KV
	logger *logger.Logger

	mu            sync.RWMutex
	conversations []*model.Conversation // most-recent-first
	currentID     string
	memory        model.UserMemory
}

// NewConversationService creates the service and loads persisted state.
// Malformed stored JSON is discarded in favor of defaults; first run starts
// empty. Neither case is an error.
func NewConversationService(ctx context.Context, kv storage.KV, log *logger.Logger) *ConversationService {
	s := &ConversationService{
		kv:     kv,
		logger: log,
		memory: model.DefaultMemory(),
	}
	s.load(ctx)
	return s
}

func (s *ConversationService) load(ctx context.Context) {
	if data, err := s.kv.Get(ctx, storage.KeyConversations); err == nil {
		var state conversationState
		if err := json.Unmarshal(data, &state); err != nil {
			s.logger.Warn("discarding corrupt conversation state", zap.Error(err))
		} else {
			s.conversations = state.Conversations
			s.currentID = state.CurrentID
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		s.logger.Warn("failed to load conversations", zap.Error(err))
	}

	if data, err := s.kv.Get(ctx, storage.KeyMemory); err == nil {
		var mem model.UserMemory
		if err := json.Unmarshal(data, &mem); err != nil {
			s.logger.Warn("discarding corrupt user memory", zap.Error(err))
		} else {
			s.memory = mem
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		s.logger.Warn("failed to load user memory", zap.Error(err))
	}
}

// Create starts a new conversation seeded with the first user message, makes
// it current, and counts a new session in user memory.
func (s *ConversationService) Create(ctx context.Context, first model.Message) (*model.Conversation, error) {
	now := time.Now()

	conv := &model.Conversation{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Title:     model.DeriveTitle(first.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	s.memory.TotalSessions++
	s.memory.LastSessionDate = &now
	s.appendLocked(conv, first)
	s.persistLocked(ctx)
	copied := *conv
	copied.Messages = append([]model.Message(nil), conv.Messages...)
	s.mu.Unlock()

	metrics.ConversationsTotal.Inc()
	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("title", conv.Title),
	)

	return &copied, nil
}

// AddMessage appends a message to the target conversation (the current one
// when conversationID is empty). User-authored messages additionally run the
// memory extractor and merge the result into both the conversation's inferred
// fields and the global user memory.
func (s *ConversationService) AddMessage(ctx context.Context, conversationID string, msg model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID == "" {
		conversationID = s.currentID
	}
	conv := s.findLocked(conversationID)
	if conv == nil {
		return model.Message{}, ErrConversationNotFound
	}

	stored := s.appendLocked(conv, msg)
	s.persistLocked(ctx)
	return stored, nil
}

// appendLocked does the actual append plus bookkeeping. Caller holds the lock.
func (s *ConversationService) appendLocked(conv *model.Conversation, msg model.Message) model.Message {
	if msg.ID == "" {
		msg.ID = uuid.Must(uuid.NewV7()).String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.ConversationID = conv.ID

	conv.Messages = append(conv.Messages, msg)
	conv.Preview = msg.Content
	conv.UpdatedAt = msg.CreatedAt

	if msg.IsFromUser() {
		updates := memory.Extract(msg.Content)
		if updates.Character != "" {
			conv.LastCharacter = updates.Character
		}
		if updates.Play != "" {
			conv.LastPlay = updates.Play
		}
		if updates.Genre != "" {
			conv.LastGenre = updates.Genre
		}
		if updates.RehearsalType != "" {
			conv.RehearsalType = updates.RehearsalType
		}
		s.memory.Merge(updates)
	}

	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
	return msg
}

// Get retrieves a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	copied := *conv
	copied.Messages = append([]model.Message(nil), conv.Messages...)
	return &copied, nil
}

// List returns all conversations, most recently created first, along with the
// current conversation ID.
func (s *ConversationService) List(ctx context.Context) ([]model.Conversation, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = *conv
		out[i].Messages = append([]model.Message(nil), conv.Messages...)
	}
	return out, s.currentID
}

// SwitchTo makes the given conversation current. An empty ID clears the
// current conversation (the landing state).
func (s *ConversationService) SwitchTo(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID != "" && s.findLocked(conversationID) == nil {
		return ErrConversationNotFound
	}
	s.currentID = conversationID
	s.persistLocked(ctx)
	return nil
}

// StartNew clears the current conversation without creating one; the next
// chat message creates a fresh conversation.
func (s *ConversationService) StartNew(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentID = ""
	s.persistLocked(ctx)
}

// CurrentID returns the ID of the current conversation, empty if none.
func (s *ConversationService) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Rename updates a conversation's title.
func (s *ConversationService) Rename(ctx context.Context, conversationID, title string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	conv.Title = title
	conv.UpdatedAt = time.Now()
	s.persistLocked(ctx)

	copied := *conv
	return &copied, nil
}

// Delete removes a conversation. Deleting the current conversation resets
// current to the landing state.
func (s *ConversationService) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == conversationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.currentID == conversationID {
		s.currentID = ""
	}
	s.persistLocked(ctx)
	return nil
}

// ClearAll removes every conversation and the persisted conversations key.
// User memory survives; clearing it is a separate, explicit action.
func (s *ConversationService) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	s.currentID = ""
	if err := s.kv.Delete(ctx, storage.KeyConversations); err != nil {
		s.logger.Warn("failed to clear persisted conversations", zap.Error(err))
	}
}

// Memory returns a snapshot of the user memory.
func (s *ConversationService) Memory() model.UserMemory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mem := s.memory
	mem.FavoriteScenes = append([]string(nil), s.memory.FavoriteScenes...)
	mem.RecentPlays = append([]string(nil), s.memory.RecentPlays...)
	mem.FavoriteGenres = append([]string(nil), s.memory.FavoriteGenres...)
	return mem
}

// MergeMemory applies a partial update to the user memory and persists it.
func (s *ConversationService) MergeMemory(ctx context.Context, updates model.MemoryUpdates) {
	if updates.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory.Merge(updates)
	s.persistMemoryLocked(ctx)
}

// ResetMemory restores the default memory and persists it.
func (s *ConversationService) ResetMemory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = model.DefaultMemory()
	s.persistMemoryLocked(ctx)
}

func (s *ConversationService) findLocked(conversationID string) *model.Conversation {
	if conversationID == "" {
		return nil
	}
	for _, conv := range s.conversations {
		if conv.ID == conversationID {
			return conv
		}
	}
	return nil
}

// persistLocked writes both documents. Persistence failures are logged, not
// returned: nothing in this system is fatal and in-memory state stays
// authoritative until the next successful write.
func (s *ConversationService) persistLocked(ctx context.Context) {
	state := conversationState{
		Conversations: s.conversations,
		CurrentID:     s.currentID,
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("failed to marshal conversation state", zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, storage.KeyConversations, data); err != nil {
		s.logger.Warn("failed to persist conversations", zap.Error(err))
	}
	s.persistMemoryLocked(ctx)
}

func (s *ConversationService) persistMemoryLocked(ctx context.Context) {
	data, err := json.Marshal(s.memory)
	if err != nil {
		s.logger.Warn("failed to marshal user memory", zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, storage.KeyMemory, data); err != nil {
		s.logger.Warn("failed to persist user memory", zap.Error(err))
	}
}
