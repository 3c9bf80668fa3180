package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cued-ai/rehearsal-platform/internal/dispatch"
	"github.com/cued-ai/rehearsal-platform/internal/llm"
	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/internal/storage"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

// fakeLLM scripts the remote model: either a fixed reply or a fixed error.
type fakeLLM struct {
	reply string
	err   error

	lastReq *llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply, Model: "fake"}, nil
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return []string{"fake"} }

type firstPicker struct{}

func (firstPicker) Intn(n int) int { return 0 }

func newChatService(t *testing.T, client llm.Client) (*service.ChatService, *service.ConversationService) {
	t.Helper()
	conversations := newService(t, storage.NewMemoryKV())
	dispatcher := dispatch.NewWithPicker(firstPicker{})
	return service.NewChatService(conversations, dispatcher, client, 1024, logger.NewNop()), conversations
}

func TestRespondWithoutLLMUsesDispatcher(t *testing.T) {
	ctx := context.Background()
	chat, conversations := newChatService(t, nil)

	resp, err := chat.Respond(ctx, model.ChatRequest{Message: "Let's rehearse the balcony scene from Romeo and Juliet"})
	require.NoError(t, err)

	assert.Equal(t, model.SourceScriptDatabase, resp.Source)
	assert.Contains(t, resp.Response, "Romeo and Juliet")
	require.NotNil(t, resp.MemoryUpdates)
	assert.Equal(t, "Romeo and Juliet", resp.MemoryUpdates.Play)

	conv, err := conversations.Get(ctx, resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, model.SourceScriptDatabase, conv.Messages[1].Source)
}

func TestRespondRemoteSuccess(t *testing.T) {
	ctx := context.Background()
	client := &fakeLLM{reply: "Wonderful energy! Try leaning into the pause before the kiss."}
	chat, conversations := newChatService(t, client)

	resp, err := chat.Respond(ctx, model.ChatRequest{Message: "How should I play the balcony scene in Romeo and Juliet?"})
	require.NoError(t, err)

	assert.Equal(t, model.SourceRemote, resp.Source)
	assert.Equal(t, client.reply, resp.Response)

	conv, err := conversations.Get(ctx, resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.SourceRemote, conv.Messages[1].Source)

	// The remote request carries the persona and the conversation history.
	require.NotNil(t, client.lastReq)
	assert.NotEmpty(t, client.lastReq.System)
	require.Len(t, client.lastReq.Messages, 1)
	assert.Equal(t, "user", client.lastReq.Messages[0].Role)
}

func TestRespondRemoteFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	client := &fakeLLM{err: errors.New("connection refused")}
	chat, conversations := newChatService(t, client)

	// Scenario: the provider is down. The caller must still get a reply,
	// tagged as a fallback, and no error may escape.
	resp, err := chat.Respond(ctx, model.ChatRequest{Message: "Tell me about Hamlet please"})
	require.NoError(t, err)

	assert.Equal(t, model.SourceFallback, resp.Source)
	assert.NotEmpty(t, resp.Response)

	conv, err := conversations.Get(ctx, resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.SourceFallback, conv.Messages[1].Source)
}

func TestRespondContinuesCurrentConversation(t *testing.T) {
	ctx := context.Background()
	chat, _ := newChatService(t, nil)

	first, err := chat.Respond(ctx, model.ChatRequest{Message: "hello there"})
	require.NoError(t, err)

	second, err := chat.Respond(ctx, model.ChatRequest{Message: "let's practice a monologue"})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func TestRespondExplicitConversationID(t *testing.T) {
	ctx := context.Background()
	chat, conversations := newChatService(t, nil)

	first, err := chat.Respond(ctx, model.ChatRequest{Message: "hello there"})
	require.NoError(t, err)

	conversations.StartNew(ctx)

	resp, err := chat.Respond(ctx, model.ChatRequest{
		Message:        "back to our earlier scene",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, resp.ConversationID)
}

func TestRespondUnknownConversationStartsFresh(t *testing.T) {
	ctx := context.Background()
	chat, conversations := newChatService(t, nil)

	resp, err := chat.Respond(ctx, model.ChatRequest{
		Message:        "hello",
		ConversationID: "long-gone",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "long-gone", resp.ConversationID)
	_, err = conversations.Get(ctx, resp.ConversationID)
	assert.NoError(t, err)
}
