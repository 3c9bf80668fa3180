package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cued-ai/rehearsal-platform/internal/dispatch"
	"github.com/cued-ai/rehearsal-platform/internal/handler"
	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/internal/storage"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

type firstPicker struct{}

func (firstPicker) Intn(n int) int { return 0 }

const maxUpload = 10 * 1024 * 1024

func newRouter(t *testing.T) (chi.Router, *service.ConversationService) {
	t.Helper()

	log := logger.NewNop()
	conversations := service.NewConversationService(context.Background(), storage.NewMemoryKV(), log)
	dispatcher := dispatch.NewWithPicker(firstPicker{})
	chat := service.NewChatService(conversations, dispatcher, nil, 1024, log)
	feedback := service.NewFeedbackService(nil, firstPicker{}, 200, log)
	documents := service.NewDocumentService(nil, 2000, log)
	subscribe := service.NewSubscribeService(log)

	chatHandler := handler.NewChatHandler(chat, log)
	conversationHandler := handler.NewConversationHandler(conversations, log)
	documentHandler := handler.NewDocumentHandler(documents, maxUpload, log)
	feedbackHandler := handler.NewFeedbackHandler(feedback, log)
	subscribeHandler := handler.NewSubscribeHandler(subscribe, log)

	r := chi.NewRouter()
	r.Post("/api/v1/chat", chatHandler.Send)
	r.Post("/api/v1/conversations", conversationHandler.Create)
	r.Get("/api/v1/conversations", conversationHandler.List)
	r.Delete("/api/v1/conversations", conversationHandler.ClearAll)
	r.Post("/api/v1/conversations/current", conversationHandler.Switch)
	r.Get("/api/v1/conversations/{id}", conversationHandler.Get)
	r.Put("/api/v1/conversations/{id}", conversationHandler.Rename)
	r.Delete("/api/v1/conversations/{id}", conversationHandler.Delete)
	r.Get("/api/v1/conversations/{id}/messages", conversationHandler.Messages)
	r.Post("/api/v1/conversations/{id}/messages", conversationHandler.AppendMessage)
	r.Post("/api/v1/documents/parse", documentHandler.Parse)
	r.Post("/api/v1/rehearsal/feedback", feedbackHandler.Feedback)
	r.Post("/api/v1/subscribe", subscribeHandler.Subscribe)

	return r, conversations
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatReturnsResponse(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/chat", model.ChatRequest{Message: "Let's rehearse the balcony scene from Romeo and Juliet"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.SourceScriptDatabase, resp.Source)
	assert.Contains(t, resp.Response, "Romeo and Juliet")
	assert.NotEmpty(t, resp.ConversationID)
}

func TestChatMissingMessage(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/chat", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Message is required"}`, rec.Body.String())
}

func TestConversationLifecycle(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/conversations", model.CreateConversationRequest{Message: "working on my Hamlet monologue"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var conv model.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	require.NotEmpty(t, conv.ID)

	// Rename
	rec = httptest.NewRecorder()
	body, _ := json.Marshal(model.RenameConversationRequest{Title: "Hamlet work"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/conversations/"+conv.ID, bytes.NewReader(body))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Messages
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hamlet monologue")

	// Delete
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/"+conv.ID, nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Gone
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+conv.ID, nil)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppendMessage(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/conversations", model.CreateConversationRequest{Message: "first line"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var conv model.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))

	rec = postJSON(t, r, "/api/v1/conversations/"+conv.ID+"/messages", model.AppendMessageRequest{
		Content: "O Romeo, Romeo! wherefore art thou Romeo?",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg model.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, model.RoleUser, msg.Role)
	assert.NotEmpty(t, msg.ID)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)

	// Unknown conversation
	rec = postJSON(t, r, "/api/v1/conversations/"+uuid.NewString()+"/messages", model.AppendMessageRequest{Content: "line"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationInvalidID(t *testing.T) {
	r, _ := newRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/not-a-uuid", nil)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearAllConversations(t *testing.T) {
	r, _ := newRouter(t)

	postJSON(t, r, "/api/v1/chat", model.ChatRequest{Message: "hello"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/conversations", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListConversationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Conversations)
	assert.Zero(t, resp.Total)
}

func uploadFile(t *testing.T, r http.Handler, filename, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestParseDocumentPlainText(t *testing.T) {
	r, _ := newRouter(t)

	script := "ROMEO: But, soft! what light through yonder window breaks?\nJULIET: Ay me!"
	rec := uploadFile(t, r, "balcony.txt", "text/plain", script)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ParseDocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, script, resp.Text)
	assert.Equal(t, "balcony.txt", resp.Filename)
}

func TestParseDocumentRejectsPDF(t *testing.T) {
	r, _ := newRouter(t)

	rec := uploadFile(t, r, "script.pdf", "application/pdf", "%PDF-1.4 fake")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "convert to .txt")
}

func TestParseDocumentRejectsDOCX(t *testing.T) {
	r, _ := newRouter(t)

	rec := uploadFile(t, r, "script.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "fake docx")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "convert to .txt")
}

func TestParseDocumentRejectsUnknownType(t *testing.T) {
	r, _ := newRouter(t)

	rec := uploadFile(t, r, "photo.png", "image/png", "not text")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file type")
}

func TestParseDocumentRejectsOversizeFile(t *testing.T) {
	r, _ := newRouter(t)

	big := strings.Repeat("a", maxUpload+1)
	rec := uploadFile(t, r, "epic.txt", "text/plain", big)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"File too large. Maximum size is 10MB."}`, rec.Body.String())
}

func TestParseDocumentMissingFile(t *testing.T) {
	r, _ := newRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file provided")
}

func TestFeedbackEndpoint(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/rehearsal/feedback", model.FeedbackRequest{
		Line: &model.ScriptLine{Speaker: "Juliet", Text: "Wherefore art thou Romeo?"},
		Mode: "self",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.FeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Feedback, "Remember, you're playing Juliet")
}

func TestFeedbackMissingLine(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/rehearsal/feedback", map[string]string{"mode": "self"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Line is required")
}

func TestSubscribeValidEmail(t *testing.T) {
	r, _ := newRouter(t)

	rec := postJSON(t, r, "/api/v1/subscribe", model.SubscribeRequest{Email: "actor@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestSubscribeInvalidEmail(t *testing.T) {
	r, _ := newRouter(t)

	for _, email := range []string{"not-an-email", "", "@", "missing-at.example.com"} {
		rec := postJSON(t, r, "/api/v1/subscribe", model.SubscribeRequest{Email: email})
		require.Equal(t, http.StatusBadRequest, rec.Code, "email %q", email)
		assert.JSONEq(t, `{"error":"Valid email is required"}`, rec.Body.String())
	}
}

func TestSwitchConversation(t *testing.T) {
	r, conversations := newRouter(t)

	rec := postJSON(t, r, "/api/v1/chat", model.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var chatResp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chatResp))

	// Back to the landing state.
	rec = postJSON(t, r, "/api/v1/conversations/current", model.SwitchConversationRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, conversations.CurrentID())

	// And forward again.
	rec = postJSON(t, r, "/api/v1/conversations/current", model.SwitchConversationRequest{ConversationID: chatResp.ConversationID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chatResp.ConversationID, conversations.CurrentID())

	// Unknown IDs are rejected.
	rec = postJSON(t, r, "/api/v1/conversations/current", model.SwitchConversationRequest{ConversationID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
