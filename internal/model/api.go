package model

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Message        string `json:"message" validate:"required,max=100000"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the chat endpoint's reply.
type ChatResponse struct {
	Response       string         `json:"response"`
	Source         string         `json:"source"`
	ConversationID string         `json:"conversation_id,omitempty"`
	MemoryUpdates  *MemoryUpdates `json:"memory_updates,omitempty"`
}

// CreateConversationRequest is the request to create a new conversation.
type CreateConversationRequest struct {
	Message string `json:"message" validate:"required,max=100000"`
}

// AppendMessageRequest adds a message to an existing conversation without
// triggering a reply, e.g. importing a line the user delivered off-platform.
// Role defaults to user.
type AppendMessageRequest struct {
	Role    Role   `json:"role" validate:"omitempty,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=100000"`
}

// RenameConversationRequest is the request to rename a conversation.
type RenameConversationRequest struct {
	Title string `json:"title" validate:"required,max=256"`
}

// SwitchConversationRequest selects the current conversation. An empty ID
// starts fresh (the landing state).
type SwitchConversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	CurrentID     string         `json:"current_id,omitempty"`
	Total         int            `json:"total"`
}

// ScriptLine is one line of dialogue in a rehearsal.
type ScriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// FeedbackRequest asks for coaching feedback on a delivered line.
type FeedbackRequest struct {
	Line    *ScriptLine  `json:"line" validate:"required"`
	Context []ScriptLine `json:"context,omitempty"`
	Mode    string       `json:"mode" validate:"omitempty,oneof=self partner prompt"`
}

// FeedbackResponse carries the coaching note.
type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

// ParseDocumentResponse is the result of a script upload.
type ParseDocumentResponse struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// SubscribeRequest is a mailing-list signup.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}
