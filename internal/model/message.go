package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Source tags identify which path produced an assistant reply.
const (
	SourceScriptDatabase    = "script_database"
	SourceCharacterCoaching = "character_coaching"
	SourceRehearsalCoaching = "rehearsal_coaching"
	SourceFallback          = "fallback"
	SourceRemote            = "remote"
	SourceError             = "error"
)

// Message represents a single conversation message. Messages are immutable
// once appended to a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsFromUser reports whether the message was authored by the user.
func (m Message) IsFromUser() bool {
	return m.Role == RoleUser
}
