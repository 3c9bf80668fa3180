// Package model defines data structures for the rehearsal platform.
package model

import (
	"time"
	"unicode/utf8"
)

// TitleMaxLen bounds conversation titles derived from the first message.
const TitleMaxLen = 50

// Conversation represents one rehearsal session: an append-only, time-ordered
// sequence of messages plus fields inferred from the user's phrasing.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Inferred from user messages, best effort.
	LastCharacter string `json:"last_character,omitempty"`
	LastPlay      string `json:"last_play,omitempty"`
	LastGenre     string `json:"last_genre,omitempty"`
	RehearsalType string `json:"rehearsal_type,omitempty"`
}

// DeriveTitle builds a conversation title from its first message.
func DeriveTitle(content string) string {
	if content == "" {
		return "New Conversation"
	}
	if utf8.RuneCountInString(content) <= TitleMaxLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:TitleMaxLen]) + "..."
}
