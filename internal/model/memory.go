package model

import (
	"time"
)

// Bounds for the rolling personalization lists.
const (
	MaxRecentPlays    = 5
	MaxFavoriteGenres = 3
)

// Preferences holds UI preferences persisted alongside memory.
type Preferences struct {
	VoiceEnabled    bool `json:"voice_enabled"`
	AutoScroll      bool `json:"auto_scroll"`
	ShowSuggestions bool `json:"show_suggestions"`
}

// UserMemory is durable, cross-session personalization state inferred from
// past messages. It is never authoritative: the extraction heuristics that
// feed it are pattern matching, not language understanding.
type UserMemory struct {
	TotalSessions   int         `json:"total_sessions"`
	LastSessionDate *time.Time  `json:"last_session_date,omitempty"`
	LastCharacter   string      `json:"last_character,omitempty"`
	LastPlay        string      `json:"last_play,omitempty"`
	LastGenre       string      `json:"last_genre,omitempty"`
	RehearsalType   string      `json:"rehearsal_type,omitempty"`
	FavoriteScenes  []string    `json:"favorite_scenes,omitempty"`
	RecentPlays     []string    `json:"recent_plays,omitempty"`
	FavoriteGenres  []string    `json:"favorite_genres,omitempty"`
	Preferences     Preferences `json:"preferences"`
}

// MemoryUpdates is a partial UserMemory produced by the extractor or the
// dispatcher. Empty fields mean "no change".
type MemoryUpdates struct {
	Character     string `json:"character,omitempty"`
	Play          string `json:"play,omitempty"`
	Genre         string `json:"genre,omitempty"`
	RehearsalType string `json:"rehearsal_type,omitempty"`
}

// IsEmpty reports whether the update carries no changes.
func (u MemoryUpdates) IsEmpty() bool {
	return u == MemoryUpdates{}
}

// DefaultMemory returns the zero-state memory used on first run and after a
// reset.
func DefaultMemory() UserMemory {
	return UserMemory{
		Preferences: Preferences{
			VoiceEnabled:    true,
			AutoScroll:      true,
			ShowSuggestions: true,
		},
	}
}

// Merge applies a partial update, maintaining the list bounds: RecentPlays is
// most-recent-first with no duplicates and at most MaxRecentPlays entries;
// FavoriteGenres holds at most MaxFavoriteGenres distinct genres.
func (m *UserMemory) Merge(u MemoryUpdates) {
	if u.Character != "" {
		m.LastCharacter = u.Character
	}
	if u.Play != "" {
		m.LastPlay = u.Play
		m.RecentPlays = pushRecent(m.RecentPlays, u.Play, MaxRecentPlays)
	}
	if u.Genre != "" {
		m.LastGenre = u.Genre
		if !contains(m.FavoriteGenres, u.Genre) && len(m.FavoriteGenres) < MaxFavoriteGenres {
			m.FavoriteGenres = append(m.FavoriteGenres, u.Genre)
		}
	}
	if u.RehearsalType != "" {
		m.RehearsalType = u.RehearsalType
	}
}

// pushRecent prepends v, removing any prior occurrence and trimming to max.
func pushRecent(list []string, v string, max int) []string {
	out := make([]string, 0, max)
	out = append(out, v)
	for _, s := range list {
		if s == v {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
