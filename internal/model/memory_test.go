package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cued-ai/rehearsal-platform/internal/model"
)

func TestRecentPlaysBoundAndDedup(t *testing.T) {
	mem := model.DefaultMemory()

	plays := []string{"Hamlet", "Macbeth", "Hamlet", "Proof", "Wicked", "Our Town", "Doubt"}
	for _, p := range plays {
		mem.Merge(model.MemoryUpdates{Play: p})
	}

	assert.LessOrEqual(t, len(mem.RecentPlays), model.MaxRecentPlays)
	assert.Equal(t, []string{"Doubt", "Our Town", "Wicked", "Proof", "Hamlet"}, mem.RecentPlays)

	// Repeated inserts of one title never create duplicates.
	for i := 0; i < 10; i++ {
		mem.Merge(model.MemoryUpdates{Play: "Hamlet"})
	}
	assert.Equal(t, "Hamlet", mem.RecentPlays[0])
	seen := map[string]bool{}
	for _, p := range mem.RecentPlays {
		assert.False(t, seen[p], "duplicate %q", p)
		seen[p] = true
	}
}

func TestFavoriteGenresBound(t *testing.T) {
	mem := model.DefaultMemory()

	for _, g := range []string{"Shakespeare", "Musical", "Shakespeare", "Comedy", "Drama"} {
		mem.Merge(model.MemoryUpdates{Genre: g})
	}

	assert.Equal(t, []string{"Shakespeare", "Musical", "Comedy"}, mem.FavoriteGenres)
	assert.Equal(t, "Drama", mem.LastGenre)
}

func TestMergeSkipsEmptyFields(t *testing.T) {
	mem := model.DefaultMemory()
	mem.LastCharacter = "Ophelia"
	mem.LastPlay = "Hamlet"

	mem.Merge(model.MemoryUpdates{Genre: "Shakespeare"})

	assert.Equal(t, "Ophelia", mem.LastCharacter)
	assert.Equal(t, "Hamlet", mem.LastPlay)
	assert.Equal(t, "Shakespeare", mem.LastGenre)
}

func TestDefaultMemoryPreferences(t *testing.T) {
	mem := model.DefaultMemory()

	assert.True(t, mem.Preferences.VoiceEnabled)
	assert.True(t, mem.Preferences.AutoScroll)
	assert.True(t, mem.Preferences.ShowSuggestions)
	assert.Zero(t, mem.TotalSessions)
	assert.Nil(t, mem.LastSessionDate)
}

func TestUserMemoryRoundTrip(t *testing.T) {
	mem := model.DefaultMemory()
	mem.Merge(model.MemoryUpdates{Play: "Macbeth", Genre: "Shakespeare", Character: "Banquo", RehearsalType: "scene"})
	mem.TotalSessions = 7

	data, err := json.Marshal(mem)
	require.NoError(t, err)

	var got model.UserMemory
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, mem, got)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "New Conversation", model.DeriveTitle(""))
	assert.Equal(t, "short message", model.DeriveTitle("short message"))

	long := "This opening message is definitely longer than fifty characters in total length"
	title := model.DeriveTitle(long)
	assert.Len(t, []rune(title), model.TitleMaxLen+3)
	assert.Equal(t, "...", title[len(title)-3:])
}
