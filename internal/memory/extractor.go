// Package memory infers personalization hints from free-form user text.
//
// Everything here is regex and substring heuristics over raw phrasing. It is
// deliberately imprecise: false positives and misses are expected noise for a
// cosmetic feature, not bugs.
package memory

import (
	"regexp"
	"strings"

	"github.com/cued-ai/rehearsal-platform/internal/knowledge"
	"github.com/cued-ai/rehearsal-platform/internal/model"
)

var (
	characterPattern = regexp.MustCompile(`(?i)\b(?:i'm|i am|playing|rehearsing)(?:\s+(?:playing|rehearsing))?\s+([a-z][a-z']*(?:\s+[a-z][a-z']*)?)\s+(?:from|in)\b`)
	playPattern      = regexp.MustCompile(`(?i)\b(?:from|in)\s+((?:[a-z][a-z']*\s*){1,4})$`)
)

// knownCharacters are matched as substrings when the phrase patterns miss.
// Two-word names come first so "lady macbeth" wins over "macbeth".
var knownCharacters = []string{
	"lady macbeth",
	"friar lawrence",
	"romeo",
	"juliet",
	"mercutio",
	"hamlet",
	"ophelia",
	"claudius",
	"gertrude",
	"macbeth",
	"banquo",
	"macduff",
}

var rehearsalTypes = []string{"monologue", "scene", "improv", "character"}

// Extract runs all four heuristics over the message. The heuristics are
// independent: each returns its own optional field and none depends on
// another's outcome.
func Extract(text string) model.MemoryUpdates {
	lower := strings.ToLower(text)

	return model.MemoryUpdates{
		Character:     extractCharacter(text, lower),
		Play:          extractPlay(text, lower),
		Genre:         extractGenre(lower),
		RehearsalType: extractRehearsalType(lower),
	}
}

func extractCharacter(text, lower string) string {
	if m := characterPattern.FindStringSubmatch(text); m != nil {
		return titleCase(strings.TrimSpace(m[1]))
	}
	for _, name := range knownCharacters {
		if strings.Contains(lower, name) {
			return titleCase(name)
		}
	}
	return ""
}

func extractPlay(text, lower string) string {
	for _, key := range knowledge.Keys() {
		if strings.Contains(lower, key) {
			play, _ := knowledge.Get(key)
			return play.Title
		}
	}
	if m := playPattern.FindStringSubmatch(strings.TrimRight(text, ".!? ")); m != nil {
		return titleCase(strings.TrimSpace(m[1]))
	}
	return ""
}

func extractGenre(lower string) string {
	if strings.Contains(lower, "shakespeare") {
		return "Shakespeare"
	}
	for _, key := range knowledge.Keys() {
		if strings.Contains(lower, key) {
			return "Shakespeare"
		}
	}
	switch {
	case strings.Contains(lower, "musical"), strings.Contains(lower, "song"):
		return "Musical"
	case strings.Contains(lower, "comedy"):
		return "Comedy"
	case strings.Contains(lower, "drama"):
		return "Drama"
	}
	return ""
}

func extractRehearsalType(lower string) string {
	for _, t := range rehearsalTypes {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "and" || w == "of" || w == "the" {
			if i > 0 {
				continue
			}
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
