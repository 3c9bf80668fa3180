// Package knowledge holds the static script database: the plays the coach
// knows well enough to answer about without a remote model.
package knowledge

import (
	"strings"
)

// Scene describes a well-known scene with per-character coaching notes.
type Scene struct {
	Act         string
	Description string
	Coaching    map[string]string
}

// Play is the metadata the coach keeps for a known play.
type Play struct {
	Title      string
	Characters []string
	Scenes     map[string]Scene
	Themes     []string
	Style      string
}

// playOrder fixes the match order so a message mentioning several titles
// always resolves to the same play.
var playOrder = []string{"romeo and juliet", "hamlet", "macbeth"}

// plays is keyed by the lowercase form matched against user text.
var plays = map[string]Play{
	"romeo and juliet": {
		Title:      "Romeo and Juliet",
		Characters: []string{"Romeo", "Juliet", "Mercutio", "Nurse", "Friar Lawrence"},
		Scenes: map[string]Scene{
			"balcony scene": {
				Act:         "Act 2, Scene 2",
				Description: "The famous balcony scene where Romeo and Juliet declare their love",
				Coaching: map[string]string{
					"Romeo":  "Focus on the poetry and passion. Romeo is young, impulsive, and completely smitten. Let the language flow naturally - Shakespeare's iambic pentameter should feel like heightened speech, not forced poetry.",
					"Juliet": "Balance innocence with intelligence. Juliet is practical even in love - she's the one who brings up marriage. Show her quick wit and emotional maturity.",
				},
			},
		},
		Themes: []string{"love", "fate", "youth", "family conflict"},
		Style:  "Shakespearean tragedy with romantic elements",
	},
	"hamlet": {
		Title:      "Hamlet",
		Characters: []string{"Hamlet", "Claudius", "Gertrude", "Ophelia", "Polonius"},
		Scenes: map[string]Scene{
			"to be or not to be": {
				Act:         "Act 3, Scene 1",
				Description: "Hamlet's famous soliloquy contemplating life and death",
				Coaching: map[string]string{
					"Hamlet": "This isn't just about suicide - it's about action vs. inaction. Hamlet is a philosopher trapped in a revenge plot. Build the argument logically, let each thought lead to the next.",
				},
			},
		},
		Themes: []string{"revenge", "madness", "mortality", "duty"},
		Style:  "Shakespearean tragedy with psychological depth",
	},
	"macbeth": {
		Title:      "Macbeth",
		Characters: []string{"Macbeth", "Lady Macbeth", "Duncan", "Banquo", "Macduff"},
		Scenes: map[string]Scene{
			"sleepwalking scene": {
				Act:         "Act 5, Scene 1",
				Description: "Lady Macbeth's guilt-ridden sleepwalking scene",
				Coaching: map[string]string{
					"Lady Macbeth": "She's completely broken down. The control she once had is gone. Play the fragmentation - her mind jumps between memories. The blood she sees isn't there, but it's completely real to her.",
				},
			},
		},
		Themes: []string{"ambition", "guilt", "power", "supernatural"},
		Style:  "Dark Shakespearean tragedy",
	},
}

// Lookup scans the message for a known play title. Matching is
// case-insensitive substring containment; absence is not an error, the caller
// simply moves on to a more generic response path.
func Lookup(message string) (string, Play, bool) {
	lower := strings.ToLower(message)
	for _, key := range playOrder {
		if strings.Contains(lower, key) {
			return key, plays[key], true
		}
	}
	return "", Play{}, false
}

// Get returns a play by its lowercase key.
func Get(key string) (Play, bool) {
	p, ok := plays[key]
	return p, ok
}

// Titles returns the display titles of all known plays, in match order.
func Titles() []string {
	out := make([]string, 0, len(playOrder))
	for _, k := range playOrder {
		out = append(out, plays[k].Title)
	}
	return out
}

// Keys returns the lowercase match keys of all known plays, in match order.
func Keys() []string {
	return append([]string(nil), playOrder...)
}
