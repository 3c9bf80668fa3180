// Package dispatch implements the keyword-driven response engine: the local
// coaching brain used whenever the remote model is unavailable or unconfigured.
package dispatch

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cued-ai/rehearsal-platform/internal/knowledge"
	"github.com/cued-ai/rehearsal-platform/internal/model"
)

// Picker selects an index in [0, n). Injectable so tests can pin selection.
type Picker interface {
	Intn(n int) int
}

// Result is a dispatched reply plus the memory changes it implies.
type Result struct {
	Text          string
	Source        string
	MemoryUpdates model.MemoryUpdates
}

// Dispatcher matches user text against known plays, characters, and topics
// and returns a canned coaching response. It cannot fail: every input lands
// in some category, the last being a generic fallback.
type Dispatcher struct {
	picker Picker
}

// TimePicker returns a time-seeded random picker.
func TimePicker() Picker {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// New creates a dispatcher with a time-seeded random picker.
func New() *Dispatcher {
	return NewWithPicker(TimePicker())
}

// NewWithPicker creates a dispatcher with a caller-supplied picker.
func NewWithPicker(p Picker) *Dispatcher {
	return &Dispatcher{picker: p}
}

// Dispatch produces a reply for the message. Category checks run in strict
// priority order; within a category selection is uniform random with no
// memory of prior picks, so repeats are expected.
func (d *Dispatcher) Dispatch(message string, mem model.UserMemory) Result {
	lower := strings.ToLower(message)

	if key, play, ok := knowledge.Lookup(message); ok {
		return d.scriptResponse(key, play)
	}

	for _, ck := range characterKeywords {
		if strings.Contains(lower, ck.keyword) {
			play, _ := knowledge.Get(ck.playKey)
			return d.characterResponse(play)
		}
	}

	if strings.Contains(lower, "rehearse") || strings.Contains(lower, "practice") {
		return Result{
			Text:   d.pick(rehearsalResponses),
			Source: model.SourceRehearsalCoaching,
		}
	}

	return d.fallbackResponse(message, lower)
}

func (d *Dispatcher) scriptResponse(key string, play knowledge.Play) Result {
	templates := []string{
		fmt.Sprintf("Excellent choice! %s is a masterpiece. What specific scene or character would you like to work on? I can help you with character development, scene analysis, or line delivery.", play.Title),
		fmt.Sprintf("Let's dive into %s! This %s offers incredible opportunities for character work. Which character speaks to you most?", play.Title, play.Style),
		fmt.Sprintf("Perfect! I love working on %s. The themes of %s make it so rich for actors. What aspect would you like to explore first?", play.Title, strings.Join(play.Themes[:2], " and ")),
	}

	genre := "Drama"
	if strings.Contains(play.Style, "Shakespeare") {
		genre = "Shakespeare"
	}

	return Result{
		Text:   d.pick(templates),
		Source: model.SourceScriptDatabase,
		MemoryUpdates: model.MemoryUpdates{
			Play:  play.Title,
			Genre: genre,
		},
	}
}

func (d *Dispatcher) characterResponse(play knowledge.Play) Result {
	responses, ok := characterResponses[play.Title]
	if !ok {
		responses = characterResponses["Hamlet"]
	}

	return Result{
		Text:   d.pick(responses),
		Source: model.SourceCharacterCoaching,
		MemoryUpdates: model.MemoryUpdates{
			Play:  play.Title,
			Genre: "Shakespeare",
		},
	}
}

func (d *Dispatcher) fallbackResponse(message, lower string) Result {
	if len(message) < 20 || strings.Contains(lower, "hello") || strings.Contains(lower, "hi") {
		return Result{
			Text:   d.pick(greetingResponses),
			Source: model.SourceFallback,
		}
	}
	return Result{
		Text:   d.pick(coachingResponses),
		Source: model.SourceFallback,
	}
}

func (d *Dispatcher) pick(options []string) string {
	return options[d.picker.Intn(len(options))]
}

// characterKeywords maps character names in user text to the play they belong
// to. Checked in order, only after full play-title matching has failed.
var characterKeywords = []struct {
	keyword string
	playKey string
}{
	{"romeo", "romeo and juliet"},
	{"juliet", "romeo and juliet"},
	{"hamlet", "hamlet"},
	{"macbeth", "macbeth"},
}

var characterResponses = map[string][]string{
	"Romeo and Juliet": {
		"Romeo and Juliet - such passionate, complex characters! Romeo's impulsiveness contrasts beautifully with Juliet's practicality. Which character are you working on, and what's challenging you about them?",
		"The balcony scene is iconic, but there's so much more to explore with these characters. Are you looking at their character development throughout the play, or focusing on a specific scene?",
		"These young lovers are dealing with such intense emotions and impossible circumstances. What draws you to this story? Let's explore their motivations together.",
	},
	"Hamlet": {
		"Hamlet is one of Shakespeare's most psychologically complex characters. He's a thinker forced into action, a philosopher in a revenge plot. What aspect of his character intrigues you most?",
		"The beauty of Hamlet is in his contradictions - he's decisive yet hesitant, loving yet cruel, sane yet mad. Which scenes are you working on? I can help you navigate his emotional journey.",
		"Hamlet's soliloquies are masterclasses in character development. Each one reveals a different facet of his personality. Are you working on a specific soliloquy or scene?",
	},
	"Macbeth": {
		"Macbeth and Lady Macbeth's relationship is fascinating - the shift in power dynamics as guilt consumes them. Which character are you focusing on?",
		"The supernatural elements in Macbeth create such an eerie atmosphere. How are you approaching the psychological deterioration of the characters?",
		"Ambition and guilt drive this entire play. The characters' moral decay is gradual but devastating. What scenes are you working on?",
	},
}

var rehearsalResponses = []string{
	"I'm excited to rehearse with you! What scene or monologue would you like to work on? I can play opposite you, give you line cues, or provide coaching on character development.",
	"Let's get started! Are you working on a specific script, or would you like me to suggest some great scenes for practice? I can adapt to any style - classical, contemporary, or experimental.",
	"Perfect! I'm here to be your scene partner and coach. What's your experience level, and what would you like to focus on today? Character work, line delivery, or maybe some improvisation exercises?",
}

var greetingResponses = []string{
	"Hello! I'm your AI rehearsal partner. I'm here to help you practice scenes, develop characters, and improve your acting technique. What would you like to work on today?",
	"Welcome to your personal acting studio! I can help you rehearse any script, work on character development, or practice specific techniques. What brings you here today?",
	"Hi there! Ready to dive into some character work? I'm equipped to help with everything from Shakespeare to contemporary drama. What's on your rehearsal list?",
}

var coachingResponses = []string{
	"That's an interesting approach! Let's explore that further. What specific aspect would you like to focus on? I can help with character motivation, emotional beats, or technical delivery.",
	"I love your enthusiasm! Character work is so rewarding. What's your process like? Do you prefer to start with the text, or do you like to explore the character's background first?",
	"Great question! Every actor has their own method. What techniques have you tried before? I can adapt to your preferred style and help you discover new approaches.",
}
