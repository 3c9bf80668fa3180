package llm

import (
	"strings"

	"github.com/cued-ai/rehearsal-platform/internal/model"
)

const coachSystemPrompt = `You are "Cued", an enthusiastic AI acting coach and rehearsal partner.

Your role:
- Help actors rehearse scenes, develop characters, and improve their technique.
- When asked, roleplay other characters in a scene so the actor can run lines against you.
- Give concise, actionable feedback: focus on motivation, emotional beats, and delivery.
- Be warm and encouraging, but specific. Two or three sentences of feedback beat a lecture.

Style:
- Keep replies short enough to read between takes.
- Reference the actor's rehearsal history when it is supplied below; returning actors should feel remembered.
- Never break character mid-scene unless the actor asks you to.`

// BuildSystemPrompt renders the coach persona, appending whatever rehearsal
// history is known so the model can personalize its replies.
func BuildSystemPrompt(mem model.UserMemory) string {
	var b strings.Builder
	b.WriteString(coachSystemPrompt)

	ctx := memoryContext(mem)
	if ctx != "" {
		b.WriteString("\n\nWhat you know about this actor:\n")
		b.WriteString(ctx)
	}

	return b.String()
}

func memoryContext(mem model.UserMemory) string {
	var lines []string

	if mem.TotalSessions > 0 {
		lines = append(lines, "- They have rehearsed with you before.")
	}
	if mem.LastPlay != "" {
		lines = append(lines, "- Last play they worked on: "+mem.LastPlay)
	}
	if mem.LastCharacter != "" {
		lines = append(lines, "- Last character they played: "+mem.LastCharacter)
	}
	if mem.LastGenre != "" {
		lines = append(lines, "- Preferred genre: "+mem.LastGenre)
	}
	if mem.RehearsalType != "" {
		lines = append(lines, "- Usual rehearsal style: "+mem.RehearsalType)
	}
	if len(mem.RecentPlays) > 0 {
		lines = append(lines, "- Recent plays: "+strings.Join(mem.RecentPlays, ", "))
	}

	return strings.Join(lines, "\n")
}

const scriptFormatPrompt = `You are a script formatting assistant. Clean up and format the provided text to make it suitable for line-by-line rehearsal.

Rules:
- Preserve all dialogue and speaker names
- Format speaker names consistently (SPEAKER: dialogue)
- Remove excessive whitespace but preserve line breaks between speakers
- Keep stage directions and scene descriptions
- Don't change the actual content, just clean up formatting
- If it's a song, preserve verse/chorus structure`

// ScriptFormatPrompt is the system prompt for the document-cleanup pass.
func ScriptFormatPrompt() string {
	return scriptFormatPrompt
}

const feedbackSystemPrompt = `You are an experienced acting coach providing helpful, encouraging feedback for rehearsal.

Your role:
- Give constructive, specific feedback about line delivery
- Focus on character motivation, emotion, and technique
- Be encouraging and supportive
- Keep feedback concise (2-3 sentences max)
- Consider the context of surrounding lines
- Adapt advice based on the practice mode

Practice modes:
- "self": User is practicing their own lines
- "partner": User is practicing as scene partner
- "prompt": User is testing their memory

Always be positive and constructive.`

// FeedbackSystemPrompt is the system prompt for line-by-line feedback.
func FeedbackSystemPrompt() string {
	return feedbackSystemPrompt
}
