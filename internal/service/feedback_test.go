package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cued-ai/rehearsal-platform/internal/model"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
)

func newFeedbackService(client *fakeLLM) *service.FeedbackService {
	if client == nil {
		// A typed nil pointer would not compare equal to a nil interface.
		return service.NewFeedbackService(nil, firstPicker{}, 200, logger.NewNop())
	}
	return service.NewFeedbackService(client, firstPicker{}, 200, logger.NewNop())
}

func TestFeedbackRemote(t *testing.T) {
	client := &fakeLLM{reply: "Lovely pacing. Let the question hang a beat longer."}
	svc := newFeedbackService(client)

	got := svc.Feedback(context.Background(), model.FeedbackRequest{
		Line: &model.ScriptLine{Speaker: "Juliet", Text: "Wherefore art thou Romeo?"},
		Mode: "self",
	})

	assert.Equal(t, client.reply, got)
	require.NotNil(t, client.lastReq)
	assert.Contains(t, client.lastReq.Messages[0].Content, "Juliet")
}

func TestFeedbackCannedCategories(t *testing.T) {
	svc := newFeedbackService(nil)

	tests := []struct {
		name string
		req  model.FeedbackRequest
		want string
	}{
		{
			name: "prompt mode gets memory coaching",
			req: model.FeedbackRequest{
				Line: &model.ScriptLine{Speaker: "Hamlet", Text: "To be or not to be"},
				Mode: "prompt",
			},
			want: "Good effort! The more you practice, the more natural it will become.",
		},
		{
			name: "question mark gets character coaching",
			req: model.FeedbackRequest{
				Line: &model.ScriptLine{Speaker: "Juliet", Text: "Wherefore art thou Romeo?"},
				Mode: "self",
			},
			want: "Think about your character's motivation in this moment. What do they want?",
		},
		{
			name: "long line gets technique coaching",
			req: model.FeedbackRequest{
				Line: &model.ScriptLine{Speaker: "Macbeth", Text: "Tomorrow and tomorrow and tomorrow creeps in this petty pace from day to day"},
				Mode: "partner",
			},
			want: "Remember to breathe and support your voice from your diaphragm.",
		},
		{
			name: "short statement gets delivery coaching",
			req: model.FeedbackRequest{
				Line: &model.ScriptLine{Speaker: "Banquo", Text: "It will be rain tonight."},
				Mode: "self",
			},
			want: "Great delivery! Try varying your pace to add more emotional depth to this line.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Feedback(context.Background(), tt.req)

			assert.Contains(t, got, tt.want)
			assert.Contains(t, got, "Remember, you're playing "+tt.req.Line.Speaker)
		})
	}
}

func TestFeedbackRemoteFailureUsesCannedNote(t *testing.T) {
	client := &fakeLLM{err: errors.New("timeout")}
	svc := newFeedbackService(client)

	got := svc.Feedback(context.Background(), model.FeedbackRequest{
		Line: &model.ScriptLine{Speaker: "Ophelia", Text: "Good night, sweet prince?"},
		Mode: "self",
	})

	assert.Contains(t, got, "Remember, you're playing Ophelia")
}
