package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

func TestWebhookEvent_TriggersSync(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected bool
	}{
		{
			name:     "Push to main",
			event:    &model.WebhookEvent{Type: model.EventTypePush, Ref: "refs/heads/main"},
			expected: true,
		},
		{
			name:     "Push to another branch",
			event:    &model.WebhookEvent{Type: model.EventTypePush, Ref: "refs/heads/dev"},
			expected: false,
		},
		{
			name:     "Tag push",
			event:    &model.WebhookEvent{Type: model.EventTypePush, Ref: "refs/tags/main"},
			expected: false,
		},
		{
			name:     "Release released",
			event:    &model.WebhookEvent{Type: model.EventTypeRelease, Action: "released"},
			expected: true,
		},
		{
			name:     "Release created",
			event:    &model.WebhookEvent{Type: model.EventTypeRelease, Action: "created"},
			expected: false,
		},
		{
			name:     "Ping",
			event:    &model.WebhookEvent{Type: model.EventTypePing},
			expected: false,
		},
		{
			name:     "Unknown event",
			event:    &model.WebhookEvent{Type: model.EventTypeUnknown, Ref: "refs/heads/main"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, tt.event.TriggersSync("main"), tt.expected)
		})
	}
}
