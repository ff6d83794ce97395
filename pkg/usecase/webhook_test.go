package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/usecase"
)

type mockTrigger struct {
	accept  bool
	reasons []string
}

func (m *mockTrigger) Trigger(ctx context.Context, reason string) bool {
	m.reasons = append(m.reasons, reason)
	return m.accept
}

func TestWebhookUseCase_ProcessEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		accept   bool
		expected model.TriggerOutcome
	}{
		{
			name: "Push to upstream main",
			event: &model.WebhookEvent{
				ID:         "delivery-1",
				Type:       model.EventTypePush,
				Ref:        "refs/heads/main",
				Repository: "coleam00/Archon",
				ReceivedAt: time.Now(),
			},
			accept:   true,
			expected: model.TriggerQueued,
		},
		{
			name: "Push while a run is pending",
			event: &model.WebhookEvent{
				ID:         "delivery-2",
				Type:       model.EventTypePush,
				Ref:        "refs/heads/main",
				Repository: "coleam00/Archon",
			},
			accept:   false,
			expected: model.TriggerCoalesced,
		},
		{
			name: "Release released",
			event: &model.WebhookEvent{
				ID:         "delivery-3",
				Type:       model.EventTypeRelease,
				Action:     "released",
				Repository: "COLEAM00/archon",
			},
			accept:   true,
			expected: model.TriggerQueued,
		},
		{
			name: "Push to a feature branch",
			event: &model.WebhookEvent{
				ID:         "delivery-4",
				Type:       model.EventTypePush,
				Ref:        "refs/heads/feature",
				Repository: "coleam00/Archon",
			},
			accept:   true,
			expected: model.TriggerIgnored,
		},
		{
			name: "Push from another repository",
			event: &model.WebhookEvent{
				ID:         "delivery-5",
				Type:       model.EventTypePush,
				Ref:        "refs/heads/main",
				Repository: "someone/else",
			},
			accept:   true,
			expected: model.TriggerIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := &mockTrigger{accept: tt.accept}
			uc := usecase.NewWebhook(trigger, "main", usecase.WithRepository("coleam00/Archon"))

			outcome, err := uc.ProcessEvent(context.Background(), tt.event)
			gt.NoError(t, err)
			gt.Equal(t, outcome, tt.expected)

			if tt.expected == model.TriggerIgnored {
				gt.A(t, trigger.reasons).Length(0)
			} else {
				gt.A(t, trigger.reasons).Length(1)
			}
		})
	}
}

func TestWebhookUseCase_AnyRepository(t *testing.T) {
	trigger := &mockTrigger{accept: true}
	uc := usecase.NewWebhook(trigger, "develop")

	outcome, err := uc.ProcessEvent(context.Background(), &model.WebhookEvent{
		ID:         "delivery-1",
		Type:       model.EventTypePush,
		Ref:        "refs/heads/develop",
		Repository: "anyone/fork",
	})
	gt.NoError(t, err)
	gt.Equal(t, outcome, model.TriggerQueued)
	gt.Equal(t, trigger.reasons, []string{"push delivery-1"})
}
