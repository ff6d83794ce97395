package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
)

type webhookUseCase struct {
	trigger    interfaces.SyncTrigger
	mainBranch string
	repository string
}

// WebhookOption configures the webhook use case
type WebhookOption func(*webhookUseCase)

// WithRepository accepts events only from the repository full name (owner/name)
func WithRepository(fullName string) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.repository = fullName
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(trigger interfaces.SyncTrigger, mainBranch string, opts ...WebhookOption) interfaces.WebhookUseCase {
	uc := &webhookUseCase{
		trigger:    trigger,
		mainBranch: mainBranch,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent triggers a sync when event reports a new upstream main
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) (model.TriggerOutcome, error) {
	logger := ctxlog.From(ctx).With(
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"ref", event.Ref,
		"repository", event.Repository,
		"sender", event.Sender,
	)
	logger.Info("Processing webhook event")

	if uc.repository != "" && !strings.EqualFold(uc.repository, event.Repository) {
		logger.Warn("Event from unexpected repository", "expected", uc.repository)
		return model.TriggerIgnored, nil
	}
	if !event.TriggersSync(uc.mainBranch) {
		logger.Debug("Event does not trigger a sync")
		return model.TriggerIgnored, nil
	}

	if uc.trigger.Trigger(ctx, string(event.Type)+" "+event.ID) {
		return model.TriggerQueued, nil
	}
	return model.TriggerCoalesced, nil
}
