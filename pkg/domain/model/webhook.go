package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush    WebhookEventType = "push"
	EventTypeRelease WebhookEventType = "release"
	EventTypePing    WebhookEventType = "ping"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., released), empty for push
	Ref        string           // Pushed ref (e.g., refs/heads/main)
	Repository string           // Repository full name
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
}

// TriggersSync reports whether the event means upstream's mainBranch moved
func (e *WebhookEvent) TriggersSync(mainBranch string) bool {
	switch e.Type {
	case EventTypePush:
		return e.Ref == "refs/heads/"+mainBranch
	case EventTypeRelease:
		return e.Action == "released"
	default:
		return false
	}
}

// TriggerOutcome is what happened to a webhook event
type TriggerOutcome string

const (
	// TriggerIgnored means the event does not concern the synced branch
	TriggerIgnored TriggerOutcome = "ignored"
	// TriggerQueued means a run was scheduled
	TriggerQueued TriggerOutcome = "queued"
	// TriggerCoalesced means a run was already pending and absorbs the event
	TriggerCoalesced TriggerOutcome = "coalesced"
)
