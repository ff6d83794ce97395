package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

const (
	colorSuccess = "good"
	colorFailure = "danger"
)

// Notifier posts run results to a Slack incoming webhook
type Notifier struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// Option configures Notifier
type Option func(*Notifier)

// WithChannel overrides the webhook's default channel
func WithChannel(channel string) Option {
	return func(n *Notifier) {
		n.channel = channel
	}
}

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = client
	}
}

// New creates a Notifier for webhookURL
func New(webhookURL string, opts ...Option) *Notifier {
	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Name() string { return "slack" }

// Send posts the result as a single attachment
func (n *Notifier) Send(ctx context.Context, result *model.RunResult) error {
	msg := buildMessage(result)
	msg.Channel = n.channel

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook", goerr.V("run_id", result.ID))
	}
	return nil
}

func buildMessage(result *model.RunResult) *slack.WebhookMessage {
	attachment := slack.Attachment{
		Color:  colorSuccess,
		Title:  fmt.Sprintf("forksync: %s synced, %s updated", result.SyncedBranch, result.ActiveBranch),
		Footer: "run " + result.ID.String(),
		Fields: []slack.AttachmentField{
			{Title: "Elapsed", Value: result.Elapsed().Round(time.Second).String(), Short: true},
		},
	}
	text := ":white_check_mark: Fork sync completed"

	if !result.Success {
		attachment.Color = colorFailure
		attachment.Title = "forksync: run aborted"
		text = ":x: Fork sync aborted"
		attachment.Fields = append(attachment.Fields,
			slack.AttachmentField{Title: "Reason", Value: result.AbortReason, Short: true},
			slack.AttachmentField{Title: "Error", Value: result.Error},
		)
	}
	if result.RuntimeBranch != "" {
		attachment.Fields = append(attachment.Fields,
			slack.AttachmentField{Title: "Runtime", Value: result.RuntimeBranch, Short: true})
	}

	var lines []string
	for _, step := range result.Steps {
		line := fmt.Sprintf("`%s` %s", step.Name, step.Status)
		if step.Message != "" {
			line += ": " + step.Message
		}
		lines = append(lines, line)
	}
	attachment.Text = strings.Join(lines, "\n")

	return &slack.WebhookMessage{
		Text:        text,
		Attachments: []slack.Attachment{attachment},
	}
}
