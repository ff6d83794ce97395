package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	slackgo "github.com/slack-go/slack"

	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/infra/slack"
)

func newWebhook(t *testing.T, status int) (*httptest.Server, chan slackgo.WebhookMessage) {
	t.Helper()
	received := make(chan slackgo.WebhookMessage, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg slackgo.WebhookMessage
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		received <- msg
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func TestNotifier_Send(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv, received := newWebhook(t, http.StatusOK)
		n := slack.New(srv.URL, slack.WithChannel("#archon"), slack.WithHTTPClient(srv.Client()))
		gt.Equal(t, n.Name(), "slack")

		result := &model.RunResult{
			ID:            "run-1",
			Success:       true,
			SyncedBranch:  "main",
			ActiveBranch:  "myarchon",
			RuntimeBranch: "myarchon",
			Steps: []model.Step{
				{Name: "sync-main", Status: model.StepOK, Message: "main fast-forwarded"},
				{Name: "work-branch", Status: model.StepRecovered},
			},
		}
		gt.NoError(t, n.Send(context.Background(), result))

		msg := <-received
		gt.Equal(t, msg.Channel, "#archon")
		gt.A(t, msg.Attachments).Length(1)
		gt.Equal(t, msg.Attachments[0].Color, "good")
		gt.String(t, msg.Attachments[0].Title).Contains("main synced, myarchon updated")
		gt.String(t, msg.Attachments[0].Text).Contains("`work-branch` recovered")
		gt.String(t, msg.Attachments[0].Footer).Contains("run-1")
	})

	t.Run("failure includes the abort reason", func(t *testing.T) {
		srv, received := newWebhook(t, http.StatusOK)
		n := slack.New(srv.URL, slack.WithHTTPClient(srv.Client()))

		result := &model.RunResult{
			ID:          "run-2",
			AbortReason: "non_fast_forward",
			Error:       "main branch has diverged from upstream",
		}
		gt.NoError(t, n.Send(context.Background(), result))

		msg := <-received
		gt.Equal(t, msg.Attachments[0].Color, "danger")
		var reason string
		for _, f := range msg.Attachments[0].Fields {
			if f.Title == "Reason" {
				reason = f.Value
			}
		}
		gt.Equal(t, reason, "non_fast_forward")
	})

	t.Run("webhook error", func(t *testing.T) {
		srv, _ := newWebhook(t, http.StatusInternalServerError)
		n := slack.New(srv.URL, slack.WithHTTPClient(srv.Client()))
		gt.Error(t, n.Send(context.Background(), &model.RunResult{ID: "run-3"}))
	})
}
