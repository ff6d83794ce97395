package config

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/infra/firestore"
	"github.com/m-mizutani/forksync/pkg/infra/slack"
	"github.com/m-mizutani/forksync/pkg/infra/storage"
)

// Notify holds the destinations a finished run is reported to. Every sink
// is optional.
type Notify struct {
	SlackWebhookURL     string `masq:"secret"`
	SlackChannel        string
	FirestoreProjectID  string
	FirestoreDatabaseID string
	FirestoreCollection string
	StorageBucket       string
	StoragePrefix       string
	CredentialsFile     string
}

// Flags returns CLI flags for result sinks
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run results",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("FORKSYNC_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel, overrides the webhook default",
			Destination: &c.SlackChannel,
			Sources:     cli.EnvVars("FORKSYNC_SLACK_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "GCP project of the Firestore run history",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("FORKSYNC_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("FORKSYNC_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection of run documents",
			Value:       firestore.DefaultCollection,
			Destination: &c.FirestoreCollection,
			Sources:     cli.EnvVars("FORKSYNC_FIRESTORE_COLLECTION"),
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for JSON run reports",
			Destination: &c.StorageBucket,
			Sources:     cli.EnvVars("FORKSYNC_STORAGE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object prefix for run reports",
			Value:       "forksync",
			Destination: &c.StoragePrefix,
			Sources:     cli.EnvVars("FORKSYNC_STORAGE_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "gcp-credentials-file",
			Usage:       "Service account key for Firestore and Cloud Storage (default: ADC)",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("FORKSYNC_GCP_CREDENTIALS_FILE"),
		},
	}
}

func (c *Notify) clientOptions() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// Sinks builds the configured sinks. The returned closers must be closed
// after the sinks are no longer used, even when err is not nil.
func (c *Notify) Sinks(ctx context.Context) ([]interfaces.ResultSink, []io.Closer, error) {
	var (
		sinks   []interfaces.ResultSink
		closers []io.Closer
	)

	if c.SlackWebhookURL != "" {
		var opts []slack.Option
		if c.SlackChannel != "" {
			opts = append(opts, slack.WithChannel(c.SlackChannel))
		}
		sinks = append(sinks, slack.New(c.SlackWebhookURL, opts...))
	}

	if c.FirestoreProjectID != "" {
		rec, err := firestore.New(ctx, c.FirestoreProjectID, c.FirestoreDatabaseID, c.FirestoreCollection, c.clientOptions()...)
		if err != nil {
			return nil, closers, err
		}
		sinks = append(sinks, rec)
		closers = append(closers, rec)
	}

	if c.StorageBucket != "" {
		archive, err := storage.New(ctx, c.StorageBucket, c.StoragePrefix, c.clientOptions()...)
		if err != nil {
			return nil, closers, err
		}
		sinks = append(sinks, archive)
		closers = append(closers, archive)
	}

	return sinks, closers, nil
}
