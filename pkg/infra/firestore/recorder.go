package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// DefaultCollection holds one document per run, keyed by run ID
const DefaultCollection = "forksync_runs"

// Recorder stores run results in Cloud Firestore
type Recorder struct {
	client     *firestore.Client
	collection string
}

// New connects to the database of projectID. An empty databaseID selects
// the "(default)" database.
func New(ctx context.Context, projectID, databaseID, collection string, opts ...option.ClientOption) (*Recorder, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Recorder{
		client:     client,
		collection: collection,
	}, nil
}

func (r *Recorder) Name() string { return "firestore" }

// Send writes result as a document, replacing a previous one with the same ID
func (r *Recorder) Send(ctx context.Context, result *model.RunResult) error {
	doc := r.client.Collection(r.collection).Doc(result.ID.String())
	if _, err := doc.Set(ctx, result); err != nil {
		return goerr.Wrap(err, "failed to record run",
			goerr.V("collection", r.collection),
			goerr.V("run_id", result.ID))
	}
	return nil
}

// Get reads back a recorded run
func (r *Recorder) Get(ctx context.Context, id string) (*model.RunResult, error) {
	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("run_id", id))
	}

	var result model.RunResult
	if err := snap.DataTo(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run", goerr.V("run_id", id))
	}
	return &result, nil
}

func (r *Recorder) Close() error {
	return r.client.Close()
}
