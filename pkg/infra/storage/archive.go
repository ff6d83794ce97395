package storage

import (
	"context"
	"encoding/json"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// Archive writes each run result as a JSON object to a Cloud Storage bucket
type Archive struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates an Archive for bucket. Objects are written under prefix.
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Archive, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	return &Archive{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *Archive) Name() string { return "storage" }

// ObjectName is <prefix>/<yyyy>/<mm>/<dd>/<run id>.json, dated by run start
func ObjectName(prefix string, result *model.RunResult) string {
	return path.Join(prefix, result.StartedAt.UTC().Format("2006/01/02"), result.ID.String()+".json")
}

func (a *Archive) Send(ctx context.Context, result *model.RunResult) error {
	name := ObjectName(a.prefix, result)
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(result); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write run report",
			goerr.V("bucket", a.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to upload run report",
			goerr.V("bucket", a.bucket), goerr.V("object", name))
	}
	return nil
}

func (a *Archive) Close() error {
	return a.client.Close()
}
