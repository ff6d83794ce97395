package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
	"github.com/m-mizutani/forksync/pkg/infra/storage"
)

func TestObjectName(t *testing.T) {
	result := &model.RunResult{
		ID:        "0f5c2a1e",
		StartedAt: time.Date(2026, 3, 7, 23, 59, 0, 0, time.FixedZone("JST", 9*3600)),
	}

	gt.Equal(t, storage.ObjectName("forksync/runs", result), "forksync/runs/2026/03/07/0f5c2a1e.json")
	gt.Equal(t, storage.ObjectName("", result), "2026/03/07/0f5c2a1e.json")
}

// Runs against a real bucket or the emulator (STORAGE_EMULATOR_HOST).
func TestArchive_Send(t *testing.T) {
	bucket := os.Getenv("TEST_STORAGE_BUCKET")
	if bucket == "" {
		t.Skip("TEST_STORAGE_BUCKET is not set")
	}

	ctx := context.Background()
	archive, err := storage.New(ctx, bucket, "forksync-test")
	gt.NoError(t, err)
	defer archive.Close()

	result := &model.RunResult{ID: types.NewRunID(), Success: true, StartedAt: time.Now()}
	gt.NoError(t, archive.Send(ctx, result))

	client, err := gcs.NewClient(ctx)
	gt.NoError(t, err)
	defer client.Close()

	r, err := client.Bucket(bucket).Object(storage.ObjectName("forksync-test", result)).NewReader(ctx)
	gt.NoError(t, err)
	defer r.Close()
	raw, err := io.ReadAll(r)
	gt.NoError(t, err)

	var got model.RunResult
	gt.NoError(t, json.Unmarshal(raw, &got))
	gt.Equal(t, got.ID, result.ID)
	gt.True(t, got.Success)
}
