package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/utils/safe"
)

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ok := &closer{}
	safe.Close(ctx, ok)
	gt.True(t, ok.closed)
	gt.Equal(t, buf.Len(), 0)

	failing := &closer{err: errors.New("already closed")}
	safe.Close(ctx, failing)
	gt.True(t, failing.closed)
	gt.String(t, buf.String()).Contains("already closed")

	var nilCloser io.Closer
	safe.Close(ctx, nilCloser)
}
