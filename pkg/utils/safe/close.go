package safe

import (
	"context"
	"io"

	"github.com/m-mizutani/ctxlog"
)

// Close closes c and logs the error instead of returning it. Nil is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		ctxlog.From(ctx).Warn("Failed to close", "error", err)
	}
}
