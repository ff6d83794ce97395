package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
)

func newHealthHandler(provider interfaces.RunStatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "forksync",
			Version: types.Version,
		}

		if provider != nil {
			last, running := provider.Status()
			status.Running = running
			if last != nil {
				status.LastRun = &model.RunStatus{
					ID:          last.ID.String(),
					Success:     last.Success,
					AbortReason: last.AbortReason,
					FinishedAt:  last.FinishedAt.UTC().Format(time.RFC3339),
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
		}
	}
}
