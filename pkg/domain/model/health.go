package model

// HealthStatus represents the health check status
type HealthStatus struct {
	Status  string     `json:"status"`
	Service string     `json:"service"`
	Version string     `json:"version"`
	LastRun *RunStatus `json:"last_run,omitempty"`
	Running bool       `json:"running"`
}

// RunStatus is the short form of a RunResult exposed by the server
type RunStatus struct {
	ID          string `json:"id"`
	Success     bool   `json:"success"`
	AbortReason string `json:"abort_reason,omitempty"`
	FinishedAt  string `json:"finished_at"`
}
