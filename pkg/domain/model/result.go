package model

import (
	"time"

	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// StepStatus is the outcome of a single workflow step
type StepStatus string

const (
	StepOK        StepStatus = "ok"
	StepSkipped   StepStatus = "skipped"
	StepRecovered StepStatus = "recovered"
	StepIgnored   StepStatus = "ignored"
	StepFailed    StepStatus = "failed"
)

// Step is one entry of the run's step log
type Step struct {
	Name     string        `json:"name" firestore:"name"`
	Status   StepStatus    `json:"status" firestore:"status"`
	Message  string        `json:"message,omitempty" firestore:"message,omitempty"`
	Duration time.Duration `json:"duration" firestore:"duration"`
}

// RunResult is the report of a whole sync run
type RunResult struct {
	ID            types.RunID `json:"id" firestore:"id"`
	Success       bool        `json:"success" firestore:"success"`
	AbortReason   string      `json:"abort_reason,omitempty" firestore:"abort_reason,omitempty"`
	Error         string      `json:"error,omitempty" firestore:"error,omitempty"`
	Steps         []Step      `json:"steps" firestore:"steps"`
	SyncedBranch  string      `json:"synced_branch" firestore:"synced_branch"`
	ActiveBranch  string      `json:"active_branch" firestore:"active_branch"`
	RuntimeBranch string      `json:"runtime_branch,omitempty" firestore:"runtime_branch,omitempty"`
	StartedAt     time.Time   `json:"started_at" firestore:"started_at"`
	FinishedAt    time.Time   `json:"finished_at" firestore:"finished_at"`
}

// AddStep appends a step to the log
func (r *RunResult) AddStep(step Step) {
	r.Steps = append(r.Steps, step)
}

// Step returns the first logged step with the name, or nil.
func (r *RunResult) Step(name string) *Step {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// Fail marks the run as aborted by err.
func (r *RunResult) Fail(err error) {
	r.Success = false
	r.AbortReason = types.AbortReason(err)
	r.Error = err.Error()
}

// Elapsed is the wall time of the run
func (r *RunResult) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CheckReport is the read-only status produced by the check command.
type CheckReport struct {
	RepoRoot         string   `json:"repo_root"`
	CurrentBranch    string   `json:"current_branch"`
	Dirty            bool     `json:"dirty"`
	Remotes          []Remote `json:"remotes"`
	WorkBranchExists bool     `json:"work_branch_exists"`
	MainBranchExists bool     `json:"main_branch_exists"`
}
