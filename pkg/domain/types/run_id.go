package types

import "github.com/google/uuid"

// RunID identifies a single sync run across logs, notifications and history.
type RunID string

// NewRunID returns a random RunID
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

func (x RunID) String() string {
	return string(x)
}
