package git

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/forksync/pkg/infra/command"
)

type failureKind int

const (
	failureUnknown failureKind = iota
	failureNonFastForward
	failureConflict
	failureStaleLease
	failureNotRepository
)

func classify(err error) failureKind {
	execErr, ok := command.AsExecError(err)
	if !ok {
		return failureUnknown
	}
	out := execErr.Output()

	switch {
	case strings.Contains(out, "not a git repository"):
		return failureNotRepository
	case strings.Contains(out, "Not possible to fast-forward"),
		strings.Contains(out, "Diverging branches can't be fast-forwarded"):
		return failureNonFastForward
	case strings.Contains(out, "CONFLICT"),
		strings.Contains(out, "could not apply"),
		strings.Contains(out, "Automatic merge failed"),
		strings.Contains(out, "Resolve all conflicts manually"):
		return failureConflict
	case matches(`\[rejected\].*\(stale info\)`, out):
		return failureStaleLease
	}
	return failureUnknown
}

func matches(pattern, s string) bool {
	return regexp.MustCompile(pattern).MatchString(s)
}
