package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify why a run stopped (or what was recovered). They are
// attached with goerr.T and inspected with goerr.HasTag.
var (
	ErrTagNotARepository          = goerr.NewTag("not_a_repository")
	ErrTagMissingDependency       = goerr.NewTag("missing_dependency")
	ErrTagInvalidConfig           = goerr.NewTag("invalid_config")
	ErrTagDetachedHead            = goerr.NewTag("detached_head")
	ErrTagNonFastForward          = goerr.NewTag("non_fast_forward")
	ErrTagRebaseConflict          = goerr.NewTag("rebase_conflict")
	ErrTagMergeConflict           = goerr.NewTag("merge_conflict")
	ErrTagContainerCleanupFailure = goerr.NewTag("container_cleanup_failure")
	ErrTagComposeDownFailure      = goerr.NewTag("compose_down_failure")
	ErrTagCommandFailed           = goerr.NewTag("command_failed")
)

// AbortReason returns the tag name that best describes err. Errors without a
// known tag are reported as "unknown". When several tags are attached, the
// first one in the switch below wins, so a fatal cause outranks a recovered
// rebase conflict.
func AbortReason(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerr.HasTag(err, ErrTagNotARepository):
		return ErrTagNotARepository.String()
	case goerr.HasTag(err, ErrTagMissingDependency):
		return ErrTagMissingDependency.String()
	case goerr.HasTag(err, ErrTagInvalidConfig):
		return ErrTagInvalidConfig.String()
	case goerr.HasTag(err, ErrTagDetachedHead):
		return ErrTagDetachedHead.String()
	case goerr.HasTag(err, ErrTagNonFastForward):
		return ErrTagNonFastForward.String()
	case goerr.HasTag(err, ErrTagMergeConflict):
		return ErrTagMergeConflict.String()
	case goerr.HasTag(err, ErrTagRebaseConflict):
		return ErrTagRebaseConflict.String()
	case goerr.HasTag(err, ErrTagContainerCleanupFailure):
		return ErrTagContainerCleanupFailure.String()
	case goerr.HasTag(err, ErrTagComposeDownFailure):
		return ErrTagComposeDownFailure.String()
	case goerr.HasTag(err, ErrTagCommandFailed):
		return ErrTagCommandFailed.String()
	}
	return "unknown"
}
