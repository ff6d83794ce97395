package types_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/domain/types"
)

func TestAbortReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "tagged error",
			err:  goerr.New("diverged", goerr.T(types.ErrTagNonFastForward)),
			want: "non_fast_forward",
		},
		{
			name: "wrapped tagged error",
			err: goerr.Wrap(
				goerr.New("no git", goerr.T(types.ErrTagMissingDependency)),
				"preflight failed",
			),
			want: "missing_dependency",
		},
		{
			name: "fatal tag outranks recovered tag",
			err: goerr.Wrap(
				goerr.New("rebase stopped", goerr.T(types.ErrTagRebaseConflict)),
				"fallback merge failed",
				goerr.T(types.ErrTagMergeConflict),
			),
			want: "merge_conflict",
		},
		{
			name: "ignored failure",
			err:  goerr.New("compose down", goerr.T(types.ErrTagComposeDownFailure)),
			want: "compose_down_failure",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, types.AbortReason(tt.err), tt.want)
		})
	}
}

func TestNewRunID(t *testing.T) {
	a := types.NewRunID()
	b := types.NewRunID()
	gt.Value(t, a.String()).NotEqual("")
	gt.Value(t, a).NotEqual(b)
}

func TestAbortReason_EveryTag(t *testing.T) {
	tags := map[string]error{
		"not_a_repository":          goerr.New("x", goerr.T(types.ErrTagNotARepository)),
		"missing_dependency":        goerr.New("x", goerr.T(types.ErrTagMissingDependency)),
		"invalid_config":            goerr.New("x", goerr.T(types.ErrTagInvalidConfig)),
		"detached_head":             goerr.New("x", goerr.T(types.ErrTagDetachedHead)),
		"non_fast_forward":          goerr.New("x", goerr.T(types.ErrTagNonFastForward)),
		"rebase_conflict":           goerr.New("x", goerr.T(types.ErrTagRebaseConflict)),
		"merge_conflict":            goerr.New("x", goerr.T(types.ErrTagMergeConflict)),
		"container_cleanup_failure": goerr.New("x", goerr.T(types.ErrTagContainerCleanupFailure)),
		"compose_down_failure":      goerr.New("x", goerr.T(types.ErrTagComposeDownFailure)),
		"command_failed":            goerr.New("x", goerr.T(types.ErrTagCommandFailed)),
	}
	for want, err := range tags {
		gt.Equal(t, types.AbortReason(err), want)
	}
}
