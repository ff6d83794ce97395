package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
)

type syncUseCase struct {
	vcs       interfaces.VCS
	container interfaces.Container
	observer  interfaces.StepObserver
	now       func() time.Time
}

// SyncOption configures the sync use case
type SyncOption func(*syncUseCase)

// WithObserver receives step start/finish notifications
func WithObserver(observer interfaces.StepObserver) SyncOption {
	return func(uc *syncUseCase) {
		uc.observer = observer
	}
}

// WithClock replaces time.Now, for timestamps in autosave messages and results
func WithClock(now func() time.Time) SyncOption {
	return func(uc *syncUseCase) {
		uc.now = now
	}
}

// NewSync creates a new instance of SyncUseCase
func NewSync(vcs interfaces.VCS, container interfaces.Container, opts ...SyncOption) interfaces.SyncUseCase {
	uc := &syncUseCase{
		vcs:       vcs,
		container: container,
		observer:  nopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type nopObserver struct{}

func (nopObserver) StepStarted(name, description string) {}
func (nopObserver) StepFinished(step model.Step)         {}

// Steps lists the steps Run executes for plan
func (uc *syncUseCase) Steps(plan *model.Plan) []string {
	return stepNames(plan)
}

// Run executes the fork sync and runtime refresh workflow. It stops at the
// first fatal error and never rolls back what earlier steps did.
func (uc *syncUseCase) Run(ctx context.Context, plan *model.Plan) (*model.RunResult, error) {
	result := &model.RunResult{
		ID:           types.NewRunID(),
		StartedAt:    uc.now(),
		SyncedBranch: plan.Repo.MainBranch,
		ActiveBranch: plan.Repo.WorkBranch,
	}
	if !plan.Docker.Skip {
		result.RuntimeBranch = plan.RuntimeBranchName()
	}

	logger := ctxlog.From(ctx).With("run_id", result.ID.String())
	ctx = ctxlog.With(ctx, logger)

	err := uc.run(ctx, plan, result)
	result.FinishedAt = uc.now()
	if err != nil {
		result.Fail(err)
		logger.Error("Sync aborted",
			"reason", result.AbortReason,
			"error", err,
		)
		return result, err
	}

	result.Success = true
	logger.Info("Sync completed",
		"synced_branch", result.SyncedBranch,
		"active_branch", result.ActiveBranch,
		"runtime_branch", result.RuntimeBranch,
		"elapsed", result.Elapsed(),
	)
	return result, nil
}

type stepFunc func(ctx context.Context) (model.StepStatus, string, error)

type namedStep struct {
	name string
	fn   stepFunc
}

func (uc *syncUseCase) step(ctx context.Context, plan *model.Plan, result *model.RunResult, name string, fn stepFunc) error {
	uc.observer.StepStarted(name, DescribeStep(plan, name))

	start := uc.now()
	status, msg, err := fn(ctx)
	step := model.Step{
		Name:     name,
		Status:   status,
		Message:  msg,
		Duration: uc.now().Sub(start),
	}
	if err != nil {
		step.Status = model.StepFailed
		step.Message = err.Error()
	}
	result.AddStep(step)
	uc.observer.StepFinished(step)

	if err != nil {
		return goerr.Wrap(err, "step failed", goerr.V("step", name))
	}
	return nil
}

func skip(reason string) stepFunc {
	return func(ctx context.Context) (model.StepStatus, string, error) {
		return model.StepSkipped, reason, nil
	}
}

func (uc *syncUseCase) run(ctx context.Context, plan *model.Plan, result *model.RunResult) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	steps := []namedStep{
		{StepPreflight, func(ctx context.Context) (model.StepStatus, string, error) {
			return uc.preflight(ctx, plan)
		}},
		{StepRemotes, func(ctx context.Context) (model.StepStatus, string, error) {
			return uc.normalizeRemotes(ctx, plan.Repo)
		}},
		{StepFetch, func(ctx context.Context) (model.StepStatus, string, error) {
			return uc.fetch(ctx, plan.Repo)
		}},
		{StepAutosave, func(ctx context.Context) (model.StepStatus, string, error) {
			return uc.autosave(ctx)
		}},
		{StepSyncMain, func(ctx context.Context) (model.StepStatus, string, error) {
			return uc.syncMain(ctx, plan.Repo)
		}},
		{StepMirror, func(ctx context.Context) (model.StepStatus, string, error) {
			if !plan.Repo.MirrorBranches {
				return model.StepSkipped, "mirroring disabled", nil
			}
			return uc.mirrorBranches(ctx, plan.Repo)
		}},
		{StepWorkBranch, func(ctx context.Context) (model.StepStatus, string, error) {
			return uc.updateWorkBranch(ctx, plan.Repo)
		}},
	}

	if plan.Docker.Skip {
		for _, name := range []string{StepRuntimeBranch, StepEvictPort, StepComposeDown, StepComposeUp} {
			steps = append(steps, namedStep{name, skip("runtime refresh disabled")})
		}
	} else {
		steps = append(steps, []namedStep{
			{StepRuntimeBranch, func(ctx context.Context) (model.StepStatus, string, error) {
				return uc.switchRuntimeBranch(ctx, plan)
			}},
			{StepEvictPort, func(ctx context.Context) (model.StepStatus, string, error) {
				return uc.evictPort(ctx, plan.Docker.UIPort)
			}},
			{StepComposeDown, func(ctx context.Context) (model.StepStatus, string, error) {
				return uc.composeDown(ctx, plan.Compose())
			}},
			{StepComposeUp, func(ctx context.Context) (model.StepStatus, string, error) {
				return uc.composeUp(ctx, plan.Compose())
			}},
		}...)
	}

	steps = append(steps, namedStep{StepReport, func(ctx context.Context) (model.StepStatus, string, error) {
		return model.StepOK, summary(result), nil
	}})

	for _, s := range steps {
		if err := uc.step(ctx, plan, result, s.name, s.fn); err != nil {
			return err
		}
	}
	return nil
}

func summary(result *model.RunResult) string {
	msg := fmt.Sprintf("%s is synced with upstream, %s is the active branch", result.SyncedBranch, result.ActiveBranch)
	if result.RuntimeBranch != "" {
		msg += fmt.Sprintf(", runtime is served from %s", result.RuntimeBranch)
	}
	return msg
}

func (uc *syncUseCase) preflight(ctx context.Context, plan *model.Plan) (model.StepStatus, string, error) {
	root, err := uc.vcs.Root(ctx)
	if err != nil {
		return "", "", err
	}
	if err := uc.vcs.CheckInstalled(ctx); err != nil {
		return "", "", err
	}
	if !plan.Docker.Skip {
		if err := uc.container.CheckInstalled(ctx); err != nil {
			return "", "", err
		}
	}
	return model.StepOK, "repository at " + root, nil
}

func (uc *syncUseCase) normalizeRemotes(ctx context.Context, repo model.RepoConfig) (model.StepStatus, string, error) {
	logger := ctxlog.From(ctx)

	remotes, err := uc.vcs.Remotes(ctx)
	if err != nil {
		return "", "", err
	}
	current := make(map[string]string, len(remotes))
	for _, r := range remotes {
		current[r.Name] = r.URL
	}

	var added, updated int
	for _, want := range []model.Remote{
		{Name: repo.ForkRemote, URL: repo.ForkURL},
		{Name: repo.UpstreamRemote, URL: repo.UpstreamURL},
	} {
		url, ok := current[want.Name]
		switch {
		case !ok:
			logger.Info("Adding remote", "remote", want.Name)
			if err := uc.vcs.AddRemote(ctx, want.Name, want.URL); err != nil {
				return "", "", err
			}
			added++
		case url != want.URL:
			logger.Info("Updating remote URL", "remote", want.Name)
			if err := uc.vcs.SetRemoteURL(ctx, want.Name, want.URL); err != nil {
				return "", "", err
			}
			updated++
		}
	}

	if added == 0 && updated == 0 {
		return model.StepOK, "remotes already configured", nil
	}
	return model.StepOK, fmt.Sprintf("added %d, updated %d", added, updated), nil
}

func (uc *syncUseCase) fetch(ctx context.Context, repo model.RepoConfig) (model.StepStatus, string, error) {
	if err := uc.vcs.FetchAll(ctx); err != nil {
		return "", "", err
	}
	if err := uc.vcs.FetchTags(ctx, repo.UpstreamRemote); err != nil {
		return "", "", err
	}
	return model.StepOK, "fetched all remotes", nil
}

// autosave commits pending changes on the current branch. It is the guard
// run before every branch switch so a checkout never drops work.
func (uc *syncUseCase) autosave(ctx context.Context) (model.StepStatus, string, error) {
	dirty, err := uc.vcs.HasChanges(ctx)
	if err != nil {
		return "", "", err
	}
	if !dirty {
		return model.StepSkipped, "working tree clean", nil
	}

	branch, err := uc.vcs.CurrentBranch(ctx)
	if err != nil {
		return "", "", err
	}
	if branch == "" {
		return "", "", goerr.New("uncommitted changes on a detached HEAD, commit or stash them first",
			goerr.T(types.ErrTagDetachedHead))
	}

	msg := "autosave: " + uc.now().UTC().Format(time.RFC3339)
	ctxlog.From(ctx).Info("Committing uncommitted changes", "branch", branch, "message", msg)
	if err := uc.vcs.CommitAll(ctx, msg); err != nil {
		return "", "", err
	}
	return model.StepOK, "committed changes on " + branch, nil
}

// switchTo autosaves and switches to branch unless it is already checked out
func (uc *syncUseCase) switchTo(ctx context.Context, branch string) error {
	current, err := uc.vcs.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}
	if _, _, err := uc.autosave(ctx); err != nil {
		return err
	}
	return uc.vcs.Switch(ctx, branch)
}

func (uc *syncUseCase) syncMain(ctx context.Context, repo model.RepoConfig) (model.StepStatus, string, error) {
	logger := ctxlog.From(ctx)
	upstreamMain := repo.UpstreamMain()

	exists, err := uc.vcs.BranchExists(ctx, repo.MainBranch)
	if err != nil {
		return "", "", err
	}
	if exists {
		if err := uc.switchTo(ctx, repo.MainBranch); err != nil {
			return "", "", err
		}
	} else {
		if _, _, err := uc.autosave(ctx); err != nil {
			return "", "", err
		}
		logger.Info("Creating main branch from upstream", "branch", repo.MainBranch, "start", upstreamMain)
		if err := uc.vcs.CreateBranch(ctx, repo.MainBranch, upstreamMain); err != nil {
			return "", "", err
		}
	}

	ok, err := uc.vcs.IsAncestor(ctx, repo.MainBranch, upstreamMain)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", goerr.New("main branch has diverged from upstream, resolve it manually",
			goerr.V("branch", repo.MainBranch),
			goerr.V("upstream", upstreamMain),
			goerr.T(types.ErrTagNonFastForward),
		)
	}

	if err := uc.vcs.MergeFastForward(ctx, upstreamMain); err != nil {
		return "", "", err
	}
	if err := uc.vcs.Push(ctx, repo.ForkRemote, repo.MainBranch, model.PushOptions{}); err != nil {
		return "", "", err
	}

	return model.StepOK, fmt.Sprintf("%s fast-forwarded to %s and pushed to %s",
		repo.MainBranch, upstreamMain, repo.ForkRemote), nil
}

func (uc *syncUseCase) mirrorBranches(ctx context.Context, repo model.RepoConfig) (model.StepStatus, string, error) {
	logger := ctxlog.From(ctx)

	branches, err := uc.vcs.RemoteBranches(ctx, repo.UpstreamRemote)
	if err != nil {
		return "", "", err
	}
	current, err := uc.vcs.CurrentBranch(ctx)
	if err != nil {
		return "", "", err
	}

	var mirrored int
	for _, b := range branches {
		// main is already synced, the work branch is never overwritten and
		// the checked out branch cannot be force-moved.
		if b == repo.MainBranch || b == repo.WorkBranch || b == current {
			continue
		}

		logger.Debug("Mirroring branch", "branch", b)
		if err := uc.vcs.ForceBranch(ctx, b, repo.UpstreamRemote+"/"+b); err != nil {
			return "", "", err
		}
		if err := uc.vcs.Push(ctx, repo.ForkRemote, b, model.PushOptions{}); err != nil {
			return "", "", err
		}
		mirrored++
	}

	return model.StepOK, fmt.Sprintf("mirrored %d branches", mirrored), nil
}

func (uc *syncUseCase) updateWorkBranch(ctx context.Context, repo model.RepoConfig) (model.StepStatus, string, error) {
	logger := ctxlog.From(ctx)
	forkMain := repo.ForkMain()

	exists, err := uc.vcs.BranchExists(ctx, repo.WorkBranch)
	if err != nil {
		return "", "", err
	}

	if !exists {
		if _, _, err := uc.autosave(ctx); err != nil {
			return "", "", err
		}
		logger.Info("Creating work branch", "branch", repo.WorkBranch, "start", repo.MainBranch)
		if err := uc.vcs.CreateBranch(ctx, repo.WorkBranch, repo.MainBranch); err != nil {
			return "", "", err
		}
		if err := uc.vcs.Push(ctx, repo.ForkRemote, repo.WorkBranch, model.PushOptions{SetUpstream: true}); err != nil {
			return "", "", err
		}
		return model.StepOK, fmt.Sprintf("created %s from %s and pushed to %s with tracking",
			repo.WorkBranch, repo.MainBranch, repo.ForkRemote), nil
	}

	if err := uc.switchTo(ctx, repo.WorkBranch); err != nil {
		return "", "", err
	}
	if _, _, err := uc.autosave(ctx); err != nil {
		return "", "", err
	}

	rebaseErr := uc.vcs.Rebase(ctx, forkMain)
	if rebaseErr == nil {
		if err := uc.vcs.Push(ctx, repo.ForkRemote, repo.WorkBranch, model.PushOptions{ForceWithLease: true}); err != nil {
			return "", "", err
		}
		return model.StepOK, fmt.Sprintf("rebased %s onto %s and pushed with lease", repo.WorkBranch, forkMain), nil
	}
	if !goerr.HasTag(rebaseErr, types.ErrTagRebaseConflict) {
		return "", "", rebaseErr
	}

	logger.Warn("Rebase conflicted, falling back to merge",
		"branch", repo.WorkBranch,
		"onto", forkMain,
		"error", rebaseErr,
	)
	if err := uc.vcs.AbortRebase(ctx); err != nil {
		return "", "", err
	}

	if err := uc.vcs.MergeNoFastForward(ctx, forkMain); err != nil {
		if goerr.HasTag(err, types.ErrTagMergeConflict) {
			if abortErr := uc.vcs.AbortMerge(ctx); abortErr != nil {
				logger.Error("Failed to abort merge", "error", abortErr)
			}
		}
		return "", "", err
	}
	if err := uc.vcs.Push(ctx, repo.ForkRemote, repo.WorkBranch, model.PushOptions{}); err != nil {
		return "", "", err
	}

	return model.StepRecovered, fmt.Sprintf("rebase conflicted, merged %s into %s and pushed", forkMain, repo.WorkBranch), nil
}

func (uc *syncUseCase) switchRuntimeBranch(ctx context.Context, plan *model.Plan) (model.StepStatus, string, error) {
	branch := plan.RuntimeBranchName()
	if err := uc.switchTo(ctx, branch); err != nil {
		return "", "", err
	}
	return model.StepOK, "serving from " + branch, nil
}

func (uc *syncUseCase) evictPort(ctx context.Context, port int) (model.StepStatus, string, error) {
	logger := ctxlog.From(ctx)

	containers, err := uc.container.ListByPublishedPort(ctx, port)
	if err != nil {
		err = goerr.Wrap(err, "failed to find containers holding the port",
			goerr.V("port", port),
			goerr.T(types.ErrTagContainerCleanupFailure),
		)
		logger.Warn("Ignoring container cleanup failure", "error", err)
		return model.StepIgnored, err.Error(), nil
	}
	if len(containers) == 0 {
		return model.StepSkipped, fmt.Sprintf("no container publishes port %d", port), nil
	}

	var failed int
	for _, c := range containers {
		logger.Info("Removing container holding UI port",
			"container_id", c.ShortID(),
			"name", c.Name,
			"port", port,
		)
		if err := uc.container.Remove(ctx, c.ID); err != nil {
			failed++
			logger.Warn("Ignoring container cleanup failure", "error", goerr.Wrap(err, "failed to remove container",
				goerr.V("container_id", c.ShortID()),
				goerr.T(types.ErrTagContainerCleanupFailure),
			))
		}
	}

	msg := fmt.Sprintf("removed %d of %d containers on port %d", len(containers)-failed, len(containers), port)
	if failed > 0 {
		return model.StepIgnored, msg, nil
	}
	return model.StepOK, msg, nil
}

func (uc *syncUseCase) composeDown(ctx context.Context, opts model.ComposeOptions) (model.StepStatus, string, error) {
	if err := uc.container.ComposeDown(ctx, opts); err != nil {
		err = goerr.Wrap(err, "compose down failed, stack may already be down",
			goerr.T(types.ErrTagComposeDownFailure))
		ctxlog.From(ctx).Warn("Ignoring compose down failure", "error", err)
		return model.StepIgnored, err.Error(), nil
	}
	return model.StepOK, "stack stopped", nil
}

func (uc *syncUseCase) composeUp(ctx context.Context, opts model.ComposeOptions) (model.StepStatus, string, error) {
	if err := uc.container.ComposeUp(ctx, opts); err != nil {
		return "", "", err
	}
	return model.StepOK, fmt.Sprintf("stack up with profile %s", opts.Profile), nil
}

// Check reports repository state without changing it
func (uc *syncUseCase) Check(ctx context.Context, plan *model.Plan) (*model.CheckReport, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := uc.preflight(ctx, plan); err != nil {
		return nil, err
	}

	report := &model.CheckReport{}
	var err error
	if report.RepoRoot, err = uc.vcs.Root(ctx); err != nil {
		return nil, err
	}
	if report.CurrentBranch, err = uc.vcs.CurrentBranch(ctx); err != nil {
		return nil, err
	}
	if report.Dirty, err = uc.vcs.HasChanges(ctx); err != nil {
		return nil, err
	}
	if report.Remotes, err = uc.vcs.Remotes(ctx); err != nil {
		return nil, err
	}
	if report.MainBranchExists, err = uc.vcs.BranchExists(ctx, plan.Repo.MainBranch); err != nil {
		return nil, err
	}
	if report.WorkBranchExists, err = uc.vcs.BranchExists(ctx, plan.Repo.WorkBranch); err != nil {
		return nil, err
	}
	return report, nil
}
