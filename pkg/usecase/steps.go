package usecase

import (
	"fmt"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// Step names, in execution order
const (
	StepPreflight     = "preflight"
	StepRemotes       = "remotes"
	StepFetch         = "fetch"
	StepAutosave      = "autosave"
	StepSyncMain      = "sync-main"
	StepMirror        = "mirror-branches"
	StepWorkBranch    = "work-branch"
	StepRuntimeBranch = "runtime-branch"
	StepEvictPort     = "evict-port"
	StepComposeDown   = "compose-down"
	StepComposeUp     = "compose-up"
	StepReport        = "report"
)

// DescribeStep returns a one-line human description of a step for plan
func DescribeStep(plan *model.Plan, name string) string {
	repo := plan.Repo
	switch name {
	case StepPreflight:
		return "check git checkout and required tools"
	case StepRemotes:
		return fmt.Sprintf("point %s and %s at configured URLs", repo.ForkRemote, repo.UpstreamRemote)
	case StepFetch:
		return fmt.Sprintf("fetch all remotes with prune, tags from %s", repo.UpstreamRemote)
	case StepAutosave:
		return "commit uncommitted changes on the current branch"
	case StepSyncMain:
		return fmt.Sprintf("fast-forward %s to %s and push to %s", repo.MainBranch, repo.UpstreamMain(), repo.ForkRemote)
	case StepMirror:
		return fmt.Sprintf("mirror %s branches to %s", repo.UpstreamRemote, repo.ForkRemote)
	case StepWorkBranch:
		return fmt.Sprintf("rebase %s onto %s (merge on conflict) and push", repo.WorkBranch, repo.ForkMain())
	case StepRuntimeBranch:
		return fmt.Sprintf("switch to %s for the runtime", plan.RuntimeBranchName())
	case StepEvictPort:
		return fmt.Sprintf("remove containers publishing port %d", plan.Docker.UIPort)
	case StepComposeDown:
		return "docker compose down --remove-orphans"
	case StepComposeUp:
		return fmt.Sprintf("docker compose --profile %s up -d --build --force-recreate", plan.Docker.Profile)
	case StepReport:
		return "report branch status"
	}
	return name
}

func stepNames(plan *model.Plan) []string {
	steps := []string{StepPreflight, StepRemotes, StepFetch, StepAutosave, StepSyncMain}
	if plan.Repo.MirrorBranches {
		steps = append(steps, StepMirror)
	}
	steps = append(steps, StepWorkBranch)
	if !plan.Docker.Skip {
		steps = append(steps, StepRuntimeBranch, StepEvictPort, StepComposeDown, StepComposeUp)
	}
	return append(steps, StepReport)
}
