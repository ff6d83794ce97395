package cli

import (
	"os"

	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/infra/command"
	"github.com/m-mizutani/forksync/pkg/infra/docker"
	"github.com/m-mizutani/forksync/pkg/infra/git"
)

// newBackends wires the git and docker clients for plan. Child process
// output goes to stderr so stdout carries only the progress report.
func newBackends(plan *model.Plan) (*git.Client, *docker.Client, error) {
	runner := command.New(
		command.WithStdout(os.Stderr),
		command.WithStderr(os.Stderr),
	)

	ctr, err := docker.New(runner)
	if err != nil {
		return nil, nil, err
	}
	return git.New(plan.Repo.WorkDir, runner), ctr, nil
}
