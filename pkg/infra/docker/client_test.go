package docker_test

import (
	"context"
	"errors"
	"testing"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
	"github.com/m-mizutani/forksync/pkg/infra/command"
	"github.com/m-mizutani/forksync/pkg/infra/docker"
)

type mockEngine struct {
	pingErr    error
	containers []container.Summary
	listOpts   []container.ListOptions
	removed    []string
	removeOpts []container.RemoveOptions
	removeErr  error
}

func (m *mockEngine) Ping(ctx context.Context) (dockertypes.Ping, error) {
	return dockertypes.Ping{}, m.pingErr
}

func (m *mockEngine) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	m.listOpts = append(m.listOpts, options)
	return m.containers, nil
}

func (m *mockEngine) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	m.removed = append(m.removed, containerID)
	m.removeOpts = append(m.removeOpts, options)
	return m.removeErr
}

func (m *mockEngine) Close() error { return nil }

type mockRunner struct {
	cmds       []command.Cmd
	runErr     error
	lookupErr  error
	lookedUpAs []string
}

func (m *mockRunner) Run(ctx context.Context, cmd command.Cmd) (*command.Result, error) {
	m.cmds = append(m.cmds, cmd)
	return &command.Result{}, m.runErr
}

func (m *mockRunner) LookPath(name string) (string, error) {
	m.lookedUpAs = append(m.lookedUpAs, name)
	if m.lookupErr != nil {
		return "", m.lookupErr
	}
	return "/usr/bin/" + name, nil
}

func newClient(t *testing.T, engine *mockEngine, runner *mockRunner) *docker.Client {
	t.Helper()
	c, err := docker.New(runner, docker.WithEngine(engine))
	gt.NoError(t, err)
	return c
}

func TestClient_ListByPublishedPort(t *testing.T) {
	engine := &mockEngine{
		containers: []container.Summary{
			{ID: "aaaaaaaaaaaaaaaa", Names: []string{"/archon-ui"}, Image: "archon-ui:latest"},
			{ID: "bbbbbbbbbbbbbbbb", Image: "nginx"},
		},
	}
	c := newClient(t, engine, &mockRunner{})

	list, err := c.ListByPublishedPort(context.Background(), 3737)
	gt.NoError(t, err)
	gt.A(t, list).Length(2)
	gt.Equal(t, list[0], model.ContainerInfo{ID: "aaaaaaaaaaaaaaaa", Name: "archon-ui", Image: "archon-ui:latest"})
	gt.Equal(t, list[1].Name, "")

	gt.A(t, engine.listOpts).Length(1)
	gt.Equal(t, engine.listOpts[0].Filters.Get("publish"), []string{"3737"})
	gt.False(t, engine.listOpts[0].All)
}

func TestClient_Remove(t *testing.T) {
	engine := &mockEngine{}
	c := newClient(t, engine, &mockRunner{})

	gt.NoError(t, c.Remove(context.Background(), "abc"))
	gt.Equal(t, engine.removed, []string{"abc"})
	gt.True(t, engine.removeOpts[0].Force)

	engine.removeErr = errors.New("no such container")
	gt.Error(t, c.Remove(context.Background(), "def"))
}

func TestClient_ComposeArgs(t *testing.T) {
	runner := &mockRunner{}
	c := newClient(t, &mockEngine{}, runner)
	ctx := context.Background()
	opts := model.ComposeOptions{
		Dir:     "/repo",
		Files:   []string{"docker-compose.yml", "docker-compose.override.yml"},
		Profile: "full",
	}

	gt.NoError(t, c.ComposeDown(ctx, opts))
	gt.NoError(t, c.ComposeUp(ctx, opts))

	gt.A(t, runner.cmds).Length(2)
	gt.Equal(t, runner.cmds[0].Args, []string{
		"compose", "-f", "docker-compose.yml", "-f", "docker-compose.override.yml",
		"--profile", "full", "down", "--remove-orphans",
	})
	gt.Equal(t, runner.cmds[1].Args, []string{
		"compose", "-f", "docker-compose.yml", "-f", "docker-compose.override.yml",
		"--profile", "full", "up", "-d", "--build", "--force-recreate", "--remove-orphans",
	})
	gt.Equal(t, runner.cmds[1].Dir, "/repo")
	gt.True(t, runner.cmds[1].Stream)
}

func TestClient_ComposeWithoutProfile(t *testing.T) {
	runner := &mockRunner{}
	c := newClient(t, &mockEngine{}, runner)

	gt.NoError(t, c.ComposeDown(context.Background(), model.ComposeOptions{}))
	gt.Equal(t, runner.cmds[0].Args, []string{"compose", "down", "--remove-orphans"})
}

func TestClient_CheckInstalled(t *testing.T) {
	t.Run("all available", func(t *testing.T) {
		runner := &mockRunner{}
		c := newClient(t, &mockEngine{}, runner)
		gt.NoError(t, c.CheckInstalled(context.Background()))
		gt.Equal(t, runner.lookedUpAs, []string{"docker"})
		gt.Equal(t, runner.cmds[0].Args, []string{"compose", "version"})
	})

	t.Run("docker missing", func(t *testing.T) {
		runner := &mockRunner{
			lookupErr: goerr.New("not found", goerr.T(types.ErrTagMissingDependency)),
		}
		c := newClient(t, &mockEngine{}, runner)
		err := c.CheckInstalled(context.Background())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagMissingDependency))
	})

	t.Run("compose plugin missing", func(t *testing.T) {
		runner := &mockRunner{runErr: errors.New("unknown command: compose")}
		c := newClient(t, &mockEngine{}, runner)
		err := c.CheckInstalled(context.Background())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagMissingDependency))
	})

	t.Run("daemon down", func(t *testing.T) {
		c := newClient(t, &mockEngine{pingErr: errors.New("connection refused")}, &mockRunner{})
		err := c.CheckInstalled(context.Background())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagMissingDependency))
	})
}
