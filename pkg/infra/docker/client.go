// Package docker implements interfaces.Container. Containers holding the UI
// port are found and removed through the Docker Engine API; the compose
// stack is driven by the docker compose CLI plugin.
package docker

import (
	"context"
	"strconv"
	"strings"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
	"github.com/m-mizutani/forksync/pkg/infra/command"
)

// EngineAPI is the subset of the Docker Engine client used here
type EngineAPI interface {
	Ping(ctx context.Context) (dockertypes.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

// Client talks to the Docker daemon and the compose plugin
type Client struct {
	engine  EngineAPI
	runner  command.Runner
	program string
}

// Option configures Client
type Option func(*Client)

// WithEngine replaces the Docker Engine API client
func WithEngine(engine EngineAPI) Option {
	return func(c *Client) {
		c.engine = engine
	}
}

// WithProgram overrides the docker executable
func WithProgram(program string) Option {
	return func(c *Client) {
		c.program = program
	}
}

var _ interfaces.Container = (*Client)(nil)

// New creates a Client. Unless WithEngine is given, the Engine API client is
// configured from DOCKER_HOST and related environment variables.
func New(runner command.Runner, opts ...Option) (*Client, error) {
	c := &Client{
		runner:  runner,
		program: "docker",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.engine == nil {
		engine, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create docker engine client")
		}
		c.engine = engine
	}

	return c, nil
}

// Close releases the Engine API connection
func (c *Client) Close() error {
	return c.engine.Close()
}

// CheckInstalled verifies the docker CLI, the compose plugin and the daemon
func (c *Client) CheckInstalled(ctx context.Context) error {
	if _, err := c.runner.LookPath(c.program); err != nil {
		return goerr.Wrap(err, "docker is not installed")
	}

	if _, err := c.runner.Run(ctx, command.Cmd{
		Name: c.program,
		Args: []string{"compose", "version"},
	}); err != nil {
		return goerr.Wrap(err, "docker compose plugin is not available",
			goerr.T(types.ErrTagMissingDependency))
	}

	if _, err := c.engine.Ping(ctx); err != nil {
		return goerr.Wrap(err, "docker daemon is not reachable",
			goerr.T(types.ErrTagMissingDependency))
	}
	return nil
}

// ListByPublishedPort returns running containers that publish port on the host
func (c *Client) ListByPublishedPort(ctx context.Context, port int) ([]model.ContainerInfo, error) {
	list, err := c.engine.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("publish", strconv.Itoa(port))),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list containers", goerr.V("port", port))
	}

	result := make([]model.ContainerInfo, 0, len(list))
	for _, s := range list {
		info := model.ContainerInfo{
			ID:    s.ID,
			Image: s.Image,
		}
		if len(s.Names) > 0 {
			info.Name = strings.TrimPrefix(s.Names[0], "/")
		}
		result = append(result, info)
	}
	return result, nil
}

// Remove force-removes a container, stopping it first if running
func (c *Client) Remove(ctx context.Context, id string) error {
	if err := c.engine.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return goerr.Wrap(err, "failed to remove container", goerr.V("container_id", id))
	}
	return nil
}

func composeArgs(opts model.ComposeOptions, sub ...string) []string {
	args := []string{"compose"}
	for _, f := range opts.Files {
		args = append(args, "-f", f)
	}
	if opts.Profile != "" {
		args = append(args, "--profile", opts.Profile)
	}
	return append(args, sub...)
}

// ComposeDown stops the stack and removes orphaned containers
func (c *Client) ComposeDown(ctx context.Context, opts model.ComposeOptions) error {
	if _, err := c.runner.Run(ctx, command.Cmd{
		Name:   c.program,
		Args:   composeArgs(opts, "down", "--remove-orphans"),
		Dir:    opts.Dir,
		Stream: true,
	}); err != nil {
		return goerr.Wrap(err, "docker compose down failed", goerr.V("profile", opts.Profile))
	}
	return nil
}

// ComposeUp rebuilds images and recreates every container of the profile
func (c *Client) ComposeUp(ctx context.Context, opts model.ComposeOptions) error {
	if _, err := c.runner.Run(ctx, command.Cmd{
		Name:   c.program,
		Args:   composeArgs(opts, "up", "-d", "--build", "--force-recreate", "--remove-orphans"),
		Dir:    opts.Dir,
		Stream: true,
	}); err != nil {
		return goerr.Wrap(err, "docker compose up failed", goerr.V("profile", opts.Profile))
	}
	return nil
}
