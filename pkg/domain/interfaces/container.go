package interfaces

import (
	"context"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// Container is the container engine and compose backend.
type Container interface {
	// CheckInstalled fails with types.ErrTagMissingDependency when docker or compose is absent
	CheckInstalled(ctx context.Context) error
	// ListByPublishedPort returns running containers publishing the host port
	ListByPublishedPort(ctx context.Context, port int) ([]model.ContainerInfo, error)
	// Remove stops and removes the container forcibly
	Remove(ctx context.Context, id string) error
	ComposeDown(ctx context.Context, opts model.ComposeOptions) error
	ComposeUp(ctx context.Context, opts model.ComposeOptions) error
}
