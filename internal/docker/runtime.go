package docker

import (
	"context"
	"fmt"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
)

// Runtime exposes the handful of Docker API calls the watcher needs in
// domain terms. It is safe for concurrent use.
type Runtime struct {
	cli dockerClient
}

// NewClient connects to the daemon described by the DOCKER_* environment.
func NewClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return cli, nil
}

func NewRuntime(cli dockerClient) *Runtime {
	return &Runtime{cli: cli}
}

func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker daemon: %w", err)
	}
	return nil
}

// FindNetwork returns the network whose name is exactly name. The daemon's
// name filter matches substrings, so results are checked again here.
func (r *Runtime) FindNetwork(ctx context.Context, name string) (*domain.Network, error) {
	args := filters.NewArgs(filters.Arg("name", name))
	networks, err := r.cli.NetworkList(ctx, network.ListOptions{Filters: args})
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	for _, n := range networks {
		if n.Name == name {
			return &domain.Network{Id: n.ID, Name: n.Name, Driver: n.Driver}, nil
		}
	}
	return nil, nil
}

// CreateNetwork creates a network with the given driver. Daemons speaking API
// 1.44 and later always reject a duplicate name.
func (r *Runtime) CreateNetwork(ctx context.Context, name, driver string) (*domain.Network, error) {
	resp, err := r.cli.NetworkCreate(ctx, name, network.CreateOptions{Driver: driver})
	if err != nil {
		return nil, fmt.Errorf("create network %s: %w", name, err)
	}
	return &domain.Network{Id: resp.ID, Name: name, Driver: driver}, nil
}

// ListContainerIds lists every container, stopped ones included.
func (r *Runtime) ListContainerIds(ctx context.Context) ([]string, error) {
	summaries, err := r.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (r *Runtime) InspectContainer(ctx context.Context, id string) (domain.Container, error) {
	resp, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		return domain.Container{}, fmt.Errorf("inspect container %s: %w", domain.ShortId(id), err)
	}
	return fromInspectResponse(id, resp), nil
}

func (r *Runtime) ConnectNetwork(ctx context.Context, networkName, containerId string, endpoint domain.EndpointConfig) error {
	settings := &network.EndpointSettings{Aliases: endpoint.Aliases}
	if err := r.cli.NetworkConnect(ctx, networkName, containerId, settings); err != nil {
		return fmt.Errorf("connect %s to network %s: %w", domain.ShortId(containerId), networkName, err)
	}
	return nil
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}
