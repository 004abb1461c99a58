package core

import (
	"context"

	"github.com/auto-dns/docker-network-attach/internal/domain"
)

type runtimeClient interface {
	Ping(ctx context.Context) error
	FindNetwork(ctx context.Context, name string) (*domain.Network, error)
	CreateNetwork(ctx context.Context, name, driver string) (*domain.Network, error)
	ListContainerIds(ctx context.Context) ([]string, error)
	InspectContainer(ctx context.Context, id string) (domain.Container, error)
	ConnectNetwork(ctx context.Context, networkName, containerId string, endpoint domain.EndpointConfig) error
}

type eventSource interface {
	Subscribe(ctx context.Context) (<-chan domain.StreamItem, error)
}

type aliasPublisher interface {
	Publish(ctx context.Context, rec domain.AliasRecord) error
}
