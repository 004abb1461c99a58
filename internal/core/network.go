package core

import (
	"context"
	"fmt"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/rs/zerolog"
)

type NetworkEnsurer struct {
	logger zerolog.Logger
	rt     runtimeClient
	name   string
	driver string
}

func NewNetworkEnsurer(rt runtimeClient, name, driver string, logger zerolog.Logger) *NetworkEnsurer {
	return &NetworkEnsurer{logger: logger, rt: rt, name: name, driver: driver}
}

// Ensure creates the managed network unless a network with that exact name
// already exists. Calling it again once the network exists only queries.
func (ne *NetworkEnsurer) Ensure(ctx context.Context) (domain.EnsureOutcome, error) {
	existing, err := ne.rt.FindNetwork(ctx, ne.name)
	if err != nil {
		return domain.EnsureOutcome{}, fmt.Errorf("look up network %s: %w", ne.name, err)
	}
	if existing != nil {
		ne.logger.Info().Str("network", ne.name).Msg("Network already exists")
		return domain.EnsureOutcome{Status: domain.NetworkAlreadyExists, NetworkId: existing.Id}, nil
	}

	ne.logger.Info().Str("network", ne.name).Msg("Network not found, creating")
	created, err := ne.rt.CreateNetwork(ctx, ne.name, ne.driver)
	if err != nil {
		return domain.EnsureOutcome{}, err
	}
	ne.logger.Info().Str("network", ne.name).Str("driver", created.Driver).Str("id", created.Id).Msg("Created network")
	return domain.EnsureOutcome{Status: domain.NetworkCreated, NetworkId: created.Id}, nil
}
