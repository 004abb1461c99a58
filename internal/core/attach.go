package core

import (
	"context"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/rs/zerolog"
)

// Attacher connects containers to the managed network. Attach may be called
// more than once for the same container; the daemon rejects the duplicate
// and the caller only logs it.
type Attacher struct {
	logger    zerolog.Logger
	rt        runtimeClient
	resolver  AliasResolver
	network   string
	publisher aliasPublisher
}

func NewAttacher(rt runtimeClient, resolver AliasResolver, network string, publisher aliasPublisher, logger zerolog.Logger) *Attacher {
	return &Attacher{
		logger:    logger,
		rt:        rt,
		resolver:  resolver,
		network:   network,
		publisher: publisher,
	}
}

func (a *Attacher) Attach(ctx context.Context, containerId string) error {
	c, err := a.rt.InspectContainer(ctx, containerId)
	if err != nil {
		return NewAttachError(containerId, "inspect", err)
	}

	log := a.logger.With().Str("container_id", domain.ShortId(containerId)).Str("container", c.DisplayName()).Logger()

	var endpoint domain.EndpointConfig
	alias, ok := a.resolver.Resolve(c.Labels)
	if ok {
		endpoint.Aliases = []string{alias}
		log.Info().Str("alias", alias).Msgf("Will connect to %s with alias", a.network)
	} else {
		log.Info().Msgf("Will connect to %s without alias (missing labels)", a.network)
	}

	if err := a.rt.ConnectNetwork(ctx, a.network, containerId, endpoint); err != nil {
		// A restarted container keeps its endpoint but may hold a new address.
		if ok && a.publisher != nil && IsAlreadyAttached(err) {
			a.publish(ctx, log, c, alias)
		}
		return NewAttachError(containerId, "connect", err)
	}
	log.Info().Msgf("Connected container to network %s", a.network)

	if ok && a.publisher != nil {
		a.publish(ctx, log, c, alias)
	}
	return nil
}

// Republish publishes the alias of a container that is already on the
// network, using the address from its inspect result.
func (a *Attacher) Republish(ctx context.Context, c domain.Container) {
	if a.publisher == nil {
		return
	}
	alias, ok := a.resolver.Resolve(c.Labels)
	if !ok {
		return
	}
	log := a.logger.With().Str("container_id", domain.ShortId(c.Id)).Str("container", c.DisplayName()).Logger()
	ep := c.Networks[a.network]
	if ep.IPAddress == "" {
		log.Debug().Msgf("Container has no address on %s, alias not published", a.network)
		return
	}
	a.publishRecord(ctx, log, c, alias, ep.IPAddress)
}

func (a *Attacher) publish(ctx context.Context, log zerolog.Logger, c domain.Container, alias string) {
	attached, err := a.rt.InspectContainer(ctx, c.Id)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read network address, alias not published")
		return
	}
	ep, ok := attached.Networks[a.network]
	if !ok || ep.IPAddress == "" {
		log.Warn().Msgf("Container has no address on %s, alias not published", a.network)
		return
	}
	a.publishRecord(ctx, log, c, alias, ep.IPAddress)
}

func (a *Attacher) publishRecord(ctx context.Context, log zerolog.Logger, c domain.Container, alias, ip string) {
	rec, err := domain.NewAliasRecord(alias, ip, c.Id, c.Name)
	if err != nil {
		log.Warn().Err(err).Msg("Alias not published")
		return
	}
	if err := a.publisher.Publish(ctx, rec); err != nil {
		log.Error().Err(err).Msg("Failed to publish alias")
	}
}

// logAttachFailure logs a failed attach. A rejected duplicate is expected
// when the sweep and the live subscription race, so it is only a warning.
func logAttachFailure(logger zerolog.Logger, err error) {
	if IsAlreadyAttached(err) {
		logger.Warn().Err(err).Msg("Container is already attached")
		return
	}
	logger.Error().Err(err).Msg("Failed to attach container")
}
