package core

import (
	"context"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/rs/zerolog"
)

type attacher interface {
	Attach(ctx context.Context, containerId string) error
	Republish(ctx context.Context, c domain.Container)
}

// Sweeper attaches every container that existed at startup.
type Sweeper struct {
	logger   zerolog.Logger
	rt       runtimeClient
	attacher attacher
	network  string
}

func NewSweeper(rt runtimeClient, a attacher, network string, logger zerolog.Logger) *Sweeper {
	return &Sweeper{logger: logger, rt: rt, attacher: a, network: network}
}

// Sweep lists all containers, stopped ones included, and attaches those not
// yet on the network. Members keep their endpoint but have their alias
// published again. Failures for one container never stop the sweep.
func (s *Sweeper) Sweep(ctx context.Context) {
	s.logger.Info().Msg("Checking existing containers")

	ids, err := s.rt.ListContainerIds(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Could not list containers, skipping sweep")
		return
	}

	var attached, skipped, failed int
	for _, id := range ids {
		if id == "" {
			continue
		}
		if ctx.Err() != nil {
			s.logger.Info().Msg("Sweep cancelled")
			return
		}

		log := s.logger.With().Str("container_id", domain.ShortId(id)).Logger()
		c, err := s.rt.InspectContainer(ctx, id)
		if err != nil {
			log.Error().Err(err).Msg("Could not inspect container")
			failed++
			continue
		}
		if c.OnNetwork(s.network) {
			log.Debug().Msgf("Container already on network %s", s.network)
			s.attacher.Republish(ctx, c)
			skipped++
			continue
		}

		log.Info().Msg("Connecting pre-existing container")
		if err := s.attacher.Attach(ctx, id); err != nil {
			logAttachFailure(log, err)
			failed++
			continue
		}
		attached++
	}

	s.logger.Info().Int("attached", attached).Int("already_member", skipped).Int("failed", failed).Msg("Sweep complete")
}
