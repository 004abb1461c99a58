package core

import (
	"context"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/rs/zerolog"
)

// Dispatcher reacts to items from the live event stream. Items are handled
// one at a time in arrival order.
type Dispatcher struct {
	logger   zerolog.Logger
	attacher attacher
}

func NewDispatcher(a attacher, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger, attacher: a}
}

func (d *Dispatcher) Handle(ctx context.Context, item domain.StreamItem) {
	if item.Err != nil {
		d.logger.Error().Err(item.Err).Msg("Event stream error")
		return
	}

	ev := item.Event
	if !ev.IsContainerStart() {
		return
	}

	log := d.logger.With().Str("container_id", domain.ShortId(ev.ActorId)).Str("container", ev.Attributes["name"]).Logger()
	log.Info().Msg("New container started")
	if err := d.attacher.Attach(ctx, ev.ActorId); err != nil {
		logAttachFailure(log, err)
	}
}
