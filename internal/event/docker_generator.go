package event

import (
	"context"
	"errors"
	"time"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/docker/docker/api/types/events"
	"github.com/rs/zerolog"
)

// DockerSource turns the Docker event stream into domain stream items.
type DockerSource struct {
	logger zerolog.Logger
	cli    dockerClient
	// resubscribeDelay > 0 reopens the stream after an error instead of closing it.
	resubscribeDelay time.Duration
}

func NewDockerSource(cli dockerClient, resubscribeDelay time.Duration, logger zerolog.Logger) *DockerSource {
	return &DockerSource{
		logger:           logger.With().Str("component", "event_source").Logger(),
		cli:              cli,
		resubscribeDelay: resubscribeDelay,
	}
}

// Subscribe opens an unfiltered event stream. Every stream error is delivered
// as an item. The returned channel is closed when the stream ends for good or
// ctx is cancelled.
func (ds *DockerSource) Subscribe(ctx context.Context) (<-chan domain.StreamItem, error) {
	out := make(chan domain.StreamItem)

	go func() {
		defer close(out)

		var since string
		for {
			eventCh, errCh := ds.cli.Events(ctx, events.ListOptions{Since: since})
			last, err := ds.pump(ctx, eventCh, errCh, out)
			if !last.IsZero() {
				since = last.Add(time.Nanosecond).Format(time.RFC3339Nano)
			}
			if err == nil || ctx.Err() != nil {
				return
			}

			select {
			case out <- domain.StreamItem{Err: err}:
			case <-ctx.Done():
				return
			}

			if ds.resubscribeDelay <= 0 {
				ds.logger.Info().Msg("Docker event stream ended after error")
				return
			}
			ds.logger.Warn().Dur("delay", ds.resubscribeDelay).Msg("Resubscribing to Docker events")
			select {
			case <-time.After(ds.resubscribeDelay):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// pump forwards messages until the stream fails or closes. It returns the
// time of the last forwarded message and the error that ended the stream,
// or nil if the stream closed cleanly or ctx was cancelled.
func (ds *DockerSource) pump(ctx context.Context, eventCh <-chan events.Message, errCh <-chan error, out chan<- domain.StreamItem) (time.Time, error) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			ds.logger.Info().Msg("Docker event source cancelled by context")
			return last, nil
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err == nil {
				continue
			}
			if errors.Is(err, context.Canceled) {
				return last, nil
			}
			return last, err
		case msg, ok := <-eventCh:
			if !ok {
				ds.logger.Info().Msg("Docker events channel closed")
				return last, nil
			}
			if msg.TimeNano > 0 {
				last = time.Unix(0, msg.TimeNano)
			}

			ev, convErr := fromEventsMessage(msg)
			if convErr != nil {
				ds.logger.Debug().Err(convErr).Msg("Skipping docker event message")
				continue
			}

			ds.logger.Trace().Msgf("Received Docker event: %+v", ev)
			select {
			case out <- domain.StreamItem{Event: ev}:
			case <-ctx.Done():
				return last, nil
			}
		}
	}
}
