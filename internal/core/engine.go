package core

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/auto-dns/docker-network-attach/internal/config"
	"github.com/rs/zerolog"
)

// Watcher keeps the managed network populated: it ensures the network
// exists, sweeps pre-existing containers, and attaches new ones as they start.
type Watcher struct {
	logger     zerolog.Logger
	rt         runtimeClient
	source     eventSource
	ensurer    *NetworkEnsurer
	sweeper    *Sweeper
	dispatcher *Dispatcher
	network    string
}

func NewWatcher(logger zerolog.Logger, cfg *config.AppConfig, rt runtimeClient, source eventSource, publisher aliasPublisher) *Watcher {
	logger = logger.With().Str("component", "watcher").Logger()
	attacher := NewAttacher(rt, NewAliasResolver(cfg), cfg.NetworkName, publisher, logger)
	return &Watcher{
		logger:     logger,
		rt:         rt,
		source:     source,
		ensurer:    NewNetworkEnsurer(rt, cfg.NetworkName, cfg.NetworkDriver, logger),
		sweeper:    NewSweeper(rt, attacher, cfg.NetworkName, logger),
		dispatcher: NewDispatcher(attacher, logger),
		network:    cfg.NetworkName,
	}
}

// Run blocks until a signal arrives on signals, ctx is cancelled, or the
// event stream closes. Only an unreachable runtime or a failed subscription
// is returned as an error. Attaches still in flight from the sweep are not
// waited for.
func (w *Watcher) Run(ctx context.Context, signals <-chan os.Signal) error {
	if err := w.rt.Ping(ctx); err != nil {
		return fmt.Errorf("container runtime unreachable: %w", err)
	}

	if outcome, err := w.ensurer.Ensure(ctx); err != nil {
		w.logger.Warn().Err(err).Str("network", w.network).Msg("Could not ensure network exists, continuing")
	} else {
		w.logger.Debug().Str("network", w.network).Stringer("outcome", outcome).Msg("Network ensured")
	}

	// Subscribe before sweeping so a container started mid-sweep is seen by
	// at least one of the two paths.
	items, err := w.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to runtime events: %w", err)
	}

	go w.sweeper.Sweep(ctx)

	w.logger.Info().Str("network", w.network).Msg("Listening for container events")
	for {
		select {
		case item, ok := <-items:
			if !ok {
				w.logger.Info().Msg("Runtime event stream closed")
				return nil
			}
			w.dispatcher.Handle(ctx, item)
		case sig := <-signals:
			switch sig {
			case syscall.SIGTERM:
				w.logger.Info().Msg("Received SIGTERM, shutting down gracefully")
			case os.Interrupt:
				w.logger.Info().Msg("Received SIGINT (Ctrl+C), shutting down")
			default:
				w.logger.Info().Msgf("Received signal %v, shutting down", sig)
			}
			return nil
		case <-ctx.Done():
			w.logger.Info().Msg("Watcher cancelled by context")
			return nil
		}
	}
}
