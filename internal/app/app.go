package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/auto-dns/docker-network-attach/internal/config"
	"github.com/auto-dns/docker-network-attach/internal/core"
	"github.com/auto-dns/docker-network-attach/internal/docker"
	"github.com/auto-dns/docker-network-attach/internal/event"
	"github.com/auto-dns/docker-network-attach/internal/registry"
	dockerCli "github.com/docker/docker/client"
	"github.com/rs/zerolog"
)

type App struct {
	dockerClient *dockerCli.Client
	registry     *registry.EtcdRegistry
	watcher      *core.Watcher
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	// Docker CLI
	dockerClient, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	runtime := docker.NewRuntime(dockerClient)

	var resubscribeDelay time.Duration
	if cfg.App.Resubscribe {
		resubscribeDelay = time.Duration(cfg.App.ResubscribeDelay * float64(time.Second))
	}
	source := event.NewDockerSource(dockerClient, resubscribeDelay, logger)

	a := &App{
		dockerClient: dockerClient,
		logger:       logger,
	}

	// etcd CLI, only when alias publication is on
	if cfg.Etcd.Enabled {
		etcdClient, err := registry.NewEtcdClient(&cfg.Etcd)
		if err != nil {
			_ = dockerClient.Close()
			return nil, err
		}
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown-host"
		}
		a.registry = registry.NewEtcdRegistry(etcdClient, &cfg.Etcd, hostname, logger)
		a.watcher = core.NewWatcher(logger, &cfg.App, runtime, source, a.registry)
	} else {
		a.watcher = core.NewWatcher(logger, &cfg.App, runtime, source, nil)
	}

	return a, nil
}

// Run starts the watcher and blocks until it stops.
func (a *App) Run(ctx context.Context, signals <-chan os.Signal) error {
	a.logger.Info().Msg("Application starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.registry != nil {
		if err := a.registry.Start(ctx); err != nil {
			return fmt.Errorf("start alias registry: %w", err)
		}
	}

	return a.watcher.Run(ctx, signals)
}

func (a *App) Close() error {
	var firstErr error
	if a.registry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.registry.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close etcd registry: %w", err)
		}
	}
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close docker client: %w", err)
		}
	}
	return firstErr
}
