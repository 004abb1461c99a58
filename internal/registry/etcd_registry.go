package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/auto-dns/docker-network-attach/internal/config"
	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type etcdClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	KeepAlive(ctx context.Context, id clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error)
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
	Close() error
}

var ErrNotStarted = errors.New("etcd registry not started")

// EtcdRegistry publishes alias records for CoreDNS. Every key it writes is
// bound to a single lease, so records disappear once the process stops
// refreshing it.
type EtcdRegistry struct {
	client   etcdClient
	cfg      *config.EtcdConfig
	hostname string
	logger   zerolog.Logger
	now      func() time.Time

	mu    sync.Mutex
	lease clientv3.LeaseID
}

// NewEtcdClient dials the configured endpoints.
func NewEtcdClient(cfg *config.EtcdConfig) (*clientv3.Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: time.Duration(cfg.DialTimeout * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return cli, nil
}

func NewEtcdRegistry(client etcdClient, cfg *config.EtcdConfig, hostname string, logger zerolog.Logger) *EtcdRegistry {
	return &EtcdRegistry{
		client:   client,
		cfg:      cfg,
		hostname: hostname,
		logger:   logger.With().Str("component", "etcd_registry").Logger(),
		now:      time.Now,
	}
}

// storedRecord is an alias record as read back from etcd.
type storedRecord struct {
	key   string
	lease clientv3.LeaseID
	owner string
	rec   domain.AliasRecord
}

// Start grants the lease and keeps it alive until ctx is cancelled. Records
// this host left under an older lease are removed; the startup sweep
// publishes the current ones again.
func (er *EtcdRegistry) Start(ctx context.Context) error {
	grant, err := er.client.Grant(ctx, er.cfg.LeaseTTL)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}
	keepAlive, err := er.client.KeepAlive(ctx, grant.ID)
	if err != nil {
		_, _ = er.client.Revoke(context.WithoutCancel(ctx), grant.ID)
		return fmt.Errorf("failed to keep lease alive: %w", err)
	}

	er.mu.Lock()
	er.lease = grant.ID
	er.mu.Unlock()

	go func() {
		for range keepAlive {
		}
		if ctx.Err() == nil {
			er.logger.Warn().Msgf("[etcd_registry] Lease %x keepalive stopped; published aliases will expire", grant.ID)
		}
	}()

	er.logger.Info().Msgf("[etcd_registry] Granted lease %x (ttl=%ds)", grant.ID, grant.TTL)

	if removed, err := er.removeStale(ctx, grant.ID); err != nil {
		er.logger.Warn().Err(err).Msg("[etcd_registry] Could not remove records from a previous run")
	} else if removed > 0 {
		er.logger.Info().Msgf("[etcd_registry] Removed %d records from a previous run", removed)
	}
	return nil
}

// removeStale deletes records owned by this host that are not bound to
// lease. They are left behind when the process dies without revoking its
// lease and would otherwise resolve to old addresses until the TTL expires.
func (er *EtcdRegistry) removeStale(ctx context.Context, lease clientv3.LeaseID) (int, error) {
	stored, err := er.list(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, s := range stored {
		if s.owner != er.hostname || s.lease == lease {
			continue
		}
		if _, err := er.client.Delete(ctx, s.key); err != nil {
			return removed, fmt.Errorf("delete %s: %w", s.key, err)
		}
		er.logger.Debug().Msgf("[etcd_registry] Removed stale %s", s.rec.Render())
		removed++
	}
	return removed, nil
}

// Publish writes the alias record under the lease.
func (er *EtcdRegistry) Publish(ctx context.Context, rec domain.AliasRecord) error {
	er.mu.Lock()
	lease := er.lease
	er.mu.Unlock()
	if lease == clientv3.NoLease {
		return ErrNotStarted
	}

	key := keyForRecord(er.cfg.PathPrefix, rec)
	value, err := marshalEtcdValue(rec, er.hostname, er.now())
	if err != nil {
		return err
	}
	if _, err := er.client.Put(ctx, key, value, clientv3.WithLease(lease)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	er.logger.Info().Msgf("[etcd_registry] Published %s at %s", rec.Render(), key)
	return nil
}

// list reads every alias record under the configured prefix. Entries that
// do not decode are skipped.
func (er *EtcdRegistry) list(ctx context.Context) ([]storedRecord, error) {
	resp, err := er.client.Get(ctx, er.cfg.PathPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", er.cfg.PathPrefix, err)
	}
	var stored []storedRecord
	for _, kv := range resp.Kvs {
		rec, owner, err := unmarshalEtcdValue(string(kv.Key), string(kv.Value), er.cfg.PathPrefix)
		if err != nil {
			er.logger.Error().Err(err).Msgf("[etcd_registry] Failed to parse key: %s", kv.Key)
			continue
		}
		stored = append(stored, storedRecord{key: string(kv.Key), lease: clientv3.LeaseID(kv.Lease), owner: owner, rec: rec})
	}
	return stored, nil
}

// Close revokes the lease, removing every published record, and closes the client.
func (er *EtcdRegistry) Close(ctx context.Context) error {
	er.mu.Lock()
	lease := er.lease
	er.lease = clientv3.NoLease
	er.mu.Unlock()

	var firstErr error
	if lease != clientv3.NoLease {
		if _, err := er.client.Revoke(ctx, lease); err != nil {
			firstErr = fmt.Errorf("revoke lease: %w", err)
		}
	}
	if err := er.client.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close etcd client: %w", err)
	}
	return firstErr
}
