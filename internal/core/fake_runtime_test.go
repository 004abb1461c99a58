package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	cerrdefs "github.com/containerd/errdefs"
)

type connectCall struct {
	Network     string
	ContainerId string
	Endpoint    domain.EndpointConfig
}

// fakeRuntime is an in-memory container runtime. Connecting a container that
// is already on the network is rejected the way Docker rejects it.
type fakeRuntime struct {
	mu sync.Mutex

	networks   map[string]*domain.Network
	containers map[string]domain.Container
	order      []string

	pingErr    error
	findErr    error
	createErr  error
	listErr    error
	inspectErr map[string]error

	createCalls  int
	inspectCalls int
	connects     []connectCall
	nextIP       int
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		networks:   map[string]*domain.Network{},
		containers: map[string]domain.Container{},
		inspectErr: map[string]error{},
		nextIP:     2,
	}
}

func (f *fakeRuntime) addContainer(id string, labels map[string]string, networks ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Container{Id: id, Name: "name-" + id, Labels: labels, Networks: map[string]domain.Endpoint{}}
	for _, n := range networks {
		c.Networks[n] = domain.Endpoint{IPAddress: "172.17.0.9"}
	}
	f.containers[id] = c
	f.order = append(f.order, id)
}

// moveContainer gives an attached container a new address on network, as a
// restart does.
func (f *fakeRuntime) moveContainer(id, network, ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers[id].Networks[network] = domain.Endpoint{IPAddress: ip}
}

func (f *fakeRuntime) Ping(context.Context) error { return f.pingErr }

func (f *fakeRuntime) FindNetwork(_ context.Context, name string) (*domain.Network, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.networks[name], nil
}

func (f *fakeRuntime) CreateNetwork(_ context.Context, name, driver string) (*domain.Network, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.networks[name]; ok {
		return nil, fmt.Errorf("network with name %s already exists: %w", name, cerrdefs.ErrConflict)
	}
	n := &domain.Network{Id: fmt.Sprintf("net-%d", f.createCalls), Name: name, Driver: driver}
	f.networks[name] = n
	return n, nil
}

func (f *fakeRuntime) ListContainerIds(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.order...), nil
}

func (f *fakeRuntime) InspectContainer(_ context.Context, id string) (domain.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspectCalls++
	if err := f.inspectErr[id]; err != nil {
		return domain.Container{}, err
	}
	c, ok := f.containers[id]
	if !ok {
		return domain.Container{}, fmt.Errorf("no such container %s: %w", id, cerrdefs.ErrNotFound)
	}
	networks := make(map[string]domain.Endpoint, len(c.Networks))
	for k, v := range c.Networks {
		networks[k] = v
	}
	c.Networks = networks
	return c, nil
}

func (f *fakeRuntime) ConnectNetwork(_ context.Context, network, id string, endpoint domain.EndpointConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, connectCall{Network: network, ContainerId: id, Endpoint: endpoint})
	c, ok := f.containers[id]
	if !ok {
		return fmt.Errorf("no such container %s: %w", id, cerrdefs.ErrNotFound)
	}
	if _, attached := c.Networks[network]; attached {
		return fmt.Errorf("endpoint with name %s already exists in network %s: %w", c.Name, network, cerrdefs.ErrPermissionDenied)
	}
	c.Networks[network] = domain.Endpoint{IPAddress: fmt.Sprintf("172.18.0.%d", f.nextIP), Aliases: endpoint.Aliases}
	f.nextIP++
	return nil
}

func (f *fakeRuntime) connectCalls() []connectCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]connectCall(nil), f.connects...)
}

// forbiddenRuntime rejects every connect with a 403 that is not about a
// duplicate endpoint.
type forbiddenRuntime struct {
	*fakeRuntime
}

func (f *forbiddenRuntime) ConnectNetwork(context.Context, string, string, domain.EndpointConfig) error {
	return fmt.Errorf("operation not supported for pre-defined networks: %w", cerrdefs.ErrPermissionDenied)
}

type fakeSource struct {
	ch  chan domain.StreamItem
	err error
}

func (s *fakeSource) Subscribe(context.Context) (<-chan domain.StreamItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	records []domain.AliasRecord
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, rec domain.AliasRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.records = append(p.records, rec)
	return nil
}

func (p *fakePublisher) published() []domain.AliasRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.AliasRecord(nil), p.records...)
}

// recordingAttacher counts Attach calls without touching a runtime.
type recordingAttacher struct {
	mu          sync.Mutex
	ids         []string
	republished []string
	errOn       map[string]error
}

func (r *recordingAttacher) Republish(_ context.Context, c domain.Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.republished = append(r.republished, c.Id)
}

func (r *recordingAttacher) Attach(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return r.errOn[id]
}

func (r *recordingAttacher) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}
