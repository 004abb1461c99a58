package core

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	err error
}

func startWatcher(t *testing.T, ctx context.Context, w *Watcher, signals chan os.Signal) <-chan runResult {
	t.Helper()
	done := make(chan runResult, 1)
	go func() {
		done <- runResult{err: w.Run(ctx, signals)}
	}()
	return done
}

func waitRun(t *testing.T, done <-chan runResult) error {
	t.Helper()
	select {
	case res := <-done:
		return res.err
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop in time")
		return nil
	}
}

func TestWatcher_RuntimeUnreachableIsFatal(t *testing.T) {
	rt := newFakeRuntime()
	rt.pingErr = errors.New("dial unix /var/run/docker.sock: connect: no such file or directory")
	source := &fakeSource{ch: make(chan domain.StreamItem)}
	w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)

	err := w.Run(context.Background(), nil)

	assert.ErrorIs(t, err, rt.pingErr)
	assert.Zero(t, rt.createCalls)
}

func TestWatcher_SubscribeFailure(t *testing.T) {
	rt := newFakeRuntime()
	source := &fakeSource{err: errors.New("events unavailable")}
	w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)

	err := w.Run(context.Background(), nil)

	assert.ErrorIs(t, err, source.err)
}

func TestWatcher_SweepsAndAttachesStartedContainers(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("old", composeLabels("shop", "db"))
	source := &fakeSource{ch: make(chan domain.StreamItem)}
	w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)

	done := startWatcher(t, context.Background(), w, make(chan os.Signal, 1))

	require.Eventually(t, func() bool { return len(rt.connectCalls()) == 1 }, time.Second, 5*time.Millisecond)

	rt.addContainer("new", composeLabels("shop", "web"))
	source.ch <- domain.StreamItem{Event: domain.RuntimeEvent{Type: domain.EventTypeContainer, Action: "start", ActorId: "new"}}
	source.ch <- domain.StreamItem{Event: domain.RuntimeEvent{Type: domain.EventTypeContainer, Action: "die", ActorId: "new"}}
	source.ch <- domain.StreamItem{Err: errors.New("transient decode error")}
	close(source.ch)

	require.NoError(t, waitRun(t, done))

	calls := rt.connectCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "old", calls[0].ContainerId)
	assert.Equal(t, []string{"db.shop.svc.cluster.local"}, calls[0].Endpoint.Aliases)
	assert.Equal(t, "new", calls[1].ContainerId)
	assert.Equal(t, []string{"web.shop.svc.cluster.local"}, calls[1].Endpoint.Aliases)
	assert.Equal(t, 1, rt.createCalls)
}

func TestWatcher_ExistingNetworkNotRecreated(t *testing.T) {
	rt := newFakeRuntime()
	rt.networks[testNetwork] = &domain.Network{Id: "n1", Name: testNetwork, Driver: "bridge"}
	source := &fakeSource{ch: make(chan domain.StreamItem)}
	close(source.ch)
	w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)

	require.NoError(t, w.Run(context.Background(), nil))

	assert.Zero(t, rt.createCalls)
}

func TestWatcher_EnsureFailureIsNotFatal(t *testing.T) {
	rt := newFakeRuntime()
	rt.createErr = errors.New("name race")
	source := &fakeSource{ch: make(chan domain.StreamItem)}
	close(source.ch)
	w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)

	assert.NoError(t, w.Run(context.Background(), nil))
	assert.Equal(t, 1, rt.createCalls)
}

func TestWatcher_ShutdownSignals(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGTERM, os.Interrupt} {
		t.Run(sig.String(), func(t *testing.T) {
			rt := newFakeRuntime()
			source := &fakeSource{ch: make(chan domain.StreamItem)}
			w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)
			signals := make(chan os.Signal, 1)

			done := startWatcher(t, context.Background(), w, signals)
			signals <- sig

			assert.NotPanics(t, func() {
				assert.NoError(t, waitRun(t, done))
			})
		})
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	rt := newFakeRuntime()
	source := &fakeSource{ch: make(chan domain.StreamItem)}
	w := NewWatcher(zerolog.Nop(), testConfig(), rt, source, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := startWatcher(t, ctx, w, nil)
	cancel()

	assert.NoError(t, waitRun(t, done))
}
