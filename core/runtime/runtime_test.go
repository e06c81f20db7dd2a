package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/verticle"
)

func newTestRuntime(t *testing.T, cfg Config) *Runtime {
	r, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	return r
}

func TestConfig_threadsRejected(t *testing.T) {
	_, err := New(Config{Threads: -1})
	require.Error(t, err)

	var verr *verticle.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Threads", verr.Violations[0].Field)
}

func TestRuntime_threadsApplied(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 4})
	require.Equal(t, 4, r.Loops().Size())
}

func TestRuntime_defaultBus(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 1})
	require.NotNil(t, r.Bus())
}

func TestRuntime_contextAmbient(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 2})

	// no ambient context: one of the shared loops
	c := r.Context(testContext(t))
	require.NotNil(t, c)

	// ambient context wins
	w := eventloop.NewWorker("ambient", nil)
	defer w.Close()
	got := r.Context(eventloop.With(testContext(t), w))
	require.Same(t, w, got)
}

func TestRuntime_shutdownStopsDeployments(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 2})

	stopped := make(chan struct{}, 1)
	_, err := r.Deploy(verticle.Supply(verticle.Options{
		OnStart: func(*eventloop.Context) (any, error) { return nil, nil },
		OnStop: func(*eventloop.Context, verticle.State) (any, error) {
			stopped <- struct{}{}
			return nil, nil
		},
	}), DeployOptions{}).Await(testContext(t))
	require.NoError(t, err)

	require.NoError(t, r.Shutdown(testContext(t)))

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop hook not invoked on shutdown")
	}

	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after shutdown")
	}
}

func TestRuntime_shutdownIdempotent(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 1})
	require.NoError(t, r.Shutdown(testContext(t)))
	require.NoError(t, r.Shutdown(testContext(t)))
}

func TestRuntime_stopTriggersShutdown(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 1})
	r.Stop()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("Stop did not complete shutdown")
	}
}

func TestRuntime_deployAfterShutdown(t *testing.T) {
	r := newTestRuntime(t, Config{Threads: 1})
	require.NoError(t, r.Shutdown(testContext(t)))

	_, err := r.Deploy(verticle.Supply(verticle.Options{
		OnStart: func(*eventloop.Context) (any, error) { return nil, nil },
	}), DeployOptions{}).Await(testContext(t))
	require.ErrorIs(t, err, ErrClosed)
}

func TestRuntime_hookErrorEscalated(t *testing.T) {
	caught := make(chan error, 1)
	r := newTestRuntime(t, Config{
		Threads: 1,
		OnError: func(err error) { caught <- err },
	})

	_, err := r.Deploy(verticle.Supply(verticle.Options{
		OnStart: func(*eventloop.Context) (any, error) { return nil, errBoom },
	}), DeployOptions{}).Await(testContext(t))
	require.ErrorIs(t, err, errBoom)

	select {
	case got := <-caught:
		require.ErrorIs(t, got, errBoom)
	case <-time.After(time.Second):
		t.Fatal("runtime error handler not invoked")
	}
}
