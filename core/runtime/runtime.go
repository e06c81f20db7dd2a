package runtime

import (
	"context"
	"log/slog"
	goruntime "runtime"
	"sync"

	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/verticle"
	"github.com/codewandler/vrtx-go/ports/bus"
)

type (
	// Config configures a Runtime. It is consumed once by New; the zero
	// value is usable.
	Config struct {
		// Threads is the number of shared event-loop contexts.
		// 0 uses 2×NumCPU. Negative values are rejected.
		Threads int

		// OnError receives hook failures that have no handler of their
		// own. Defaults to logging. Must not block.
		OnError func(err error)

		Log *slog.Logger

		// Bus is the pub/sub collaborator used by actor deployments.
		// Defaults to an in-process bus. The runtime closes it on Shutdown.
		Bus bus.Bus

		Metrics Metrics

		// Context bounds the runtime's lifetime.
		Context context.Context
	}

	// Runtime wraps the event-loop group, the deployment table and the bus.
	// It is the root object: everything deployable hangs off of it.
	Runtime struct {
		log     *slog.Logger
		ctx     context.Context
		cancel  context.CancelFunc
		loops   *eventloop.Group
		bus     bus.Bus
		metrics Metrics
		onError func(error)

		mu          sync.Mutex
		deployments map[string]*deployment
		instances   int
		closed      bool

		done         chan struct{}
		shutdownOnce sync.Once
		shutdownErr  error
	}
)

func (c Config) validate() error {
	v := &verticle.ValidationError{}
	if c.Threads < 0 {
		v.Addf("Threads", "must be positive, got %d", c.Threads)
	}
	return v.OrNil()
}

// New validates cfg and creates a running Runtime.
func New(cfg Config) (*Runtime, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Bus == nil {
		cfg.Bus = bus.NewMemoryBus()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics()
	}

	threads := cfg.Threads
	if threads == 0 {
		threads = 2 * goruntime.NumCPU()
	}

	r := &Runtime{
		log:         log,
		bus:         cfg.Bus,
		metrics:     cfg.Metrics,
		deployments: make(map[string]*deployment),
		done:        make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(cfg.Context)
	r.loops = eventloop.NewGroup(eventloop.GroupOptions{
		Loops: threads,
		Log:   log,
	})

	onError := cfg.OnError
	if onError == nil {
		onError = func(err error) {
			log.Error("unhandled failure", slog.Any("error", err))
		}
	}
	r.onError = onError

	log.Debug("runtime created", slog.Int("threads", threads))
	return r, nil
}

// Bus returns the runtime's pub/sub collaborator.
func (r *Runtime) Bus() bus.Bus { return r.bus }

// Loops returns the event-loop group.
func (r *Runtime) Loops() *eventloop.Group { return r.loops }

// Context returns the execution context to use for ctx: the one carried in
// ctx if any (see eventloop.With), otherwise an event loop from the group.
// This is the surface HTTP-style adapters bridge request handling through.
func (r *Runtime) Context(ctx context.Context) *eventloop.Context {
	if c, ok := eventloop.FromContext(ctx); ok {
		return c
	}
	return r.loops.Next()
}

// Done is closed once the runtime has fully shut down.
func (r *Runtime) Done() <-chan struct{} { return r.done }

// Stop triggers shutdown without waiting for it. Idempotent.
func (r *Runtime) Stop() {
	go func() { _ = r.Shutdown(context.Background()) }()
}

// Shutdown undeploys everything, closes the bus and the event loops, and
// blocks until teardown completes (or ctx expires while waiting on stop
// hooks). The first stop failure is returned; teardown continues regardless.
// Idempotent: concurrent and repeated calls share one teardown.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.shutdownOnce.Do(func() {
		r.shutdownErr = r.doShutdown(ctx)
		close(r.done)
	})
	return r.shutdownErr
}

func (r *Runtime) doShutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	live := make([]*deployment, 0, len(r.deployments))
	for id, d := range r.deployments {
		live = append(live, d)
		delete(r.deployments, id)
	}
	r.instances = 0
	r.mu.Unlock()

	r.log.Info("runtime shutting down", slog.Int("deployments", len(live)))

	var firstErr error
	for _, d := range live {
		if err := r.teardown(ctx, d); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := r.bus.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	r.loops.Close()
	r.cancel()

	r.metrics.DeploymentsActive(0)
	r.metrics.InstancesActive(0)

	return firstErr
}
