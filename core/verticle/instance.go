package verticle

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/future"
)

// Phase is the lifecycle phase of one verticle instance.
type Phase int32

const (
	Created Phase = iota
	Starting
	Running
	Stopping
	Stopped
	// Failed is absorbing: an instance never restarts.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "created"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Instance is one deployed copy of a verticle. It is bound to a single
// execution context for its whole life; all hooks run there, strictly
// sequential. An instance is used for exactly one start/stop cycle.
type Instance struct {
	opts Options
	c    *eventloop.Context
	log  *slog.Logger

	phase atomic.Int32

	mu    sync.Mutex
	st    State
	stopF *future.Future[struct{}]
}

func NewInstance(opts Options, c *eventloop.Context, log *slog.Logger) *Instance {
	if log == nil {
		log = slog.Default()
	}
	if opts.Name != "" {
		log = log.With(slog.String("verticle", opts.Name))
	}
	return &Instance{
		opts: opts,
		c:    c,
		log:  log,
		st:   State{},
	}
}

func (i *Instance) Phase() Phase { return Phase(i.phase.Load()) }

// Context returns the execution context the instance is bound to.
func (i *Instance) Context() *eventloop.Context { return i.c }

// State returns a snapshot of the transient state. Meant for inspection
// after the instance settled into a phase, not for communication.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make(State, len(i.st))
	for k, v := range i.st {
		out[k] = v
	}
	return out
}

// Start transitions Created → Starting and invokes OnStart on the instance
// context. The returned future completes once the instance is Running, or
// fails with the start error (the instance is then Failed and OnError has
// been notified).
func (i *Instance) Start() *future.Future[struct{}] {
	if !i.phase.CompareAndSwap(int32(Created), int32(Starting)) {
		return future.Failed[struct{}](fmt.Errorf("%w: cannot start from phase %s", ErrStartFailed, i.Phase()))
	}

	f := future.New[struct{}]()
	if err := i.c.Schedule(func() {
		v, err := i.callStart()
		if err != nil {
			i.failStart(f, err)
			return
		}
		if p, ok := v.(future.Pending); ok {
			// asynchronous start: rejoin the instance context on settlement
			future.OnAny(i.c, p).Subscribe(func(v any, err error) {
				if err != nil {
					i.failStart(f, err)
					return
				}
				i.completeStart(f, v)
			})
			return
		}
		i.completeStart(f, v)
	}); err != nil {
		i.phase.Store(int32(Failed))
		f.Fail(fmt.Errorf("%w: %w", ErrStartFailed, err))
	}
	return f
}

// Stop transitions Running → Stopping and invokes OnStop with the transient
// state. The returned future completes once the instance is Stopped, or
// fails with the stop error (instance Failed, OnError notified). Stop on an
// already-terminal instance completes immediately without invoking hooks;
// concurrent callers share one completion.
func (i *Instance) Stop() *future.Future[struct{}] {
	i.mu.Lock()
	if i.stopF != nil {
		f := i.stopF
		i.mu.Unlock()
		return f
	}
	if Phase(i.phase.Load()) != Running {
		i.mu.Unlock()
		return future.Completed(struct{}{})
	}
	f := future.New[struct{}]()
	i.stopF = f
	st := i.st
	i.mu.Unlock()

	i.phase.Store(int32(Stopping))

	if err := i.c.Schedule(func() {
		v, err := i.callStop(st)
		if err != nil {
			i.failStop(f, err)
			return
		}
		if p, ok := v.(future.Pending); ok {
			future.OnAny(i.c, p).Subscribe(func(_ any, err error) {
				if err != nil {
					i.failStop(f, err)
					return
				}
				i.completeStop(f)
			})
			return
		}
		i.completeStop(f)
	}); err != nil {
		i.phase.Store(int32(Failed))
		f.Fail(fmt.Errorf("%w: %w", ErrStopFailed, err))
	}
	return f
}

func (i *Instance) callStart() (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("start hook panicked: %v", r)
		}
	}()
	return i.opts.OnStart(i.c)
}

func (i *Instance) callStop(st State) (v any, err error) {
	if i.opts.OnStop == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stop hook panicked: %v", r)
		}
	}()
	return i.opts.OnStop(i.c, st)
}

// callError mirrors a hook failure to OnError. Best-effort: panics inside
// the handler are swallowed so the original error stays visible.
func (i *Instance) callError(err error) {
	if i.opts.OnError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			i.log.Debug("error hook panicked", slog.Any("recovered", r))
		}
	}()
	i.opts.OnError(i.c, err)
}

func (i *Instance) completeStart(f *future.Future[struct{}], v any) {
	i.mu.Lock()
	i.st.merge(v)
	i.mu.Unlock()

	i.phase.Store(int32(Running))
	i.log.Debug("started", slog.String("context", i.c.ID()))
	f.Complete(struct{}{})
}

func (i *Instance) failStart(f *future.Future[struct{}], err error) {
	i.phase.Store(int32(Failed))
	i.callError(err)
	i.log.Error("start failed", slog.Any("error", err))
	f.Fail(fmt.Errorf("%w: %w", ErrStartFailed, err))
}

func (i *Instance) completeStop(f *future.Future[struct{}]) {
	i.phase.Store(int32(Stopped))
	i.log.Debug("stopped")
	f.Complete(struct{}{})
}

func (i *Instance) failStop(f *future.Future[struct{}], err error) {
	i.phase.Store(int32(Failed))
	i.callError(err)
	i.log.Error("stop failed", slog.Any("error", err))
	f.Fail(fmt.Errorf("%w: %w", ErrStopFailed, err))
}
