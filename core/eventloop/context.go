package eventloop

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/vrtx-go/internal/goid"
)

// ErrClosed is returned by Schedule once a context has been closed.
var ErrClosed = errors.New("context closed")

// DefaultQueueSize is the task queue capacity used when none is configured.
const DefaultQueueSize = 1024

// Context is a sticky affinity token for one execution goroutine. Tasks
// scheduled onto a context run sequentially, in FIFO order, on that single
// goroutine. A context is not a lock: it serializes work by ownership.
type Context struct {
	id     string
	log    *slog.Logger
	worker bool

	tasks chan func()
	stop  chan struct{}
	done  chan struct{}

	closeOnce sync.Once
	gid       atomic.Uint64
}

func newContext(id string, log *slog.Logger, worker bool, queueSize int) *Context {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	c := &Context{
		id:     id,
		log:    log.With(slog.String("context", id)),
		worker: worker,
		tasks:  make(chan func(), queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// NewWorker creates a standalone blocking-capable context. Unlike event-loop
// contexts, a worker context is dedicated to its owner: blocking inside a
// task stalls nobody else. Callers own the context and must Close it.
func NewWorker(name string, log *slog.Logger) *Context {
	if name == "" {
		name = fmt.Sprintf("worker-%s", gonanoid.Must(6))
	}
	if log == nil {
		log = slog.Default()
	}
	return newContext(name, log, true, DefaultQueueSize)
}

// ID returns the context's identifier.
func (c *Context) ID() string { return c.id }

// IsWorker reports whether the context is a dedicated blocking-capable one.
func (c *Context) IsWorker() bool { return c.worker }

// Log returns a logger tagged with the context id.
func (c *Context) Log() *slog.Logger { return c.log }

// InLoop reports whether the calling goroutine is the context's goroutine.
func (c *Context) InLoop() bool {
	g := c.gid.Load()
	return g != 0 && g == goid.ID()
}

// Schedule enqueues fn for execution on the context's goroutine.
// Returns ErrClosed once the context has been closed.
func (c *Context) Schedule(fn func()) error {
	select {
	case <-c.stop:
		return ErrClosed
	default:
	}
	select {
	case c.tasks <- fn:
		return nil
	case <-c.stop:
		return ErrClosed
	}
}

// Close stops the context. Tasks already queued are drained before the loop
// exits; new Schedule calls fail with ErrClosed. Close blocks until the loop
// has exited, unless called from the loop itself. Idempotent.
func (c *Context) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
	if !c.InLoop() {
		<-c.done
	}
}

// Done is closed once the loop goroutine has exited.
func (c *Context) Done() <-chan struct{} { return c.done }

func (c *Context) run() {
	defer close(c.done)

	c.gid.Store(goid.ID())

	for {
		select {
		case <-c.stop:
			// drain what is already queued, then exit
			for {
				select {
				case fn := <-c.tasks:
					c.invoke(fn)
				default:
					return
				}
			}
		case fn := <-c.tasks:
			c.invoke(fn)
		}
	}
}

// invoke runs one task with crash containment: a panicking task must not
// take the loop down with it.
func (c *Context) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("task panicked", slog.Any("recovered", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	fn()
}
