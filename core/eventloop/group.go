package eventloop

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/vrtx-go/internal/hrw"
)

type (
	GroupOptions struct {
		// Loops is the number of shared event-loop contexts. 0 uses 2×NumCPU.
		Loops int
		// QueueSize is the per-context task queue capacity.
		QueueSize int
		Log       *slog.Logger
		// Seed personalizes sticky key assignment. Optional.
		Seed string
	}

	// Group owns a fixed set of shared event-loop contexts plus any number
	// of dedicated worker contexts created on demand.
	Group struct {
		log   *slog.Logger
		seed  string
		loops []*Context
		ids   []string
		byID  map[string]*Context
		next  atomic.Uint32

		mu      sync.Mutex
		workers map[string]*Context
		closed  bool
	}
)

// NewGroup creates a group of event-loop contexts and starts their loops.
func NewGroup(opts GroupOptions) *Group {
	n := opts.Loops
	if n <= 0 {
		n = 2 * runtime.NumCPU()
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	seed := opts.Seed
	if seed == "" {
		seed = "vrtx"
	}

	g := &Group{
		log:     log,
		seed:    seed,
		loops:   make([]*Context, n),
		byID:    make(map[string]*Context, n),
		workers: make(map[string]*Context),
	}
	for i := range g.loops {
		c := newContext(fmt.Sprintf("eventloop-%d", i), log, false, opts.QueueSize)
		g.loops[i] = c
		g.ids = append(g.ids, c.ID())
		g.byID[c.ID()] = c
	}
	return g
}

// Size returns the number of shared event-loop contexts.
func (g *Group) Size() int { return len(g.loops) }

// Next returns an event-loop context, round-robin.
func (g *Group) Next() *Context {
	i := g.next.Add(1) - 1
	return g.loops[int(i)%len(g.loops)]
}

// For returns the event-loop context sticky-assigned to key. The same key
// always maps to the same loop (rendezvous hashing over the loop ids).
func (g *Group) For(key string) *Context {
	id, _ := hrw.Best(key, g.ids, g.seed)
	return g.byID[id]
}

// Worker creates a dedicated blocking-capable context owned by the group.
// It is closed either explicitly by the caller or when the group closes.
func (g *Group) Worker(name string) (*Context, error) {
	if name == "" {
		name = fmt.Sprintf("worker-%s", gonanoid.Must(6))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}
	c := newContext(name, g.log, true, DefaultQueueSize)
	g.workers[name] = c
	return c, nil
}

// Release closes a worker context and forgets it. Unknown names are no-ops.
func (g *Group) Release(name string) {
	g.mu.Lock()
	c, ok := g.workers[name]
	delete(g.workers, name)
	g.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Close stops all worker and event-loop contexts. Idempotent.
func (g *Group) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	workers := g.workers
	g.workers = map[string]*Context{}
	g.mu.Unlock()

	for _, c := range workers {
		c.Close()
	}
	for _, c := range g.loops {
		c.Close()
	}
	g.log.Debug("event loop group closed", slog.Int("loops", len(g.loops)))
}
