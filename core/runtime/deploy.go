package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/future"
	"github.com/codewandler/vrtx-go/core/verticle"
)

type (
	// DeployOptions configures one Deploy call.
	DeployOptions struct {
		// Worker runs every instance on its own dedicated context, safe
		// for blocking calls, instead of a shared event loop.
		Worker bool

		// Instances is the number of parallel copies, each with its own
		// transient state. 0 means 1. Negative values are rejected.
		Instances int
	}

	// deployment is the runtime-internal record of one logical deployment.
	deployment struct {
		id        string
		worker    bool
		instances []*verticle.Instance
		// contexts holds dedicated worker contexts to close on teardown;
		// shared event loops are never closed per-deployment.
		contexts []*eventloop.Context
	}

	// Deployment is the caller-facing handle for one live deployment.
	// It is invalidated by the first successful undeploy.
	Deployment struct {
		id string
		rt *Runtime
	}
)

func (o DeployOptions) validate() error {
	v := &verticle.ValidationError{}
	if o.Instances < 0 {
		v.Addf("Instances", "must be positive, got %d", o.Instances)
	}
	return v.OrNil()
}

// ID returns the deployment id. No side effect.
func (d *Deployment) ID() string { return d.id }

// Undeploy triggers teardown and returns its pending completion.
func (d *Deployment) Undeploy() *future.Future[struct{}] {
	return d.rt.Undeploy(d.id)
}

// Close undeploys and blocks until teardown completes, propagating any stop
// failure. After a prior successful undeploy it fails with
// ErrDeploymentNotFound. Implements io.Closer for scoped teardown.
func (d *Deployment) Close() error {
	_, err := d.rt.Undeploy(d.id).Await(context.Background())
	return err
}

var _ io.Closer = (*Deployment)(nil)

// Deploy instantiates f under a fresh deployment id and starts every copy.
// The returned future settles with the deployment handle once all copies
// are Running. If any copy fails to start, copies that did start are
// stopped again and the future fails with the first start error; nothing
// stays registered.
func (r *Runtime) Deploy(f verticle.Factory, opts DeployOptions) *future.Future[*Deployment] {
	res := future.New[*Deployment]()

	if f == nil {
		v := &verticle.ValidationError{}
		v.Add("Factory", "is required")
		res.Fail(v)
		return res
	}
	if err := opts.validate(); err != nil {
		res.Fail(err)
		return res
	}
	if r.isClosed() {
		res.Fail(ErrClosed)
		return res
	}

	n := opts.Instances
	if n == 0 {
		n = 1
	}

	id := fmt.Sprintf("dep-%s", gonanoid.Must(10))
	log := r.log.With(slog.String("deployment", id))

	d := &deployment{id: id, worker: opts.Worker}
	for idx := 0; idx < n; idx++ {
		o, err := f()
		if err != nil {
			r.closeContexts(d)
			res.Fail(fmt.Errorf("deploy: factory: %w", err))
			return res
		}
		if err := o.Validate(); err != nil {
			r.closeContexts(d)
			res.Fail(err)
			return res
		}
		if o.OnError == nil {
			// no local handler: escalate to the runtime's error handler
			o.OnError = func(_ *eventloop.Context, err error) { r.onError(err) }
		}

		var c *eventloop.Context
		if opts.Worker {
			c, err = r.loops.Worker(fmt.Sprintf("%s-%d", id, idx))
			if err != nil {
				r.closeContexts(d)
				res.Fail(err)
				return res
			}
			d.contexts = append(d.contexts, c)
		} else {
			c = r.loops.For(fmt.Sprintf("%s/%d", id, idx))
		}

		d.instances = append(d.instances, verticle.NewInstance(o, c, log))
	}

	tmr := r.metrics.DeployDuration()
	go func() {
		starts := make([]*future.Future[struct{}], len(d.instances))
		for i, inst := range d.instances {
			starts[i] = inst.Start()
		}
		if _, err := future.All(starts...).Await(r.ctx); err != nil {
			// roll back the copies that did reach Running
			_ = r.teardown(r.ctx, d)
			tmr.ObserveDuration()
			r.metrics.DeployCompleted(false)
			res.Fail(err)
			return
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			_ = r.teardown(r.ctx, d)
			res.Fail(ErrClosed)
			return
		}
		r.deployments[id] = d
		r.instances += len(d.instances)
		active, instances := len(r.deployments), r.instances
		r.mu.Unlock()

		tmr.ObserveDuration()
		r.metrics.DeployCompleted(true)
		r.metrics.DeploymentsActive(active)
		r.metrics.InstancesActive(instances)

		log.Debug("deployed", slog.Int("instances", len(d.instances)), slog.Bool("worker", d.worker))
		res.Complete(&Deployment{id: id, rt: r})
	}()
	return res
}

// Undeploy stops every instance registered under id. The returned future
// settles once all of them reached Stopped or Failed; the first stop error
// wins. An id that is not live fails with ErrDeploymentNotFound without
// invoking any hook.
func (r *Runtime) Undeploy(id string) *future.Future[struct{}] {
	res := future.New[struct{}]()

	r.mu.Lock()
	d, ok := r.deployments[id]
	if !ok {
		r.mu.Unlock()
		res.Fail(fmt.Errorf("undeploy %s: %w", id, ErrDeploymentNotFound))
		return res
	}
	delete(r.deployments, id)
	r.instances -= len(d.instances)
	active, instances := len(r.deployments), r.instances
	r.mu.Unlock()

	tmr := r.metrics.UndeployDuration()
	go func() {
		err := r.teardown(r.ctx, d)
		tmr.ObserveDuration()
		r.metrics.UndeployCompleted(err == nil)
		r.metrics.DeploymentsActive(active)
		r.metrics.InstancesActive(instances)

		if err != nil {
			r.log.Error("undeploy failed", slog.String("deployment", id), slog.Any("error", err))
			res.Fail(err)
			return
		}
		r.log.Debug("undeployed", slog.String("deployment", id))
		res.Complete(struct{}{})
	}()
	return res
}

// teardown stops all instances of d in parallel and closes its dedicated
// contexts. Returns the first stop error after all instances settled.
func (r *Runtime) teardown(ctx context.Context, d *deployment) error {
	var g errgroup.Group
	for _, inst := range d.instances {
		inst := inst
		g.Go(func() error {
			_, err := inst.Stop().Await(ctx)
			return err
		})
	}
	err := g.Wait()
	r.closeContexts(d)
	return err
}

func (r *Runtime) closeContexts(d *deployment) {
	for _, c := range d.contexts {
		c.Close()
	}
	d.contexts = nil
}

func (r *Runtime) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
