package verticle

import (
	"github.com/codewandler/vrtx-go/core/eventloop"
)

type (
	// State is the transient state of one verticle instance. It is owned
	// exclusively by that instance and only ever touched from its context,
	// so hooks need no locking around it.
	State map[string]any

	// Options defines a deployable unit by its lifecycle hooks. All hooks
	// run on the instance's execution context and never concurrently with
	// each other.
	Options struct {
		// Name identifies the verticle in logs. Optional.
		Name string

		// OnStart is invoked once when the instance starts. Required.
		//
		// The returned value seeds the instance's transient state: a State
		// (or map[string]any) is shallow-merged in; a future.Pending is
		// awaited first, bridged back onto the instance context, and its
		// value merged the same way; anything else is discarded.
		OnStart func(c *eventloop.Context) (any, error)

		// OnStop is invoked once when the instance stops, with the
		// transient state produced by OnStart. Optional. As with OnStart,
		// a future.Pending return defers completion; other return values
		// are ignored.
		OnStop func(c *eventloop.Context, st State) (any, error)

		// OnError is a best-effort side channel invoked with the context
		// and the error when a start or stop hook fails. Its own failures
		// are swallowed so they cannot mask the original error. Optional.
		OnError func(c *eventloop.Context, err error)
	}

	// Factory produces a fresh Options value per instance. The runtime
	// invokes it once per deployed copy.
	Factory func() (Options, error)
)

// Validate checks the options before any runtime interaction.
func (o Options) Validate() error {
	v := &ValidationError{}
	if o.OnStart == nil {
		v.Add("OnStart", "is required")
	}
	return v.OrNil()
}

// Supply wraps a single Options value into a Factory. The options are shared
// across instances, which is fine because Options itself is immutable; each
// instance still gets its own transient state.
func Supply(o Options) Factory {
	return func() (Options, error) { return o, nil }
}

// merge shallow-copies map-valued hook results into st. Non-map values are
// discarded, by contract.
func (st State) merge(v any) {
	switch m := v.(type) {
	case State:
		for k, val := range m {
			st[k] = val
		}
	case map[string]any:
		for k, val := range m {
			st[k] = val
		}
	}
}
