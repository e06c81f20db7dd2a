package verticle

import (
	"log/slog"

	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/future"
	"github.com/codewandler/vrtx-go/ports/bus"
)

// SubscriptionKey is the transient-state key under which an actor instance
// keeps its topic subscription.
const SubscriptionKey = "vrtx.subscription"

// ActorOptions defines a verticle pre-wired to consume messages from one
// topic. It is a composition over Options, not a separate kind of unit.
type ActorOptions struct {
	Name string

	// Topic is the pub/sub channel to consume. Required.
	Topic string

	// OnMessage is invoked once per inbound message, on the instance's
	// context, serialized with the instance's lifecycle hooks. Required.
	// Fire-and-forget: there is no reply correlation at this layer.
	OnMessage func(msg bus.Message)

	// OnStart, OnStop and OnError behave as in Options; OnStart is
	// optional here (an empty state is assumed when absent).
	OnStart func(c *eventloop.Context) (any, error)
	OnStop  func(c *eventloop.Context, st State) (any, error)
	OnError func(c *eventloop.Context, err error)
}

// Validate checks the actor options before any runtime interaction.
func (o ActorOptions) Validate() error {
	v := &ValidationError{}
	if o.Topic == "" {
		v.Add("Topic", "is required")
	}
	if o.OnMessage == nil {
		v.Add("OnMessage", "is required")
	}
	return v.OrNil()
}

// Verticle composes the actor options into plain lifecycle options wired to
// b. The produced OnStart runs the caller's OnStart (or yields an empty
// state), subscribes OnMessage on the topic with delivery re-scheduled onto
// the instance context, and stores the subscription in the transient state
// under SubscriptionKey. The produced OnStop unsubscribes explicitly before
// delegating to the caller's OnStop; the bus does not tear subscriptions
// down on its own. OnError passes through unmodified.
func (o ActorOptions) Verticle(b bus.Bus) Options {
	base := o.OnStart
	if base == nil {
		base = func(*eventloop.Context) (any, error) { return State{}, nil }
	}

	onStart := func(c *eventloop.Context) (any, error) {
		v, err := base(c)
		if err != nil {
			return nil, err
		}
		if p, ok := v.(future.Pending); ok {
			// base start is asynchronous: subscribe once it settles,
			// back on the instance context
			out := future.New[any]()
			future.OnAny(c, p).Subscribe(func(v any, err error) {
				if err != nil {
					out.Fail(err)
					return
				}
				st, err := o.subscribe(b, c, v)
				if err != nil {
					out.Fail(err)
					return
				}
				out.Complete(st)
			})
			return out, nil
		}
		return o.subscribe(b, c, v)
	}

	onStop := func(c *eventloop.Context, st State) (any, error) {
		if sub, ok := st[SubscriptionKey].(bus.Subscription); ok {
			if err := sub.Unsubscribe(); err != nil {
				c.Log().Warn("unsubscribe failed", slog.String("topic", o.Topic), slog.Any("error", err))
			}
		}
		if o.OnStop == nil {
			return nil, nil
		}
		return o.OnStop(c, st)
	}

	return Options{
		Name:    o.Name,
		OnStart: onStart,
		OnStop:  onStop,
		OnError: o.OnError,
	}
}

// Factory validates the actor options and produces a Factory for Deploy.
func (o ActorOptions) Factory(b bus.Bus) Factory {
	return func() (Options, error) {
		if err := o.Validate(); err != nil {
			return Options{}, err
		}
		return o.Verticle(b), nil
	}
}

// subscribe extends the base state with a live topic subscription.
func (o ActorOptions) subscribe(b bus.Bus, c *eventloop.Context, baseState any) (State, error) {
	st := State{}
	st.merge(baseState)

	sub, err := b.Subscribe(o.Topic, func(msg bus.Message) {
		if err := c.Schedule(func() { o.OnMessage(msg) }); err != nil {
			// context gone, message dropped
			c.Log().Warn("message dropped", slog.String("topic", o.Topic), slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, err
	}

	st[SubscriptionKey] = sub
	return st, nil
}
