// Package verticle implements the lifecycle state machine for deployable
// units. A verticle is defined by its hooks ([Options]); one deployed copy
// of it is an [Instance] bound to a single execution context.
//
// # Lifecycle
//
// Instances move through Created → Starting → Running → Stopping → Stopped,
// with Failed absorbing from Starting or Stopping. Hooks run on the
// instance's context and never concurrently with each other, so transient
// state needs no locking inside hooks. An instance never restarts.
//
//	opts := verticle.Options{
//	    OnStart: func(c *eventloop.Context) (any, error) {
//	        return verticle.State{"conn": dial()}, nil
//	    },
//	    OnStop: func(c *eventloop.Context, st verticle.State) (any, error) {
//	        return nil, st["conn"].(*Conn).Close()
//	    },
//	}
//
// Hooks may return a future.Pending to complete asynchronously; the result
// is bridged back onto the instance context before the state machine
// advances.
//
// # Actors
//
// [ActorOptions] specializes a verticle into a topic consumer: its OnStart
// additionally subscribes OnMessage on a bus topic, with deliveries
// re-scheduled onto the instance context so they serialize with the
// lifecycle hooks.
package verticle
