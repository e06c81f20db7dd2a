package future

import (
	"errors"
	"fmt"
)

// ErrSchedule indicates the target context refused the bridged continuation,
// typically because it was closed during shutdown.
var ErrSchedule = errors.New("cannot schedule continuation")

// Scheduler executes functions on a sticky execution context.
// *eventloop.Context implements it.
type Scheduler interface {
	// Schedule enqueues fn for execution on the context's goroutine.
	Schedule(fn func()) error
}

// On bridges f onto s: the returned future settles with f's outcome, but its
// settlement (and therefore every subscriber of the returned future) runs on
// s's goroutine, no matter where f settles. The continuation is scheduled
// exactly once, including when f has already settled at call time. If s
// refuses the continuation, the returned future fails with ErrSchedule
// instead of dropping the outcome.
func On[T any](s Scheduler, f *Future[T]) *Future[T] {
	out := New[T]()
	f.Subscribe(func(v T, err error) {
		if serr := s.Schedule(func() {
			if err != nil {
				out.Fail(err)
			} else {
				out.Complete(v)
			}
		}); serr != nil {
			out.Fail(fmt.Errorf("%w: %v", ErrSchedule, serr))
		}
	})
	return out
}

// OnAny is On for untyped pending values.
func OnAny(s Scheduler, p Pending) *Future[any] {
	out := New[any]()
	p.SubscribeAny(func(v any, err error) {
		if serr := s.Schedule(func() {
			if err != nil {
				out.Fail(err)
			} else {
				out.Complete(v)
			}
		}); serr != nil {
			out.Fail(fmt.Errorf("%w: %v", ErrSchedule, serr))
		}
	})
	return out
}
