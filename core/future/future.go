package future

import (
	"context"
	"errors"
	"sync"
)

// ErrNotSettled is returned by Result when the future has not settled yet.
var ErrNotSettled = errors.New("future not settled")

type (
	// Future is a settle-once container for an asynchronous result.
	// It settles exactly once, with either a value or an error; later
	// Complete/Fail calls are no-ops.
	Future[T any] struct {
		mu   sync.Mutex
		done chan struct{}
		val  T
		err  error
		subs []func(T, error)
	}

	// Pending is the untyped view of a future. It lets consumers that do
	// not know the concrete result type (e.g. lifecycle hooks returning
	// asynchronous state) observe settlement.
	Pending interface {
		Done() <-chan struct{}
		// AnyResult returns the boxed outcome. Only valid after Done is closed.
		AnyResult() (any, error)
		// SubscribeAny registers fn to run exactly once when the future
		// settles, with the boxed value.
		SubscribeAny(fn func(v any, err error))
	}
)

// New creates an unsettled future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already settled with v.
func Completed[T any](v T) *Future[T] {
	f := New[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already settled with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Fail(err)
	return f
}

// Complete settles the future with v. Returns false if it was already settled.
func (f *Future[T]) Complete(v T) bool { return f.settle(v, nil) }

// Fail settles the future with err. Returns false if it was already settled.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		return false
	default:
	}
	f.val, f.err = v, err
	subs := f.subs
	f.subs = nil
	close(f.done)
	f.mu.Unlock()

	// Run subscribers outside the lock, on the settling goroutine.
	for _, fn := range subs {
		fn(v, err)
	}
	return true
}

// Subscribe registers fn to run exactly once when the future settles.
// If the future already settled, fn runs immediately on the calling
// goroutine; otherwise it runs on the goroutine that settles the future.
// There is no window in which a settlement can be missed.
func (f *Future[T]) Subscribe(fn func(v T, err error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		v, err := f.val, f.err
		f.mu.Unlock()
		fn(v, err)
		return
	default:
	}
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result returns the outcome, or ErrNotSettled if the future is still pending.
func (f *Future[T]) Result() (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
		var zero T
		return zero, ErrNotSettled
	}
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-f.done:
		return f.val, f.err
	}
}

// AnyResult implements Pending.
func (f *Future[T]) AnyResult() (any, error) {
	v, err := f.Result()
	return v, err
}

// SubscribeAny implements Pending.
func (f *Future[T]) SubscribeAny(fn func(v any, err error)) {
	f.Subscribe(func(v T, err error) { fn(v, err) })
}

var _ Pending = (*Future[int])(nil)

// Map derives a future settling with fn applied to f's value.
// A failure of f propagates unchanged; an error from fn fails the result.
func Map[T any, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	f.Subscribe(func(v T, err error) {
		if err != nil {
			out.Fail(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Fail(err)
			return
		}
		out.Complete(u)
	})
	return out
}

// All settles once every input future has settled. On success it completes
// with the values in input order. If any input fails, All fails with the
// first error observed, but still waits for the remaining futures.
func All[T any](fs ...*Future[T]) *Future[[]T] {
	out := New[[]T]()
	if len(fs) == 0 {
		out.Complete(nil)
		return out
	}

	var (
		mu        sync.Mutex
		firstErr  error
		remaining = len(fs)
		results   = make([]T, len(fs))
	)
	for i, f := range fs {
		i, f := i, f
		f.Subscribe(func(v T, err error) {
			mu.Lock()
			results[i] = v
			if err != nil && firstErr == nil {
				firstErr = err
			}
			remaining--
			last := remaining == 0
			ferr := firstErr
			mu.Unlock()

			if !last {
				return
			}
			if ferr != nil {
				out.Fail(ferr)
			} else {
				out.Complete(results)
			}
		})
	}
	return out
}
