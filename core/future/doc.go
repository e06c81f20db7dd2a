// Package future provides settle-once pending values and the affinity
// bridge that moves their continuations onto a specific execution context.
//
// A [Future] settles exactly once with a value or an error. Subscribers
// registered before settlement run on the settling goroutine; subscribers
// registered after run immediately. [On] re-homes a future onto a
// [Scheduler] so that all downstream subscribers observe the outcome on
// that scheduler's goroutine:
//
//	f := future.New[int]()
//	q := future.On(loopCtx, f)
//	q.Subscribe(func(v int, err error) {
//	    // runs on loopCtx's goroutine
//	})
//	f.Complete(42) // may happen on any goroutine
//
// This is the single primitive allowed to move a pending value's
// continuation across goroutines; everything else in vrtx builds on it.
package future
